// Package vcfcodec streams VCF files, plain or gzip-compressed, through
// github.com/brentp/vcfgo and exposes the per-sample value of one FORMAT
// field to the variant classifier.
package vcfcodec

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"

	"github.com/brentp/vcfgo"

	"phisweep/internal/services"
	"phisweep/internal/variant"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Opener implements variant.Opener.
type Opener struct{}

// New returns a VCF opener.
func New() *Opener { return &Opener{} }

// Open reads the VCF header of path. Failures before the first record are
// reported as services.ErrNotFound.
func (o *Opener) Open(ctx context.Context, path, field string) (variant.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "vcfcodec", "open", path, err)
	}
	stream, err := newStream(f, field)
	if err != nil {
		f.Close()
		return nil, services.Wrap(services.ErrNotFound, "vcfcodec", "read header", path, err)
	}
	return stream, nil
}

// NewStream reads a VCF from r. The caller keeps ownership of r.
func NewStream(r io.Reader, field string) (variant.Stream, error) {
	return newStream(io.NopCloser(r), field)
}

func newStream(src io.ReadCloser, field string) (*stream, error) {
	buffered := bufio.NewReader(src)
	s := &stream{field: field, closers: []io.Closer{src}}

	var r io.Reader = buffered
	if magic, err := buffered.Peek(len(gzipMagic)); err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, err
		}
		s.closers = append([]io.Closer{gz}, s.closers...)
		r = gz
	}

	reader, headerErr := vcfgo.NewReader(r, false)
	if err := checkHeader(reader, headerErr); err != nil {
		return nil, err
	}
	if headerErr != nil {
		// Warnings on meta lines do not affect the FORMAT column we read.
		reader.Clear()
	}
	s.reader = reader
	return s, nil
}

// checkHeader fails only when vcfgo could not build a header. vcfgo returns
// a usable reader alongside an error for malformed ## lines.
func checkHeader(reader *vcfgo.Reader, err error) error {
	if reader == nil {
		if err == nil {
			err = errors.New("missing VCF header")
		}
		return err
	}
	if reader.Header == nil {
		return errors.New("missing VCF header")
	}
	return nil
}

type stream struct {
	field   string
	reader  *vcfgo.Reader
	closers []io.Closer
}

func (s *stream) DeclaresField(field string) bool {
	_, ok := s.reader.Header.SampleFormats[field]
	return ok
}

func (s *stream) Next() (variant.Record, error) {
	v := s.reader.Read()
	if v == nil {
		if err := s.reader.Error(); err != nil && !errors.Is(err, io.EOF) {
			return variant.Record{}, err
		}
		return variant.Record{}, io.EOF
	}
	// Per-line header diagnostics accumulate on the reader; they do not make
	// the values unusable.
	s.reader.Clear()

	record := variant.Record{Samples: make([]string, len(v.Samples))}
	for i, sample := range v.Samples {
		if sample == nil || sample.Fields == nil {
			continue
		}
		record.Samples[i] = sample.Fields[s.field]
	}
	return record, nil
}

func (s *stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
