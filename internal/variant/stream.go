package variant

import (
	"context"
	"io"
)

// Record is one variant line's per-sample values for the status field. A
// sample whose value is absent carries "".
type Record struct {
	Samples []string
}

// Stream is a parsed VCF. DeclaresField reports whether the header declares
// a FORMAT field; Next returns io.EOF after the last record.
type Stream interface {
	DeclaresField(field string) bool
	Next() (Record, error)
	io.Closer
}

// Opener opens a VCF for streaming. The field name tells the codec which
// per-sample value to extract. Implementations report a missing or
// unreadable file with services.ErrNotFound.
type Opener interface {
	Open(ctx context.Context, path, field string) (Stream, error)
}
