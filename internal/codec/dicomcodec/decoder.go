// Package dicomcodec decodes DICOM files with github.com/suyashkumar/dicom
// into imaging datasets. File-meta elements (group 0002) are not part of the
// dataset and pixel data is never loaded.
package dicomcodec

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"

	"phisweep/internal/imaging"
	"phisweep/internal/services"
)

const fileMetaGroup = 0x0002

// Decoder implements imaging.Decoder.
type Decoder struct{}

// New returns a DICOM decoder.
func New() *Decoder { return &Decoder{} }

// Decode parses path. Any failure to stat or parse is reported as
// services.ErrNotFound so the record is stored as file_not_found.
func (d *Decoder) Decode(ctx context.Context, path string) (imaging.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "dicomcodec", "stat", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "dicomcodec", "stat", path+" is a directory", nil)
	}
	parsed, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "dicomcodec", "parse", path, err)
	}
	return FromElements(parsed.Elements), nil
}

// FromElements converts parsed elements into a dataset, dropping file-meta
// elements.
func FromElements(elements []*dicom.Element) imaging.Elements {
	out := make(imaging.Elements, 0, len(elements))
	for _, el := range elements {
		if el == nil || el.Tag.Group == fileMetaGroup {
			continue
		}
		out = append(out, imaging.Element{Tag: el.Tag.String(), Value: valueText(el)})
	}
	return out
}

func valueText(el *dicom.Element) string {
	if el.Value == nil {
		return ""
	}
	switch v := el.Value.GetValue().(type) {
	case []string:
		return strings.Join(v, `\`)
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`)
	case []float64:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	case []byte:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprintf("<%d bytes>", len(v))
	default:
		return el.Value.String()
	}
}
