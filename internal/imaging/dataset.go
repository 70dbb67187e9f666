package imaging

import (
	"context"
	"iter"
)

// Element is one decoded data element.
type Element struct {
	Tag   string
	Value string
}

// Dataset is the decoded view of a DICOM file the classifier consumes.
// Total is the number of elements the codec counted; Elements yields them.
type Dataset interface {
	Total() int
	Elements() iter.Seq[Element]
}

// Decoder opens a file and returns its dataset. Implementations report a
// missing or undecodable file with services.ErrNotFound.
type Decoder interface {
	Decode(ctx context.Context, path string) (Dataset, error)
}

// Elements is an in-memory Dataset whose total is its length.
type Elements []Element

func (e Elements) Total() int { return len(e) }

func (e Elements) Elements() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for _, el := range e {
			if !yield(el) {
				return
			}
		}
	}
}
