package dicomcodec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"phisweep/internal/services"
)

func TestDecodeMissingFile(t *testing.T) {
	_, err := New().Decode(context.Background(), filepath.Join(t.TempDir(), "absent.dcm"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDecodeGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.dcm")
	if err := os.WriteFile(path, []byte("not a dicom file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := New().Decode(context.Background(), path)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDecodeDirectory(t *testing.T) {
	_, err := New().Decode(context.Background(), t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestFromElementsSkipsFileMeta(t *testing.T) {
	name, err := dicom.NewElement(tag.PatientName, []string{"DOE^JOHN"})
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	rows, err := dicom.NewElement(tag.Rows, []int{512})
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	syntax, err := dicom.NewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"})
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}

	dataset := FromElements([]*dicom.Element{syntax, name, rows, nil})
	if dataset.Total() != 2 {
		t.Fatalf("expected 2 elements, got %d", dataset.Total())
	}
	if dataset[0].Tag != "(0010,0010)" || dataset[0].Value != "DOE^JOHN" {
		t.Fatalf("unexpected first element %+v", dataset[0])
	}
	if dataset[1].Value != "512" {
		t.Fatalf("unexpected rows value %q", dataset[1].Value)
	}
}
