package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

const (
	ctImageStorage = "1.2.840.10008.5.1.4.1.1.2"
	explicitLE     = "1.2.840.10008.1.2.1"
)

// WriteDICOM writes a small CT dataset with file meta, SOPClassUID and
// Modality. A non-empty patientName adds (0010,0010).
func WriteDICOM(t testing.TB, path, patientName string) {
	t.Helper()

	elements := []*dicom.Element{
		mustElement(t, tag.FileMetaInformationVersion, []byte{0x00, 0x01}),
		mustElement(t, tag.MediaStorageSOPClassUID, []string{ctImageStorage}),
		mustElement(t, tag.MediaStorageSOPInstanceUID, []string{"1.2.3.4.5"}),
		mustElement(t, tag.TransferSyntaxUID, []string{explicitLE}),
		mustElement(t, tag.SOPClassUID, []string{ctImageStorage}),
		mustElement(t, tag.Modality, []string{"CT"}),
	}
	if patientName != "" {
		elements = append(elements, mustElement(t, tag.PatientName, []string{patientName}))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := dicom.Write(f, dicom.Dataset{Elements: elements}); err != nil {
		t.Fatalf("write dicom %s: %v", path, err)
	}
}

func mustElement(t testing.TB, tg tag.Tag, value any) *dicom.Element {
	t.Helper()
	el, err := dicom.NewElement(tg, value)
	if err != nil {
		t.Fatalf("dicom element %s: %v", tg, err)
	}
	return el
}
