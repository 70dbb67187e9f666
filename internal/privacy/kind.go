package privacy

import (
	"path/filepath"
	"strings"
)

// FileKind identifies the file format a record was discovered as.
type FileKind string

const (
	KindDICOM FileKind = "dicom"
	KindVCF   FileKind = "vcf"
)

// ParseFileKind accepts the kind names used on the command line and in the
// store. "dcm" is accepted as an alias for dicom.
func ParseFileKind(value string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dicom", "dcm":
		return KindDICOM, true
	case "vcf":
		return KindVCF, true
	default:
		return "", false
	}
}

// KindForPath guesses the kind from a file name extension.
func KindForPath(path string) (FileKind, bool) {
	name := strings.ToLower(filepath.Base(strings.TrimSpace(path)))
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".dcm", ".dicom":
		return KindDICOM, true
	case ".vcf":
		return KindVCF, true
	default:
		return "", false
	}
}
