package rules

import (
	"strings"
	"unicode"
)

// NormalizeTag converts the common spellings of a DICOM tag id into the
// canonical "GGGG,EEEE" form: "(0010,0010)", "0010 0010", "00100010" and
// "(0010, 0010)" all become "0010,0010". Input that does not hold exactly
// eight hex digits is returned upper-cased with brackets and spaces removed
// so it can still be compared, but it will not match a well-formed rule.
func NormalizeTag(raw string) string {
	var stripped strings.Builder
	var digits strings.Builder
	clean := true
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == '(' || r == ')' || unicode.IsSpace(r):
			continue
		case r == ',':
			stripped.WriteRune(r)
		case isHex(r):
			upper := unicode.ToUpper(r)
			stripped.WriteRune(upper)
			digits.WriteRune(upper)
		default:
			clean = false
			stripped.WriteRune(unicode.ToUpper(r))
		}
	}
	hex := digits.String()
	if !clean || len(hex) != 8 || strings.Count(stripped.String(), ",") > 1 {
		return stripped.String()
	}
	return hex[:4] + "," + hex[4:]
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
