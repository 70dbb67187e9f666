package rules

import "strings"

// AnonKind enumerates the anonymization rules the imaging classifier branches on.
type AnonKind uint8

const (
	AnonNone AnonKind = iota
	AnonRemove
	AnonEmpty
	AnonIncrementDate
	AnonOther
)

var anonNames = map[AnonKind]string{
	AnonNone:          "none",
	AnonRemove:        "remove",
	AnonEmpty:         "empty",
	AnonIncrementDate: "increment_date",
	AnonOther:         "other",
}

func (k AnonKind) String() string {
	if name, ok := anonNames[k]; ok {
		return name
	}
	return "other"
}

// AnonRule is a parsed anonymization rule. Raw keeps the source text so rules
// outside the known set can still be displayed.
type AnonRule struct {
	Kind AnonKind
	Raw  string
}

// ParseAnonRule classifies free-form rule text. Matching is case-insensitive
// and substring based, so "remove_or_empty" resolves to remove.
func ParseAnonRule(raw string) AnonRule {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	rule := AnonRule{Raw: text}
	switch {
	case lower == "" || lower == "none":
		rule.Kind = AnonNone
	case strings.Contains(lower, "remove"):
		rule.Kind = AnonRemove
	case strings.Contains(lower, "incrementdate"), strings.Contains(lower, "increment_date"):
		rule.Kind = AnonIncrementDate
	case strings.Contains(lower, "empty"):
		rule.Kind = AnonEmpty
	default:
		rule.Kind = AnonOther
	}
	return rule
}

func (r AnonRule) String() string {
	if r.Kind == AnonOther && r.Raw != "" {
		return r.Raw
	}
	return r.Kind.String()
}
