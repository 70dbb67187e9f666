package privacy

import (
	"fmt"
	"strings"
)

// Status is the privacy classification recorded for a file.
type Status uint8

const (
	StatusUnprocessed Status = iota
	StatusIsPHI
	StatusNotPHI
	StatusIsPII
	StatusNotPII
	StatusIndeterminate
	StatusFileNotFound
	StatusDuplicate
)

var statusNames = map[Status]string{
	StatusUnprocessed:   "unprocessed",
	StatusIsPHI:         "is_phi",
	StatusNotPHI:        "not_phi",
	StatusIsPII:         "is_pii",
	StatusNotPII:        "not_pii",
	StatusIndeterminate: "indeterminate",
	StatusFileNotFound:  "file_not_found",
	StatusDuplicate:     "duplicate",
}

var statusByName = func() map[string]Status {
	out := make(map[string]Status, len(statusNames))
	for status, name := range statusNames {
		out[name] = status
	}
	return out
}()

// AllStatuses returns every status in declaration order.
func AllStatuses() []Status {
	return []Status{
		StatusUnprocessed,
		StatusIsPHI,
		StatusNotPHI,
		StatusIsPII,
		StatusNotPII,
		StatusIndeterminate,
		StatusFileNotFound,
		StatusDuplicate,
	}
}

// String returns the store spelling of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// ParseStatus converts a stored status string into a Status.
func ParseStatus(value string) (Status, bool) {
	status, ok := statusByName[strings.ToLower(strings.TrimSpace(value))]
	return status, ok
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown privacy status %d", uint8(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	status, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown privacy status %q", string(text))
	}
	*s = status
	return nil
}

// IsVerdict reports whether the status is a classifier verdict rather than a
// bookkeeping outcome (unprocessed, file_not_found, duplicate).
func (s Status) IsVerdict() bool {
	switch s {
	case StatusIsPHI, StatusNotPHI, StatusIsPII, StatusNotPII, StatusIndeterminate:
		return true
	default:
		return false
	}
}
