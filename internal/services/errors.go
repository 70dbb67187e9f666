package services

import (
	"errors"
	"fmt"
	"strings"

	"phisweep/internal/privacy"
)

var (
	// ErrConnectivity marks a metadata store that cannot be reached. It is
	// the only batch-fatal error kind.
	ErrConnectivity = errors.New("store connectivity error")
	// ErrNotFound marks a file the codec could not open or decode.
	ErrNotFound = errors.New("not found")
	// ErrParse marks a malformed value met while scanning a decoded file.
	ErrParse = errors.New("parse error")
	// ErrConsistency marks a tag-count invariant violation.
	ErrConsistency = errors.New("consistency error")
	// ErrDuplicate marks a path already classified in the current batch.
	ErrDuplicate     = errors.New("duplicate")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later status classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrParse
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// StatusFor maps a per-file error to the privacy status recorded for it.
// Unknown kinds, including nil, resolve to indeterminate.
func StatusFor(err error) privacy.Status {
	switch {
	case errors.Is(err, ErrNotFound):
		return privacy.StatusFileNotFound
	case errors.Is(err, ErrDuplicate):
		return privacy.StatusDuplicate
	default:
		return privacy.StatusIndeterminate
	}
}

// IsFatal reports whether err must abort the whole batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// Kind returns a short label for the error's marker, used as a log field.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
