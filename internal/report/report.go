// Package report exports persisted classification entries.
//
// By default only the latest entry per file is kept: the one with the
// greatest timestamp, ties going to the later append. History mode keeps
// every entry. Rows are ordered by file name, then timestamp.
package report

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

// Generate fetches the entries of kind and applies the latest-only filter
// unless history is set.
func Generate(ctx context.Context, st store.Store, kind privacy.FileKind, history bool) ([]store.Entry, error) {
	entries, err := st.Entries(ctx, kind)
	if err != nil {
		return nil, err
	}
	return Build(entries, history), nil
}

// Build filters and orders entries. The input is not modified.
func Build(entries []store.Entry, history bool) []store.Entry {
	var rows []store.Entry
	if history {
		rows = slices.Clone(entries)
	} else {
		latest := make(map[string]store.Entry, len(entries))
		for _, e := range entries {
			name := strings.TrimSpace(e.FileName)
			current, ok := latest[name]
			if !ok || newer(e, current) {
				latest[name] = e
			}
		}
		rows = make([]store.Entry, 0, len(latest))
		for _, e := range latest {
			rows = append(rows, e)
		}
	}
	slices.SortStableFunc(rows, func(a, b store.Entry) int {
		if c := cmp.Compare(strings.TrimSpace(a.FileName), strings.TrimSpace(b.FileName)); c != 0 {
			return c
		}
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return rows
}

func newer(a, b store.Entry) bool {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c > 0
	}
	return a.Seq > b.Seq
}

// Header returns the column names for kind.
func Header(kind privacy.FileKind) []string {
	base := []string{"file_format", "file_name", "privacy_timestamp", "privacy_rule_status"}
	if kind == privacy.KindVCF {
		return append(base, "privacy_rule_reason")
	}
	return append(base, "privacy_dicom_phi_rule", "privacy_dicom_unref_rule")
}

// Fields renders one entry in Header(kind) order. Missing values are empty.
func Fields(kind privacy.FileKind, e store.Entry) []string {
	format := string(e.Format)
	if format == "" {
		format = string(kind)
	}
	stamp := ""
	if !e.Timestamp.IsZero() {
		stamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	row := []string{format, strings.TrimSpace(e.FileName), stamp, e.Status.String()}
	if kind == privacy.KindVCF {
		return append(row, e.Reason)
	}
	return append(row, strings.Join(e.PHITags, ";"), strings.Join(e.UndefinedTags, ";"))
}
