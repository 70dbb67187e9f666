package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"phisweep/internal/privacy"
	"phisweep/internal/workflow"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Store", statusError, "unreachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Store:", "[ERROR] unreachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Store", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[privacy.Status]string{
		privacy.StatusFileNotFound:  "File Not Found",
		privacy.StatusIsPHI:         "Is Phi",
		privacy.StatusIndeterminate: "Indeterminate",
	}
	for status, want := range tests {
		if got := statusLabel(status); got != want {
			t.Errorf("statusLabel(%s) = %q, want %q", status, got, want)
		}
	}
}

func TestSummaryLines(t *testing.T) {
	summary := workflow.Summary{
		BatchID: "b-1",
		Kind:    privacy.KindDICOM,
		Fetched: 5,
		Statuses: map[privacy.Status]int{
			privacy.StatusIsPHI:        2,
			privacy.StatusFileNotFound: 1,
		},
		PersistFailures: 1,
		Cancelled:       true,
		Classified:      3,
	}
	lines := summaryLines(summary, false)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"DICOM batch", "b-1", "[WARN] 2", "[ERROR] 1", "Persist failures", "Cancelled"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "Not Phi") {
		t.Fatalf("zero counts should be omitted:\n%s", joined)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
