// Package storetest holds a behavioural suite every store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

// Run exercises a backend. open must return an empty store; the suite closes
// it.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()
	t.Run("unprocessed order and filtering", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		first := add(t, st, "/data/one.vcf")
		add(t, st, "/data/scan.dcm")
		second := add(t, st, " /data/two.vcf.gz ")

		pending, err := st.Unprocessed(ctx, []string{"*.vcf", "*.vcf.gz"})
		if err != nil {
			t.Fatalf("Unprocessed: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 pending, got %+v", pending)
		}
		if pending[0].RecordID != first || pending[1].RecordID != second {
			t.Fatalf("pending out of discovery order: %+v", pending)
		}
		if pending[1].FileName != "/data/two.vcf.gz" {
			t.Fatalf("file name not trimmed: %q", pending[1].FileName)
		}
	})

	t.Run("append removes from unprocessed and keeps history", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		id := add(t, st, "/data/scan.dcm")
		for _, status := range []privacy.Status{privacy.StatusIndeterminate, privacy.StatusIsPHI} {
			err := st.Append(ctx, id, store.Classification{
				Format:  privacy.KindDICOM,
				Status:  status,
				PHITags: []string{"0010,0010", "0010,0030"},
			})
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
		pending, err := st.Unprocessed(ctx, []string{"*.dcm"})
		if err != nil {
			t.Fatalf("Unprocessed: %v", err)
		}
		if len(pending) != 0 {
			t.Fatalf("classified record still pending: %+v", pending)
		}

		entries, err := st.Entries(ctx, privacy.KindDICOM)
		if err != nil {
			t.Fatalf("Entries: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Seq >= entries[1].Seq {
			t.Fatalf("entries not in append order: %d then %d", entries[0].Seq, entries[1].Seq)
		}
		last := entries[1]
		if last.Status != privacy.StatusIsPHI || last.FileName != "/data/scan.dcm" || last.RecordID != id {
			t.Fatalf("unexpected entry %+v", last)
		}
		if len(last.PHITags) != 2 || last.PHITags[1] != "0010,0030" {
			t.Fatalf("phi tags not preserved: %v", last.PHITags)
		}
		if last.Timestamp.IsZero() {
			t.Fatal("entry timestamp not defaulted")
		}
	})

	t.Run("entries filter by format", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		vcf := add(t, st, "/data/calls.vcf")
		dcm := add(t, st, "/data/scan.dcm")
		mustAppend(t, st, vcf, store.Classification{Format: privacy.KindVCF, Status: privacy.StatusNotPII, Reason: "SS=1 in 0 of 4 samples"})
		mustAppend(t, st, dcm, store.Classification{Format: privacy.KindDICOM, Status: privacy.StatusNotPHI})

		vcfEntries, err := st.Entries(ctx, privacy.KindVCF)
		if err != nil {
			t.Fatalf("Entries: %v", err)
		}
		if len(vcfEntries) != 1 || vcfEntries[0].Reason != "SS=1 in 0 of 4 samples" {
			t.Fatalf("unexpected vcf entries %+v", vcfEntries)
		}
		all, err := st.Entries(ctx, "")
		if err != nil {
			t.Fatalf("Entries: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 entries overall, got %d", len(all))
		}
	})

	t.Run("append to unknown record", func(t *testing.T) {
		st := open(t)
		defer st.Close()
		err := st.Append(context.Background(), missingID, store.Classification{Format: privacy.KindVCF, Status: privacy.StatusNotPII})
		if !errors.Is(err, store.ErrUnknownRecord) {
			t.Fatalf("expected ErrUnknownRecord, got %v", err)
		}
	})

	t.Run("blank file name rejected", func(t *testing.T) {
		st := open(t)
		defer st.Close()
		if _, err := st.AddRecord(context.Background(), store.Discovery{FileName: "  "}); err == nil {
			t.Fatal("expected error for blank file name")
		}
	})
}

// missingID parses as a record id in every backend but never exists.
const missingID = "999999999"

func add(t *testing.T, st store.Store, path string) string {
	t.Helper()
	id, err := st.AddRecord(context.Background(), store.Discovery{FileName: path, FileSize: 10})
	if err != nil {
		t.Fatalf("AddRecord(%s): %v", path, err)
	}
	return id
}

func mustAppend(t *testing.T, st store.Store, id string, c store.Classification) {
	t.Helper()
	if err := st.Append(context.Background(), id, c); err != nil {
		t.Fatalf("Append(%s): %v", id, err)
	}
}
