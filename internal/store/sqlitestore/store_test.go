package sqlitestore_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"phisweep/internal/privacy"
	"phisweep/internal/store"
	"phisweep/internal/store/sqlitestore"
	"phisweep/internal/store/storetest"
	"phisweep/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	id := testsupport.AddFile(t, st, "/data/a.dcm")
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := sqlitestore.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	pending, err := reopened.Unprocessed(context.Background(), []string{"*.dcm"})
	if err != nil {
		t.Fatalf("Unprocessed: %v", err)
	}
	if len(pending) != 1 || pending[0].RecordID != id {
		t.Fatalf("expected record %s to survive reopen, got %+v", id, pending)
	}
}

func TestAddRecordRequiresFileName(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := st.AddRecord(context.Background(), store.Discovery{FileName: "   "}); err == nil {
		t.Fatal("expected error for blank file name")
	}
}

func TestUnprocessedFiltersByPatternAndEntries(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	dcm := testsupport.AddFile(t, st, "/data/scan.dcm")
	testsupport.AddFile(t, st, "/data/calls.vcf")
	gz := testsupport.AddFile(t, st, "/data/calls.vcf.gz")
	testsupport.AddFile(t, st, "/data/readme.txt")

	pending, err := st.Unprocessed(ctx, []string{"*.vcf", "*.vcf.gz"})
	if err != nil {
		t.Fatalf("Unprocessed: %v", err)
	}
	if len(pending) != 2 || pending[1].RecordID != gz {
		t.Fatalf("unexpected vcf pending %+v", pending)
	}

	if err := st.Append(ctx, dcm, store.Classification{Format: privacy.KindDICOM, Status: privacy.StatusNotPHI}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	pending, err = st.Unprocessed(ctx, []string{"*.dcm"})
	if err != nil {
		t.Fatalf("Unprocessed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("classified record should not be pending, got %+v", pending)
	}
}

func TestAppendKeepsHistory(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	id := testsupport.AddFile(t, st, "/data/scan.dcm")
	vcf := testsupport.AddFile(t, st, "/data/calls.vcf")

	first := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	if err := st.Append(ctx, id, store.Classification{
		Format:        privacy.KindDICOM,
		Timestamp:     first,
		Status:        privacy.StatusIsPHI,
		PHITags:       []string{"0010,0010"},
		UndefinedTags: []string{"0009,1001"},
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := st.Append(ctx, id, store.Classification{Format: privacy.KindDICOM, Timestamp: second, Status: privacy.StatusNotPHI}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := st.Append(ctx, vcf, store.Classification{Format: privacy.KindVCF, Timestamp: second, Status: privacy.StatusNotPII, Reason: "field absent"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := st.Entries(ctx, privacy.KindDICOM)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 dicom entries, got %d", len(entries))
	}
	if entries[0].Seq >= entries[1].Seq {
		t.Fatalf("entries should be in append order: %d, %d", entries[0].Seq, entries[1].Seq)
	}
	got := entries[0]
	if got.FileName != "/data/scan.dcm" || got.Status != privacy.StatusIsPHI || !got.Timestamp.Equal(first) {
		t.Fatalf("unexpected first entry %+v", got)
	}
	if !slices.Equal(got.PHITags, []string{"0010,0010"}) || !slices.Equal(got.UndefinedTags, []string{"0009,1001"}) {
		t.Fatalf("tag lists not round-tripped: %+v", got)
	}
	if entries[1].PHITags != nil {
		t.Fatalf("expected nil phi tags for clean entry, got %v", entries[1].PHITags)
	}

	all, err := st.Entries(ctx, "")
	if err != nil {
		t.Fatalf("Entries(all): %v", err)
	}
	if len(all) != 3 || all[2].Reason != "field absent" {
		t.Fatalf("unexpected full history %+v", all)
	}
}

func TestAppendUnknownRecord(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	for _, id := range []string{"999", "not-a-number"} {
		err := st.Append(context.Background(), id, store.Classification{Format: privacy.KindVCF, Status: privacy.StatusNotPII})
		if !errors.Is(err, store.ErrUnknownRecord) {
			t.Fatalf("Append(%q): expected ErrUnknownRecord, got %v", id, err)
		}
	}
}

func TestAddRecordFillsHash(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	id, err := st.AddRecord(ctx, store.Discovery{FileName: " /data/x.dcm ", FileSize: 10, State: "M"})
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	pending, err := st.Unprocessed(ctx, []string{"*.dcm"})
	if err != nil {
		t.Fatalf("Unprocessed: %v", err)
	}
	if len(pending) != 1 || pending[0].RecordID != id || pending[0].FileName != "/data/x.dcm" {
		t.Fatalf("unexpected pending %+v", pending)
	}
}

func TestStoreBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	})
}
