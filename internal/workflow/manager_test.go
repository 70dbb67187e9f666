package workflow_test

import (
	"context"
	"path/filepath"
	"testing"

	"phisweep/internal/discovery"
	"phisweep/internal/privacy"
	"phisweep/internal/testsupport"
	"phisweep/internal/variant"
	"phisweep/internal/workflow"
)

func TestManagerRunsDiscoveryThenBatches(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithScanDirectories("data"))
	dir := cfg.Scan.Directories[0]

	somatic := filepath.Join(dir, "somatic.vcf")
	testsupport.WriteVCF(t, somatic, true,
		[]string{"1", "1", "1", "1", "1", "2", "2", "2", "2", "1"},
	)
	plain := filepath.Join(dir, "plain.vcf")
	testsupport.WriteVCF(t, plain, false, []string{"0/1", "0/1"})

	st := testsupport.MustOpenStore(t, cfg)
	missing := filepath.Join(dir, "gone", "scan.dcm")
	for range 3 {
		testsupport.AddFile(t, st, missing)
	}

	classifiers, err := workflow.BuildClassifiers(cfg)
	if err != nil {
		t.Fatalf("BuildClassifiers: %v", err)
	}
	mgr := workflow.NewManager(cfg, st, nil,
		workflow.WithScanner(discovery.ForConfig(cfg, -1, nil)),
		workflow.WithClassifiers(classifiers.Ordered()...),
	)
	report, err := mgr.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Discovered != 2 {
		t.Fatalf("expected 2 discovered files, got %d", report.Discovered)
	}
	if len(report.Batches) != 2 || report.Batches[0].Kind != privacy.KindVCF {
		t.Fatalf("expected vcf batch then dicom batch, got %+v", report.Batches)
	}

	vcf, err := st.Entries(ctx, privacy.KindVCF)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	byName := map[string]privacy.Status{}
	reasons := map[string]string{}
	for _, e := range vcf {
		byName[e.FileName] = e.Status
		reasons[e.FileName] = e.Reason
	}
	if byName[somatic] != privacy.StatusIsPII {
		t.Fatalf("somatic.vcf = %s (%s), want is_pii", byName[somatic], reasons[somatic])
	}
	if byName[plain] != privacy.StatusNotPII || reasons[plain] != variant.ReasonFieldAbsent {
		t.Fatalf("plain.vcf = %s (%s), want not_pii with field absent", byName[plain], reasons[plain])
	}

	dicom, err := st.Entries(ctx, privacy.KindDICOM)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var got []privacy.Status
	for _, e := range dicom {
		got = append(got, e.Status)
	}
	want := []privacy.Status{privacy.StatusFileNotFound, privacy.StatusDuplicate, privacy.StatusDuplicate}
	if len(got) != len(want) {
		t.Fatalf("dicom statuses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dicom statuses = %v, want %v", got, want)
		}
	}

	rerun := workflow.NewManager(cfg, st, nil, workflow.WithClassifiers(classifiers.Ordered()...))
	again, err := rerun.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for _, b := range again.Batches {
		if b.Fetched != 0 {
			t.Fatalf("records should not be refetched once they have an entry: %+v", b)
		}
	}
}
