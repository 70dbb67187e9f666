package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phisweep/internal/testsupport"
)

func TestRunClassifiesAndReports(t *testing.T) {
	env := setupCLITestEnv(t)
	somatic := filepath.Join(env.dataDir, "somatic.vcf")
	testsupport.WriteVCF(t, somatic, true, []string{"1", "1", "1", "2"})
	plain := filepath.Join(env.dataDir, "nested", "plain.vcf")
	testsupport.WriteVCF(t, plain, false, []string{"0/1"})

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "phisweep run - done")

	out, _, err = runCLI(t, []string{"report", "vcf"}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	reportPath := env.cfg.ReportPath("vcf")
	requireContains(t, out, "Wrote 2 row(s) to "+reportPath)

	f, err := os.Open(reportPath)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	statuses := map[string]string{}
	for _, rec := range records[1:] {
		statuses[rec[0]] = strings.Join(rec, ",")
	}
	requireContains(t, statuses[somatic], "is_pii")
	requireContains(t, statuses[plain], "not_pii")

	// A second run has nothing left to classify.
	if _, _, err := runCLI(t, []string{"run", "--skip-scan"}, env.configPath); err != nil {
		t.Fatalf("second run: %v", err)
	}
	out, _, err = runCLI(t, []string{"report", "vcf", "--history", "--output", "-"}, env.configPath)
	if err != nil {
		t.Fatalf("report history: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines != 2 {
		t.Fatalf("expected 2 history rows, got output:\n%s", out)
	}
}

func TestScanThenClassify(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteVCF(t, filepath.Join(env.dataDir, "a.vcf"), true, []string{"2", "2"})
	testsupport.WriteFile(t, filepath.Join(env.dataDir, "notes.txt"), 4)

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Registered 1 file(s)")

	out, _, err = runCLI(t, []string{"classify", "vcf"}, env.configPath)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "phisweep classify vcf - done")

	if _, _, err := runCLI(t, []string{"classify", "bam"}, env.configPath); err == nil {
		t.Fatal("expected an unknown kind to fail")
	}
}

func TestClassifyDICOMWithEmbeddedRules(t *testing.T) {
	env := setupCLITestEnv(t)
	if env.cfg.DICOM.RulesFile != "" {
		t.Fatalf("test config should leave rules_file empty, got %q", env.cfg.DICOM.RulesFile)
	}
	named := filepath.Join(env.dataDir, "named.dcm")
	testsupport.WriteDICOM(t, named, "DOE^JOHN")
	anonymous := filepath.Join(env.dataDir, "anon.dcm")
	testsupport.WriteDICOM(t, anonymous, "")

	if _, _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, _, err := runCLI(t, []string{"classify", "dicom"}, env.configPath)
	if err != nil {
		t.Fatalf("classify dicom: %v\n%s", err, out)
	}
	requireContains(t, out, "phisweep classify dicom - done")

	out, _, err = runCLI(t, []string{"report", "dicom", "--output", "-"}, env.configPath)
	if err != nil {
		t.Fatalf("report dicom: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse report: %v", err)
	}
	rows := map[string][]string{}
	for _, rec := range records[1:] {
		rows[rec[1]] = rec
	}
	if got := rows[named]; len(got) < 5 || got[3] != "is_phi" || got[4] != "0010,0010" {
		t.Fatalf("named.dcm row = %v, want is_phi with 0010,0010", got)
	}
	if got := rows[anonymous]; len(got) < 4 || got[3] != "not_phi" {
		t.Fatalf("anon.dcm row = %v, want not_phi", got)
	}
}

func TestInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.dataDir, "sample.vcf")
	testsupport.WriteVCF(t, path, true, []string{"2", "2", "1"})

	out, _, err := runCLI(t, []string{"inspect", path, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var view inspectOutput
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if view.Kind != "vcf" || view.Status != "not_pii" {
		t.Fatalf("unexpected inspect result %+v", view)
	}

	out, _, err = runCLI(t, []string{"inspect", filepath.Join(env.dataDir, "missing.dcm"), "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect missing: %v", err)
	}
	view = inspectOutput{}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if view.Status != "file_not_found" || view.ErrorKind != "not_found" {
		t.Fatalf("unexpected missing-file result %+v", view)
	}

	if _, _, err := runCLI(t, []string{"inspect", filepath.Join(env.dataDir, "x.bin")}, env.configPath); err == nil {
		t.Fatal("expected an unknown extension without --kind to fail")
	}
}

func TestRulesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"rules", "--tag", "0010,0010"}, env.configPath)
	if err != nil {
		t.Fatalf("rules --tag: %v", err)
	}
	requireContains(t, out, "0010,0010")
	requireContains(t, out, "PatientName")
	requireContains(t, out, "yes")

	out, _, err = runCLI(t, []string{"rules", "--phi"}, env.configPath)
	if err != nil {
		t.Fatalf("rules --phi: %v", err)
	}
	requireContains(t, out, "rule(s)")

	if _, _, err := runCLI(t, []string{"rules", "--tag", "7777,7777"}, env.configPath); err == nil {
		t.Fatal("expected an unknown tag to fail")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Metadata store")
}
