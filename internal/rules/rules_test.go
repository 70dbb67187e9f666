package rules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phisweep/internal/services"
)

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"(0010,0010)":   "0010,0010",
		"0010,0010":     "0010,0010",
		"(0010, 0010)":  "0010,0010",
		"00100010":      "0010,0010",
		" 0008 103e ":   "0008,103E",
		"(7fe0,0010)":   "7FE0,0010",
		"PatientName":   "PATIENTNAME",
		"(0010,001)":    "0010,001",
		"":              "",
	}
	for input, want := range cases {
		if got := NormalizeTag(input); got != want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAnonRule(t *testing.T) {
	tests := []struct {
		raw  string
		want AnonKind
	}{
		{"", AnonNone},
		{"None", AnonNone},
		{"remove", AnonRemove},
		{"Remove_or_Empty", AnonRemove},
		{"incrementdate", AnonIncrementDate},
		{"increment_date", AnonIncrementDate},
		{"EMPTY", AnonEmpty},
		{"hashuid", AnonOther},
	}
	for _, tt := range tests {
		if got := ParseAnonRule(tt.raw).Kind; got != tt.want {
			t.Errorf("ParseAnonRule(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
	if got := ParseAnonRule(" hashuid ").String(); got != "hashuid" {
		t.Fatalf("expected raw text for other rule, got %q", got)
	}
}

func TestParseCSVFirstVariantWins(t *testing.T) {
	src := strings.Join([]string{
		"# comment",
		"tag,name,vr,vm,version,is_phi,anonymization_rule",
		"(0010,0010),PatientName,PN,1,DICOM,true,remove",
		"(0010,0010),PatientName,PN,1,RETIRED,false,",
		"(0008,0060),Modality,CS,1,DICOM,false",
	}, "\n")
	table, err := Parse("inline", strings.NewReader(src), FormatCSV)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", table.Len())
	}
	if table.Shadowed() != 1 {
		t.Fatalf("expected 1 shadowed variant, got %d", table.Shadowed())
	}
	rule, ok := table.Lookup("00100010")
	if !ok {
		t.Fatal("expected lookup hit for patient name")
	}
	if !rule.IsPHI || rule.Anon.Kind != AnonRemove || rule.Version != "DICOM" {
		t.Fatalf("first variant should win, got %+v", rule)
	}
	modality, ok := table.Lookup("(0008,0060)")
	if !ok || modality.IsPHI || modality.Anon.Kind != AnonNone {
		t.Fatalf("unexpected modality rule %+v", modality)
	}
	if _, ok := table.Lookup("(0010,0020)"); ok {
		t.Fatal("expected miss for undefined tag")
	}
}

func TestParseCSVRejectsBadFlag(t *testing.T) {
	_, err := Parse("inline", strings.NewReader("(0010,0010),PatientName,PN,1,DICOM,maybe,remove\n"), FormatCSV)
	if err == nil {
		t.Fatal("expected error for invalid is_phi")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `- tag: "(0010,0010)"
  name: PatientName
  is_phi: true
  anonymization_rule: remove
- tag: "(0010,0030)"
  name: PatientBirthDate
  is_phi: yes
  anonymization_rule: incrementdate
- tag: "(0028,0010)"
  name: Rows
  is_phi: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if table.Source() != path || table.Len() != 3 {
		t.Fatalf("unexpected table %s with %d rules", table.Source(), table.Len())
	}
	birth, _ := table.Lookup("0010,0030")
	if !birth.IsPHI || birth.Anon.Kind != AnonIncrementDate {
		t.Fatalf("unexpected birth date rule %+v", birth)
	}
	got := table.PHITags()
	if len(got) != 2 || got[0] != "0010,0010" || got[1] != "0010,0030" {
		t.Fatalf("unexpected PHI tags %v", got)
	}
}

func TestLoadCSVFileWithCommaTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	content := strings.Join([]string{
		"tag,name,vr,vm,version,is_phi,anonymization_rule",
		"(0010,0010),PatientName,PN,1,DICOM,true,remove",
		"0010,0030,PatientBirthDate,DA,1,DICOM,true,incrementdate",
		`"(0008,0060)",Modality,CS,1,DICOM,false,`,
		"00080090,ReferringPhysicianName,PN,1,DICOM,true,empty",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("expected 4 rules, got %d", table.Len())
	}
	tests := []struct {
		tag   string
		name  string
		isPHI bool
		anon  AnonKind
	}{
		{"0010,0010", "PatientName", true, AnonRemove},
		{"0010,0030", "PatientBirthDate", true, AnonIncrementDate},
		{"0008,0060", "Modality", false, AnonNone},
		{"0008,0090", "ReferringPhysicianName", true, AnonEmpty},
	}
	for _, tt := range tests {
		rule, ok := table.Lookup(tt.tag)
		if !ok {
			t.Fatalf("missing rule for %s", tt.tag)
		}
		if rule.Name != tt.name || rule.IsPHI != tt.isPHI || rule.Anon.Kind != tt.anon {
			t.Errorf("%s: got %+v", tt.tag, rule)
		}
	}
}

func TestJoinSplitTagLeavesWholeColumnsAlone(t *testing.T) {
	record := []string{"0010,0010", "PatientName", "PN"}
	if got := joinSplitTag(record); len(got) != 3 || got[0] != "0010,0010" {
		t.Fatalf("unexpected join %v", got)
	}
	record = []string{"(0010", "0010)", "PatientName"}
	if got := joinSplitTag(record); len(got) != 2 || got[0] != "(0010,0010)" || got[1] != "PatientName" {
		t.Fatalf("unexpected join %v", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := Open("")
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if table.Source() != EmbeddedSource {
		t.Fatalf("unexpected source %q", table.Source())
	}
	if table.Shadowed() != 0 {
		t.Fatalf("embedded table should not shadow rows, got %d", table.Shadowed())
	}
	name, ok := table.Lookup("(0010,0010)")
	if !ok || !name.IsPHI || name.Anon.Kind != AnonRemove {
		t.Fatalf("unexpected patient name rule %+v", name)
	}
	rows, ok := table.Lookup("(0028,0010)")
	if !ok || rows.IsPHI {
		t.Fatalf("unexpected rows rule %+v", rows)
	}
	if len(table.Rules()) != table.Len() {
		t.Fatal("Rules should list every distinct tag")
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if _, ok := table.Lookup("0010,0010"); ok || table.Len() != 0 {
		t.Fatal("nil table should be empty")
	}
}
