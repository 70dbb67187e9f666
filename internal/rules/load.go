package rules

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"phisweep/internal/services"
)

//go:embed default_rules.csv
var defaultRules []byte

// EmbeddedSource is the Source of the built-in table.
const EmbeddedSource = "embedded"

// Format selects the parser for a rule source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and CSV otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Open loads the table at path, or the embedded default when path is empty.
func Open(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// Default parses the embedded rule table.
func Default() (*Table, error) {
	return Parse(EmbeddedSource, bytes.NewReader(defaultRules), FormatCSV)
}

// Load reads a rule table from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rules", "open", path, err)
	}
	defer f.Close()
	return Parse(path, f, FormatForPath(path))
}

// Parse reads rows from r in the given format.
func Parse(source string, r io.Reader, format Format) (*Table, error) {
	var (
		rows []TagRule
		err  error
	)
	switch format {
	case FormatYAML:
		rows, err = parseYAML(r)
	case FormatCSV, "":
		rows, err = parseCSV(r)
	default:
		err = fmt.Errorf("unsupported rule format %q", format)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rules", "parse", source, err)
	}
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "rules", "parse", source, errors.New("rule table is empty"))
	}
	return New(source, rows), nil
}

func parseCSV(r io.Reader) ([]TagRule, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []TagRule
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "tag") {
			continue
		}
		line, _ := reader.FieldPos(0)
		record = joinSplitTag(record)
		if len(record) < 6 {
			return nil, fmt.Errorf("line %d: expected at least 6 columns, got %d", line, len(record))
		}
		isPHI, err := parseFlag(record[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := TagRule{
			Tag:     record[0],
			Name:    strings.TrimSpace(record[1]),
			VR:      strings.TrimSpace(record[2]),
			VM:      strings.TrimSpace(record[3]),
			Version: strings.TrimSpace(record[4]),
			IsPHI:   isPHI,
		}
		if len(record) > 6 {
			row.Anon = ParseAnonRule(record[6])
		}
		rows = append(rows, row)
	}
}

// joinSplitTag undoes the split csv makes inside an unquoted
// "(gggg,eeee)" or "gggg,eeee" tag column.
func joinSplitTag(record []string) []string {
	if len(record) < 2 {
		return record
	}
	first, second := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
	split := strings.HasPrefix(first, "(") && !strings.Contains(first, ")") && strings.HasSuffix(second, ")")
	if !split && len(first) == 4 && len(second) == 4 && isHexWord(first) && isHexWord(second) {
		split = true
	}
	if !split {
		return record
	}
	joined := make([]string, 0, len(record)-1)
	joined = append(joined, first+","+second)
	return append(joined, record[2:]...)
}

func isHexWord(s string) bool {
	for _, r := range s {
		if !isHex(r) {
			return false
		}
	}
	return s != ""
}

type yamlRule struct {
	Tag     string `yaml:"tag"`
	Name    string `yaml:"name"`
	VR      string `yaml:"vr"`
	VM      string `yaml:"vm"`
	Version string `yaml:"version"`
	IsPHI   scalarText `yaml:"is_phi"`
	Rule    string `yaml:"anonymization_rule"`
}

// scalarText accepts booleans, numbers and strings alike.
type scalarText string

func (s *scalarText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	*s = scalarText(node.Value)
	return nil
}

func parseYAML(r io.Reader) ([]TagRule, error) {
	var entries []yamlRule
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	rows := make([]TagRule, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Tag) == "" {
			return nil, fmt.Errorf("entry %d: tag is required", i+1)
		}
		isPHI, err := parseFlag(string(entry.IsPHI))
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, entry.Tag, err)
		}
		rows = append(rows, TagRule{
			Tag:     entry.Tag,
			Name:    strings.TrimSpace(entry.Name),
			VR:      strings.TrimSpace(entry.VR),
			VM:      strings.TrimSpace(entry.VM),
			Version: strings.TrimSpace(entry.Version),
			IsPHI:   isPHI,
			Anon:    ParseAnonRule(entry.Rule),
		})
	}
	return rows, nil
}

func parseFlag(raw string) (bool, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "yes", "y", "x":
		return true, nil
	case "no", "n", "":
		return false, nil
	}
	flag, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid is_phi value %q", raw)
	}
	return flag, nil
}
