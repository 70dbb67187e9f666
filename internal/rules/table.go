package rules

import (
	"slices"
)

// TagRule is one row of the rule table.
type TagRule struct {
	Tag     string
	Name    string
	VR      string
	VM      string
	Version string
	IsPHI   bool
	Anon    AnonRule
}

// Table is an immutable tag id → rule mapping. A nil *Table behaves as an
// empty table.
type Table struct {
	source   string
	rules    map[string]TagRule
	order    []string
	shadowed int
}

// New builds a table from rows in source order. Tags are normalized; the
// first row for a tag wins.
func New(source string, rows []TagRule) *Table {
	t := &Table{
		source: source,
		rules:  make(map[string]TagRule, len(rows)),
		order:  make([]string, 0, len(rows)),
	}
	for _, row := range rows {
		row.Tag = NormalizeTag(row.Tag)
		if row.Tag == "" {
			continue
		}
		if _, exists := t.rules[row.Tag]; exists {
			t.shadowed++
			continue
		}
		t.rules[row.Tag] = row
		t.order = append(t.order, row.Tag)
	}
	return t
}

// Lookup returns the rule for a tag id in any spelling NormalizeTag accepts.
func (t *Table) Lookup(tag string) (TagRule, bool) {
	if t == nil {
		return TagRule{}, false
	}
	rule, ok := t.rules[NormalizeTag(tag)]
	return rule, ok
}

// Len reports the number of distinct tags.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Shadowed reports how many later variants lost to an earlier row.
func (t *Table) Shadowed() int {
	if t == nil {
		return 0
	}
	return t.shadowed
}

// Source names where the table came from: a file path or "embedded".
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Rules returns the rows in load order.
func (t *Table) Rules() []TagRule {
	if t == nil {
		return nil
	}
	out := make([]TagRule, 0, len(t.order))
	for _, tag := range t.order {
		out = append(out, t.rules[tag])
	}
	return out
}

// PHITags returns the sorted ids of every tag ruled as PHI.
func (t *Table) PHITags() []string {
	if t == nil {
		return nil
	}
	var tags []string
	for tag, rule := range t.rules {
		if rule.IsPHI {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}
