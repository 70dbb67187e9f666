package imaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"phisweep/internal/privacy"
	"phisweep/internal/rules"
	"phisweep/internal/services"
)

// EmptyTrigger selects when an "empty" anonymization rule flags a tag.
type EmptyTrigger string

const (
	// TriggerValuePresent flags the tag when it holds a value.
	TriggerValuePresent EmptyTrigger = "value_present"
	// TriggerValueAbsent flags the tag when its value is empty.
	TriggerValueAbsent EmptyTrigger = "value_absent"
)

// ParseEmptyTrigger accepts the configuration spelling of a trigger.
func ParseEmptyTrigger(value string) (EmptyTrigger, bool) {
	switch EmptyTrigger(strings.ToLower(strings.TrimSpace(value))) {
	case TriggerValuePresent, "":
		return TriggerValuePresent, true
	case TriggerValueAbsent:
		return TriggerValueAbsent, true
	default:
		return "", false
	}
}

const (
	dateCutoffYear   = 1850
	dateSentinelYear = 1851
)

// Options tune the classifier's fail-safe policies.
type Options struct {
	// UndefinedTagsArePHI treats any tag missing from the rule table as PHI.
	UndefinedTagsArePHI bool
	EmptyTrigger        EmptyTrigger
}

// Classifier applies a rule table to datasets. It holds no per-file state
// and is safe to reuse.
type Classifier struct {
	table   *rules.Table
	decoder Decoder
	opts    Options
}

// NewClassifier builds a classifier. decoder may be nil when only Classify
// is used.
func NewClassifier(table *rules.Table, decoder Decoder, opts Options) *Classifier {
	if opts.EmptyTrigger == "" {
		opts.EmptyTrigger = TriggerValuePresent
	}
	return &Classifier{table: table, decoder: decoder, opts: opts}
}

// Kind reports the file kind this classifier handles.
func (c *Classifier) Kind() privacy.FileKind { return privacy.KindDICOM }

// ClassifyFile decodes path and classifies it. A decode failure yields
// file_not_found; the returned error carries the kind for logging.
func (c *Classifier) ClassifyFile(ctx context.Context, path string) (privacy.Result, error) {
	if c.decoder == nil {
		err := services.Wrap(services.ErrConfiguration, "imaging", "classify", "no decoder configured", nil)
		return privacy.Result{Kind: privacy.KindDICOM, Status: privacy.StatusIndeterminate, Err: err}, err
	}
	dataset, err := c.decoder.Decode(ctx, path)
	if err != nil {
		if !services.IsFatal(err) {
			err = services.Wrap(services.ErrNotFound, "imaging", "decode", path, err)
		}
		return privacy.Result{Kind: privacy.KindDICOM, Status: privacy.StatusFileNotFound, Err: err}, err
	}
	result := c.Classify(dataset)
	return result, result.Err
}

// Classify runs the rule table over an already decoded dataset.
func (c *Classifier) Classify(dataset Dataset) privacy.Result {
	result := privacy.Result{Kind: privacy.KindDICOM}
	counts := privacy.TagCounts{Total: dataset.Total()}
	var phiTags, undefined []string

	for el := range dataset.Elements() {
		tag := rules.NormalizeTag(el.Tag)
		value := strings.TrimSpace(el.Value)

		rule, ok := c.table.Lookup(tag)
		if !ok {
			counts.NoKey++
			undefined = append(undefined, tag)
			continue
		}
		if !rule.IsPHI {
			counts.NoPHI++
			continue
		}
		if c.flags(rule.Anon, value) {
			counts.IsPHI++
			phiTags = append(phiTags, tag)
		} else {
			counts.Blank++
		}
	}

	result.Counts = counts
	if !counts.Balanced() {
		result.Status = privacy.StatusIndeterminate
		result.Err = services.Wrap(services.ErrConsistency, "imaging", "classify",
			fmt.Sprintf("tag count mismatch: total=%d blank=%d nokey=%d isphi=%d nophi=%d",
				counts.Total, counts.Blank, counts.NoKey, counts.IsPHI, counts.NoPHI), nil)
		return result
	}

	result.PHITags = phiTags
	result.UndefinedTags = undefined
	switch {
	case counts.IsPHI > 0:
		result.Status = privacy.StatusIsPHI
	case c.opts.UndefinedTagsArePHI && counts.NoKey > 0:
		result.Status = privacy.StatusIsPHI
	default:
		result.Status = privacy.StatusNotPHI
	}
	return result
}

// flags reports whether a PHI-ruled tag with the given value counts as
// evidence.
func (c *Classifier) flags(rule rules.AnonRule, value string) bool {
	switch rule.Kind {
	case rules.AnonEmpty:
		if c.opts.EmptyTrigger == TriggerValueAbsent {
			return value == ""
		}
		return value != ""
	case rules.AnonIncrementDate:
		return leadingYear(value) > dateCutoffYear
	default:
		return true
	}
}

// leadingYear parses the first four characters of a DA/DT value. Values that
// do not start with a year return the sentinel, which is past the cutoff.
func leadingYear(value string) int {
	if len(value) < 4 {
		return dateSentinelYear
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil {
		return dateSentinelYear
	}
	return year
}
