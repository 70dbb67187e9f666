package variant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"phisweep/internal/privacy"
	"phisweep/internal/services"
)

const (
	DefaultStatusField         = "SS"
	DefaultGermlineSomaticCode = 1
	DefaultThresholdPct        = 50

	// ReasonFieldAbsent is recorded when the header lacks the status field.
	ReasonFieldAbsent = "field absent"
)

// Options configure the classifier. An empty StatusField or a zero
// GermlineSomaticCode selects the default. ThresholdPct is used as given, so
// 0 marks a file is_pii as soon as one sample carries the code; a negative
// value selects DefaultThresholdPct.
type Options struct {
	StatusField         string
	GermlineSomaticCode int
	ThresholdPct        float64
}

// DefaultOptions returns the SS / code 1 / 50% configuration.
func DefaultOptions() Options {
	return Options{
		StatusField:         DefaultStatusField,
		GermlineSomaticCode: DefaultGermlineSomaticCode,
		ThresholdPct:        DefaultThresholdPct,
	}
}

// Classifier applies the germline-ratio rule to VCF streams.
type Classifier struct {
	opener    Opener
	field     string
	code      int
	threshold float64
}

// NewClassifier builds a classifier. opener may be nil when only Classify is
// used.
func NewClassifier(opener Opener, opts Options) *Classifier {
	field := strings.TrimSpace(opts.StatusField)
	if field == "" {
		field = DefaultStatusField
	}
	code := opts.GermlineSomaticCode
	if code == 0 {
		code = DefaultGermlineSomaticCode
	}
	pct := opts.ThresholdPct
	if pct < 0 {
		pct = DefaultThresholdPct
	}
	return &Classifier{opener: opener, field: field, code: code, threshold: pct / 100}
}

// Kind reports the file kind this classifier handles.
func (c *Classifier) Kind() privacy.FileKind { return privacy.KindVCF }

// Threshold returns the ratio a file must exceed to be marked is_pii.
func (c *Classifier) Threshold() float64 { return c.threshold }

// ClassifyFile opens path and classifies it. An open failure yields
// file_not_found.
func (c *Classifier) ClassifyFile(ctx context.Context, path string) (privacy.Result, error) {
	if c.opener == nil {
		err := services.Wrap(services.ErrConfiguration, "variant", "classify", "no opener configured", nil)
		return privacy.Result{Kind: privacy.KindVCF, Status: privacy.StatusIndeterminate, Err: err}, err
	}
	stream, err := c.opener.Open(ctx, path, c.field)
	if err != nil {
		if !services.IsFatal(err) {
			err = services.Wrap(services.ErrNotFound, "variant", "open", path, err)
		}
		return privacy.Result{Kind: privacy.KindVCF, Status: privacy.StatusFileNotFound, Err: err}, err
	}
	defer stream.Close()
	result := c.Classify(ctx, stream)
	return result, result.Err
}

// Classify scans every (record, sample) pair of the stream.
func (c *Classifier) Classify(ctx context.Context, stream Stream) privacy.Result {
	result := privacy.Result{Kind: privacy.KindVCF}
	if !stream.DeclaresField(c.field) {
		result.Status = privacy.StatusNotPII
		result.Reason = ReasonFieldAbsent
		return result
	}

	var examined, marked int
	for {
		if err := ctx.Err(); err != nil {
			result.Status = privacy.StatusIndeterminate
			result.Err = err
			return result
		}
		record, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.indeterminate(result, "read record", err)
		}
		for _, raw := range record.Samples {
			examined++
			value := strings.TrimSpace(raw)
			if value == "" || value == "." {
				continue
			}
			code, err := strconv.Atoi(value)
			if err != nil {
				return c.indeterminate(result, fmt.Sprintf("malformed %s value %q", c.field, value), err)
			}
			if code == c.code {
				marked++
			}
		}
	}

	denominator := examined
	if denominator == 0 {
		denominator = 1
	}
	ratio := float64(marked) / float64(denominator)
	if ratio > c.threshold {
		result.Status = privacy.StatusIsPII
	} else {
		result.Status = privacy.StatusNotPII
	}
	result.Reason = fmt.Sprintf("%s=%d in %d of %d samples: ratio %.4f, threshold %.4f",
		c.field, c.code, marked, examined, ratio, c.threshold)
	return result
}

func (c *Classifier) indeterminate(result privacy.Result, message string, err error) privacy.Result {
	result.Status = privacy.StatusIndeterminate
	result.Err = services.Wrap(services.ErrParse, "variant", "scan", message, err)
	result.Reason = message
	return result
}
