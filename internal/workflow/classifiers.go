package workflow

import (
	"fmt"

	"phisweep/internal/codec/dicomcodec"
	"phisweep/internal/codec/vcfcodec"
	"phisweep/internal/config"
	"phisweep/internal/imaging"
	"phisweep/internal/privacy"
	"phisweep/internal/rules"
	"phisweep/internal/services"
	"phisweep/internal/variant"
)

// Classifiers holds one classifier per file kind, built from configuration.
type Classifiers struct {
	Rules   *rules.Table
	Imaging *imaging.Classifier
	Variant *variant.Classifier
}

// BuildClassifiers loads the rule table and wires the format codecs.
func BuildClassifiers(cfg *config.Config) (*Classifiers, error) {
	table, err := rules.Open(cfg.DICOM.RulesFile)
	if err != nil {
		return nil, err
	}
	trigger, ok := imaging.ParseEmptyTrigger(cfg.DICOM.EmptyRuleTrigger)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "build classifiers",
			fmt.Sprintf("dicom.empty_rule_trigger %q", cfg.DICOM.EmptyRuleTrigger), nil)
	}
	return &Classifiers{
		Rules: table,
		Imaging: imaging.NewClassifier(table, dicomcodec.New(), imaging.Options{
			UndefinedTagsArePHI: cfg.DICOM.UndefinedTagsArePHI,
			EmptyTrigger:        trigger,
		}),
		Variant: variant.NewClassifier(vcfcodec.New(), variant.Options{
			StatusField:         cfg.VCF.StatusField,
			GermlineSomaticCode: cfg.VCF.GermlineSomaticCode,
			ThresholdPct:        cfg.VCF.PIIThresholdPct,
		}),
	}, nil
}

// For returns the classifier of kind.
func (c *Classifiers) For(kind privacy.FileKind) (Classifier, bool) {
	switch kind {
	case privacy.KindDICOM:
		return c.Imaging, true
	case privacy.KindVCF:
		return c.Variant, true
	default:
		return nil, false
	}
}

// Ordered lists the classifiers in scheduler order: variant, then imaging.
func (c *Classifiers) Ordered() []Classifier {
	return []Classifier{c.Variant, c.Imaging}
}
