package workflow

import (
	"context"
	"log/slog"
	"time"

	"phisweep/internal/config"
	"phisweep/internal/discovery"
	"phisweep/internal/logging"
	"phisweep/internal/store"
)

// Manager runs a full scheduler pass.
type Manager struct {
	cfg         *config.Config
	store       store.Store
	logger      *slog.Logger
	runner      *Runner
	scanner     discovery.Scanner
	classifiers []Classifier
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithScanner runs discovery before the batches.
func WithScanner(scanner discovery.Scanner) ManagerOption {
	return func(m *Manager) { m.scanner = scanner }
}

// WithClassifiers replaces the batch list. Batches run in the given order.
func WithClassifiers(classifiers ...Classifier) ManagerOption {
	return func(m *Manager) { m.classifiers = classifiers }
}

// NewManager constructs a manager. Without WithClassifiers the manager has
// nothing to run; callers normally pass BuildClassifiers(cfg).Ordered().
func NewManager(cfg *config.Config, st store.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		store:  st,
		logger: logger,
		runner: NewRunner(st, logger),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Report collects the outcome of one pass.
type Report struct {
	Discovered int
	Batches    []Summary
	Duration   time.Duration
}

// Run performs discovery when configured, then one batch per classifier. A
// batch-fatal error or cancellation stops the pass; batches already run are
// in the report.
func (m *Manager) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report
	if m.scanner != nil {
		added, err := discovery.Ingest(ctx, m.scanner, m.store, m.logger)
		report.Discovered = added
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}
	for _, classifier := range m.classifiers {
		summary, err := m.runner.Run(ctx, classifier, m.cfg.SearchPatterns(string(classifier.Kind())))
		report.Batches = append(report.Batches, summary)
		if err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

// RunBatch runs one batch for classifier with its configured patterns.
func (m *Manager) RunBatch(ctx context.Context, classifier Classifier) (Summary, error) {
	return m.runner.Run(ctx, classifier, m.cfg.SearchPatterns(string(classifier.Kind())))
}
