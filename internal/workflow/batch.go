package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"phisweep/internal/logging"
	"phisweep/internal/privacy"
	"phisweep/internal/services"
	"phisweep/internal/store"
)

// Classifier is what a batch needs from a format classifier.
type Classifier interface {
	Kind() privacy.FileKind
	ClassifyFile(ctx context.Context, path string) (privacy.Result, error)
}

// Summary counts the outcome of one batch.
type Summary struct {
	BatchID         string
	Kind            privacy.FileKind
	Fetched         int
	Classified      int
	NotFound        int
	Duplicates      int
	Indeterminate   int
	PersistFailures int
	// Statuses tallies every persisted status.
	Statuses  map[privacy.Status]int
	Cancelled bool
	Duration  time.Duration
}

// Remaining is the number of fetched records left without a new entry.
func (s Summary) Remaining() int {
	done := s.Classified + s.NotFound + s.Duplicates + s.Indeterminate
	return s.Fetched - done
}

// Runner executes batches. It holds no per-batch state and may be reused.
type Runner struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner constructs a batch runner.
func NewRunner(st store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{store: st, logger: logger, now: time.Now}
}

// Run processes every unprocessed record whose name matches patterns. The
// returned error is non-nil only for batch-fatal conditions and
// cancellation; the summary is valid in both cases.
func (r *Runner) Run(ctx context.Context, classifier Classifier, patterns []string) (Summary, error) {
	kind := classifier.Kind()
	summary := Summary{
		BatchID:  uuid.NewString(),
		Kind:     kind,
		Statuses: make(map[privacy.Status]int),
	}
	start := time.Now()

	ctx = services.WithBatchID(ctx, summary.BatchID)
	ctx = services.WithFileKind(ctx, kind)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "batch"))
	finish := func() {
		summary.Duration = time.Since(start)
		r.logSummary(logger, summary)
	}

	pending, err := r.store.Unprocessed(ctx, patterns)
	if err != nil {
		err = services.Wrap(services.ErrConnectivity, "workflow", "fetch unprocessed", string(kind), err)
		logging.ErrorWithContext(logger, "cannot fetch unprocessed records", "batch_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the metadata store is reachable"),
		)
		return summary, err
	}
	summary.Fetched = len(pending)
	logger.Info("batch started",
		logging.Args(
			logging.String(logging.FieldEventType, "batch_start"),
			logging.Int("records", len(pending)),
		)...,
	)

	seen := make(map[string]struct{}, len(pending))
	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			finish()
			return summary, err
		}
		stop, err := r.processRecord(ctx, classifier, item, seen, &summary)
		if stop {
			summary.Cancelled = errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			finish()
			return summary, err
		}
	}
	finish()
	return summary, nil
}

// processRecord handles one record. stop is true when the batch must end.
func (r *Runner) processRecord(ctx context.Context, classifier Classifier, item store.Pending, seen map[string]struct{}, summary *Summary) (bool, error) {
	path := strings.TrimSpace(item.FileName)
	ctx = services.WithRecordID(ctx, item.RecordID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "batch")).With(
		logging.String(logging.FieldFileName, path),
	)

	var (
		result   privacy.Result
		classErr error
	)
	if _, dup := seen[path]; dup {
		result = privacy.Result{Kind: classifier.Kind(), Status: privacy.StatusDuplicate}
	} else {
		result, classErr = classifier.ClassifyFile(ctx, path)
		if classErr != nil && ctx.Err() != nil &&
			(errors.Is(classErr, context.Canceled) || errors.Is(classErr, context.DeadlineExceeded)) {
			return true, ctx.Err()
		}
		if services.IsFatal(classErr) {
			return true, classErr
		}
		if result.Status == privacy.StatusUnprocessed {
			result.Status = services.StatusFor(classErr)
		}
	}

	entry := store.Classification{
		Format:        classifier.Kind(),
		Timestamp:     r.now().UTC(),
		Status:        result.Status,
		PHITags:       result.PHITags,
		UndefinedTags: result.UndefinedTags,
		Reason:        result.Reason,
	}
	if entry.Reason == "" && classErr != nil {
		entry.Reason = classErr.Error()
	}
	if err := r.store.Append(ctx, item.RecordID, entry); err != nil {
		summary.PersistFailures++
		logging.ErrorWithContext(logger, "cannot record classification", "persist_failed",
			logging.String(logging.FieldStatus, result.Status.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the record stays unprocessed and is retried next run"),
		)
		return false, nil
	}
	seen[path] = struct{}{}
	summary.Statuses[result.Status]++

	switch result.Status {
	case privacy.StatusDuplicate:
		summary.Duplicates++
		logger.Info("duplicate path in batch",
			logging.Args(logging.String(logging.FieldStatus, result.Status.String()))...)
	case privacy.StatusFileNotFound:
		summary.NotFound++
		logging.WarnWithContext(logger, "file could not be read", "file_not_found",
			logging.String(logging.FieldStatus, result.Status.String()),
			logging.String(logging.FieldErrorKind, services.Kind(classErr)),
			logging.Error(classErr),
			logging.String(logging.FieldErrorHint, "check the path still exists and is readable"),
			logging.String(logging.FieldImpact, "recorded as file_not_found"),
		)
	case privacy.StatusIndeterminate:
		summary.Indeterminate++
		logging.WarnWithContext(logger, "file could not be classified", "classification_indeterminate",
			logging.String(logging.FieldStatus, result.Status.String()),
			logging.String(logging.FieldErrorKind, services.Kind(classErr)),
			logging.Error(classErr),
			logging.String(logging.FieldErrorHint, "inspect the file with phisweep inspect"),
			logging.String(logging.FieldImpact, "recorded as indeterminate"),
		)
	default:
		summary.Classified++
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "file_classified"),
			logging.String(logging.FieldStatus, result.Status.String()),
		}
		if len(result.PHITags) > 0 {
			attrs = append(attrs, logging.Int("phi_tags", len(result.PHITags)))
		}
		if result.Reason != "" {
			attrs = append(attrs, logging.String("reason", result.Reason))
		}
		logger.Info("file classified", logging.Args(attrs...)...)
	}
	return false, nil
}

func (r *Runner) logSummary(logger *slog.Logger, s Summary) {
	logger.Info("batch finished",
		logging.Args(
			logging.String(logging.FieldEventType, "batch_complete"),
			logging.Int("fetched", s.Fetched),
			logging.Int("classified", s.Classified),
			logging.Int("not_found", s.NotFound),
			logging.Int("duplicates", s.Duplicates),
			logging.Int("indeterminate", s.Indeterminate),
			logging.Int("persist_failures", s.PersistFailures),
			logging.Bool("cancelled", s.Cancelled),
			logging.Duration("duration", s.Duration),
		)...,
	)
}

// String renders a one-line summary for the CLI.
func (s Summary) String() string {
	return fmt.Sprintf("%s batch %s: %d fetched, %d classified, %d not found, %d duplicate, %d indeterminate, %d persist failures",
		s.Kind, s.BatchID, s.Fetched, s.Classified, s.NotFound, s.Duplicates, s.Indeterminate, s.PersistFailures)
}
