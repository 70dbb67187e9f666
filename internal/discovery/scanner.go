package discovery

import (
	"context"
	"log/slog"
	"time"

	"phisweep/internal/config"
	"phisweep/internal/logging"
	"phisweep/internal/store"
)

// Emit receives one discovered file. Returning an error stops the scan.
type Emit func(store.Discovery) error

// Scanner produces discovery records.
type Scanner interface {
	Scan(ctx context.Context, emit Emit) error
}

// ForConfig returns the scanner selected by scan.use_gpfs. days overrides
// scan.job_delta_days when non-negative.
func ForConfig(cfg *config.Config, days int, logger *slog.Logger) Scanner {
	if days < 0 {
		days = cfg.Scan.JobDeltaDays
	}
	if cfg.Scan.UseGPFS {
		return NewGPFSScanner(cfg.GPFS, days, logger)
	}
	return NewWalkScanner(cfg.Scan.Directories, cfg.AllSearchPatterns(), days, logger)
}

// Ingest runs scanner and adds each emitted record to st. The first add
// failure aborts the scan.
func Ingest(ctx context.Context, scanner Scanner, st store.Store, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "discovery")
	start := time.Now()
	added := 0
	err := scanner.Scan(ctx, func(d store.Discovery) error {
		if _, err := st.AddRecord(ctx, d); err != nil {
			return err
		}
		added++
		logger.Debug("file registered", logging.Args(logging.String(logging.FieldFileName, d.FileName))...)
		return nil
	})
	logger.Info("discovery finished",
		logging.Args(
			logging.String(logging.FieldEventType, "discovery_complete"),
			logging.Int("added", added),
			logging.Duration("duration", time.Since(start)),
		)...,
	)
	return added, err
}

// epochDay is DAYS('1970-01-01') in the GPFS policy language, which counts
// days from 0001-01-01 starting at 1.
const epochDay = 719163

// Days converts t to the GPFS DAYS() numbering so walk and policy scans store
// comparable values.
func Days(t time.Time) int {
	return int(t.Unix()/86400) + epochDay
}
