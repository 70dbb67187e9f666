package discovery

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"phisweep/internal/fileutil"
	"phisweep/internal/logging"
)

// WalkScanner walks directory trees on any file system.
type WalkScanner struct {
	roots    []string
	patterns []string
	days     int
	logger   *slog.Logger
	now      func() time.Time
}

// NewWalkScanner builds a scanner over roots. When days > 0 files last
// modified more than days ago are skipped.
func NewWalkScanner(roots, patterns []string, days int, logger *slog.Logger) *WalkScanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WalkScanner{
		roots:    roots,
		patterns: patterns,
		days:     days,
		logger:   logging.NewComponentLogger(logger, "walk"),
		now:      time.Now,
	}
}

// Scan walks each root in order. Missing roots and unreadable
// subdirectories are logged and skipped.
func (w *WalkScanner) Scan(ctx context.Context, emit Emit) error {
	today := Days(w.now())
	for _, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			logging.WarnWithContext(w.logger, "scan directory unavailable", "scan_dir_missing",
				logging.String("directory", root),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check scan.directories"),
				logging.String(logging.FieldImpact, "directory skipped"),
			)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				w.logger.Warn("walk error", logging.Args(logging.String("path", path), logging.Error(err))...)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !fileutil.MatchesAny(path, w.patterns) {
				return nil
			}
			rec, err := statDiscovery(path)
			if err != nil {
				w.logger.Warn("stat failed", logging.Args(logging.String("path", path), logging.Error(err))...)
				return nil
			}
			if w.days > 0 && today-rec.ModificationDays > w.days {
				return nil
			}
			return emit(rec)
		})
		if err != nil && !errors.Is(err, filepath.SkipAll) {
			return err
		}
	}
	return nil
}
