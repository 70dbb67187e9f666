package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"phisweep/internal/fileutil"
	"phisweep/internal/privacy"
)

// ErrUnknownRecord is returned by Append when the record id does not exist.
var ErrUnknownRecord = errors.New("unknown record")

// Discovery is the fixed field set discovery writes for each file.
type Discovery struct {
	Timestamp        time.Time
	FileName         string
	FilenameHash     string
	FilesetName      string
	PoolName         string
	FileSize         int64
	KBAllocated      int64
	UserID           int
	GroupID          int
	CreationDays     int
	ModificationDays int
	ChangeDays       int
	AccessDays       int
	// State is the storage tier: R resident, P premigrated, M migrated.
	State string
}

// Prepare trims the file name and fills the hash and timestamp defaults.
func (d Discovery) Prepare(now time.Time) (Discovery, error) {
	d.FileName = strings.TrimSpace(d.FileName)
	if d.FileName == "" {
		return d, errors.New("discovery record requires a file name")
	}
	if d.FilenameHash == "" {
		d.FilenameHash = fileutil.FilenameHash(d.FileName)
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = now
	}
	d.Timestamp = d.Timestamp.UTC()
	if d.State == "" {
		d.State = "R"
	}
	return d, nil
}

// Pending is an unprocessed record handed to the workflow.
type Pending struct {
	RecordID string
	FileName string
}

// Classification is one appended verdict.
type Classification struct {
	Format        privacy.FileKind
	Timestamp     time.Time
	Status        privacy.Status
	PHITags       []string
	UndefinedTags []string
	Reason        string
}

// Entry is a persisted classification joined with its record. Seq orders
// entries in append order within a backend.
type Entry struct {
	RecordID string
	FileName string
	Seq      int64
	Classification
}

// Store is implemented by every metadata backend.
type Store interface {
	Ping(ctx context.Context) error
	AddRecord(ctx context.Context, d Discovery) (string, error)
	// Unprocessed returns records without any entry whose base name matches
	// one of the glob patterns, in discovery order.
	Unprocessed(ctx context.Context, patterns []string) ([]Pending, error)
	Append(ctx context.Context, recordID string, c Classification) error
	// Entries returns every entry of the given format; an empty kind
	// returns all entries.
	Entries(ctx context.Context, kind privacy.FileKind) ([]Entry, error)
	Close() error
}
