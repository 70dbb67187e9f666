// Package pgstore keeps the metadata store in PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"phisweep/internal/fileutil"
	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Store = (*Store)(nil)

// Store is the PostgreSQL metadata store.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open creates a pool for dsn. The pool connects lazily; call Ping, then
// Migrate.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &Store{pool: pool, now: time.Now}, nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// AddRecord inserts a discovery row.
func (s *Store) AddRecord(ctx context.Context, d store.Discovery) (string, error) {
	d, err := d.Prepare(s.now())
	if err != nil {
		return "", err
	}
	var id int64
	err = s.pool.QueryRow(ctx, `INSERT INTO file_records (
		timestamp, file_name, filename_hash, fileset_name, pool_name, file_size, kb_allocated,
		user_id, group_id, creation_days, modification_days, change_days, access_days, state
	) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id`,
		d.Timestamp, d.FileName, d.FilenameHash, d.FilesetName, d.PoolName,
		d.FileSize, d.KBAllocated, d.UserID, d.GroupID,
		d.CreationDays, d.ModificationDays, d.ChangeDays, d.AccessDays, d.State,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert file record: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// Unprocessed lists records with no classification entry.
func (s *Store) Unprocessed(ctx context.Context, patterns []string) ([]store.Pending, error) {
	rows, err := s.pool.Query(ctx, `SELECT r.id, r.file_name
		FROM file_records r
		WHERE NOT EXISTS (SELECT 1 FROM classifications c WHERE c.record_id = r.id)
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed records: %w", err)
	}
	defer rows.Close()

	var pending []store.Pending
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan unprocessed record: %w", err)
		}
		if fileutil.MatchesAny(name, patterns) {
			pending = append(pending, store.Pending{RecordID: strconv.FormatInt(id, 10), FileName: name})
		}
	}
	return pending, rows.Err()
}

// Append inserts a classification entry.
func (s *Store) Append(ctx context.Context, recordID string, c store.Classification) error {
	id, err := strconv.ParseInt(recordID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: %q", store.ErrUnknownRecord, recordID)
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM file_records WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("check record: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", store.ErrUnknownRecord, recordID)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO classifications (
		record_id, file_format, privacy_timestamp, privacy_rule_status, phi_tags, undefined_tags, reason
	) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		id, string(c.Format), c.Timestamp.UTC(), c.Status.String(), c.PHITags, c.UndefinedTags, c.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

// Entries returns classification entries in append order.
func (s *Store) Entries(ctx context.Context, kind privacy.FileKind) ([]store.Entry, error) {
	query := `SELECT c.seq, c.record_id, r.file_name, c.file_format, c.privacy_timestamp,
		c.privacy_rule_status, c.phi_tags, c.undefined_tags, COALESCE(c.reason, '')
		FROM classifications c JOIN file_records r ON r.id = c.record_id`
	var args []any
	if kind != "" {
		query += " WHERE c.file_format = $1"
		args = append(args, string(kind))
	}
	query += " ORDER BY c.seq"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("collect entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (store.Entry, error) {
	var (
		entry     store.Entry
		recordID  int64
		format    string
		statusRaw string
	)
	err := row.Scan(&entry.Seq, &recordID, &entry.FileName, &format, &entry.Timestamp,
		&statusRaw, &entry.PHITags, &entry.UndefinedTags, &entry.Reason)
	if err != nil {
		return store.Entry{}, err
	}
	status, ok := privacy.ParseStatus(statusRaw)
	if !ok {
		return store.Entry{}, errors.New("unknown status " + strconv.Quote(statusRaw))
	}
	entry.RecordID = strconv.FormatInt(recordID, 10)
	entry.Format = privacy.FileKind(format)
	entry.Status = status
	entry.Timestamp = entry.Timestamp.UTC()
	return entry, nil
}
