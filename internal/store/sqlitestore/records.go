package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"phisweep/internal/fileutil"
	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

var _ store.Store = (*Store)(nil)

// AddRecord inserts a discovery row and returns its id.
func (s *Store) AddRecord(ctx context.Context, d store.Discovery) (string, error) {
	d, err := d.Prepare(s.now())
	if err != nil {
		return "", err
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO file_records (
		timestamp, file_name, filename_hash, fileset_name, pool_name, file_size, kb_allocated,
		user_id, group_id, creation_days, modification_days, change_days, access_days, state
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(d.Timestamp), d.FileName, d.FilenameHash,
		nullableString(d.FilesetName), nullableString(d.PoolName),
		d.FileSize, d.KBAllocated, d.UserID, d.GroupID,
		d.CreationDays, d.ModificationDays, d.ChangeDays, d.AccessDays, d.State,
	)
	if err != nil {
		return "", fmt.Errorf("insert file record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read record id: %w", err)
	}
	return formatRecordID(id), nil
}

// Unprocessed lists records with no classification entry.
func (s *Store) Unprocessed(ctx context.Context, patterns []string) ([]store.Pending, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT r.id, r.file_name
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
		if !fileutil.MatchesAny(name, patterns) {
			continue
		}
		pending = append(pending, store.Pending{RecordID: formatRecordID(id), FileName: name})
	}
	return pending, rows.Err()
}

// Append adds a classification entry to a record.
func (s *Store) Append(ctx context.Context, recordID string, c store.Classification) error {
	id, ok := parseRecordID(recordID)
	if !ok {
		return fmt.Errorf("%w: %q", store.ErrUnknownRecord, recordID)
	}
	var exists int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM file_records WHERE id = ?", id).Scan(&exists); err != nil {
		return fmt.Errorf("check record: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", store.ErrUnknownRecord, recordID)
	}

	phi, err := encodeTags(c.PHITags)
	if err != nil {
		return fmt.Errorf("encode phi tags: %w", err)
	}
	undefined, err := encodeTags(c.UndefinedTags)
	if err != nil {
		return fmt.Errorf("encode undefined tags: %w", err)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	_, err = s.execWithRetry(ctx, `INSERT INTO classifications (
		record_id, file_format, privacy_timestamp, privacy_rule_status, phi_tags, undefined_tags, reason
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(c.Format), formatTime(c.Timestamp), c.Status.String(), phi, undefined, nullableString(c.Reason),
	)
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

// Entries returns classification entries in append order.
func (s *Store) Entries(ctx context.Context, kind privacy.FileKind) ([]store.Entry, error) {
	query := `SELECT c.seq, c.record_id, r.file_name, c.file_format, c.privacy_timestamp,
		c.privacy_rule_status, c.phi_tags, c.undefined_tags, c.reason
		FROM classifications c JOIN file_records r ON r.id = c.record_id`
	var args []any
	if kind != "" {
		query += " WHERE c.file_format = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY c.seq"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (store.Entry, error) {
	var (
		seq       int64
		recordID  int64
		fileName  string
		format    string
		stampRaw  string
		statusRaw string
		phiRaw    sql.NullString
		undefRaw  sql.NullString
		reason    sql.NullString
	)
	if err := scanner.Scan(&seq, &recordID, &fileName, &format, &stampRaw, &statusRaw, &phiRaw, &undefRaw, &reason); err != nil {
		return store.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	status, ok := privacy.ParseStatus(statusRaw)
	if !ok {
		return store.Entry{}, fmt.Errorf("entry %d: unknown status %q", seq, statusRaw)
	}
	phi, err := decodeTags(phiRaw)
	if err != nil {
		return store.Entry{}, fmt.Errorf("entry %d: decode phi tags: %w", seq, err)
	}
	undefined, err := decodeTags(undefRaw)
	if err != nil {
		return store.Entry{}, fmt.Errorf("entry %d: decode undefined tags: %w", seq, err)
	}
	entry := store.Entry{
		RecordID: formatRecordID(recordID),
		FileName: fileName,
		Seq:      seq,
		Classification: store.Classification{
			Format:        privacy.FileKind(format),
			Status:        status,
			PHITags:       phi,
			UndefinedTags: undefined,
			Reason:        reason.String,
		},
	}
	if stamp, err := parseTimeString(stampRaw); err == nil {
		entry.Timestamp = stamp
	}
	return entry, nil
}
