// Package redisstore keeps the metadata store in Redis so several hosts can
// share one inventory.
//
// Layout under the configured prefix:
//
//	record:<id>          hash of discovery fields
//	record:<id>:entries  list of JSON classification entries
//	records              zset of every record id, scored by discovery order
//	unprocessed          zset of record ids without an entry
//	format:<kind>        set of record ids with an entry of that kind
//	seq:records, seq:entries  counters
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"phisweep/internal/fileutil"
	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store is the Redis metadata store.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// Open parses a redis:// URL and returns a store. The connection is not
// verified; call Ping.
func Open(url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(redis.NewClient(opts), prefix), nil
}

// New wraps an existing client.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) key(parts ...string) string {
	out := s.prefix
	for i, part := range parts {
		if i > 0 {
			out += ":"
		}
		out += part
	}
	return out
}

func (s *Store) recordKey(id string) string  { return s.key("record", id) }
func (s *Store) entriesKey(id string) string { return s.key("record", id, "entries") }

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// AddRecord stores a discovery hash under a fresh UUID.
func (s *Store) AddRecord(ctx context.Context, d store.Discovery) (string, error) {
	d, err := d.Prepare(s.now())
	if err != nil {
		return "", err
	}
	order, err := s.client.Incr(ctx, s.key("seq", "records")).Result()
	if err != nil {
		return "", fmt.Errorf("allocate record order: %w", err)
	}
	id := uuid.NewString()
	fields := map[string]any{
		"timestamp":         d.Timestamp.Format(time.RFC3339Nano),
		"file_name":         d.FileName,
		"filename_hash":     d.FilenameHash,
		"fileset_name":      d.FilesetName,
		"pool_name":         d.PoolName,
		"file_size":         d.FileSize,
		"kb_allocated":      d.KBAllocated,
		"user_id":           d.UserID,
		"group_id":          d.GroupID,
		"creation_days":     d.CreationDays,
		"modification_days": d.ModificationDays,
		"change_days":       d.ChangeDays,
		"access_days":       d.AccessDays,
		"state":             d.State,
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(id), fields)
		member := redis.Z{Score: float64(order), Member: id}
		pipe.ZAdd(ctx, s.key("records"), member)
		pipe.ZAdd(ctx, s.key("unprocessed"), member)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store record: %w", err)
	}
	return id, nil
}

// Unprocessed lists records still in the unprocessed index.
func (s *Store) Unprocessed(ctx context.Context, patterns []string) ([]store.Pending, error) {
	ids, err := s.client.ZRange(ctx, s.key("unprocessed"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read unprocessed index: %w", err)
	}
	names, err := s.fileNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	var pending []store.Pending
	for i, id := range ids {
		if names[i] == "" || !fileutil.MatchesAny(names[i], patterns) {
			continue
		}
		pending = append(pending, store.Pending{RecordID: id, FileName: names[i]})
	}
	return pending, nil
}

func (s *Store) fileNames(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.StringCmd, len(ids))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, s.recordKey(id), "file_name")
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read file names: %w", err)
	}
	names := make([]string, len(ids))
	for i, cmd := range cmds {
		names[i] = cmd.Val()
	}
	return names, nil
}

type entryJSON struct {
	Seq           int64            `json:"seq"`
	Format        privacy.FileKind `json:"file_format"`
	Timestamp     time.Time        `json:"privacy_timestamp"`
	Status        privacy.Status   `json:"privacy_rule_status"`
	PHITags       []string         `json:"privacy_dicom_phi_rule,omitempty"`
	UndefinedTags []string         `json:"privacy_dicom_unref_rule,omitempty"`
	Reason        string           `json:"privacy_rule_reason,omitempty"`
}

// Append pushes a JSON entry onto the record's entry list and removes it from
// the unprocessed index.
func (s *Store) Append(ctx context.Context, recordID string, c store.Classification) error {
	exists, err := s.client.Exists(ctx, s.recordKey(recordID)).Result()
	if err != nil {
		return fmt.Errorf("check record: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", store.ErrUnknownRecord, recordID)
	}
	seq, err := s.client.Incr(ctx, s.key("seq", "entries")).Result()
	if err != nil {
		return fmt.Errorf("allocate entry sequence: %w", err)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	payload, err := json.Marshal(entryJSON{
		Seq:           seq,
		Format:        c.Format,
		Timestamp:     c.Timestamp.UTC(),
		Status:        c.Status,
		PHITags:       c.PHITags,
		UndefinedTags: c.UndefinedTags,
		Reason:        c.Reason,
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.entriesKey(recordID), payload)
		pipe.ZRem(ctx, s.key("unprocessed"), recordID)
		pipe.SAdd(ctx, s.key("format", string(c.Format)), recordID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Entries collects entries of one kind, ordered by their global sequence.
func (s *Store) Entries(ctx context.Context, kind privacy.FileKind) ([]store.Entry, error) {
	var (
		ids []string
		err error
	)
	if kind == "" {
		ids, err = s.client.ZRange(ctx, s.key("records"), 0, -1).Result()
	} else {
		ids, err = s.client.SMembers(ctx, s.key("format", string(kind))).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("read record index: %w", err)
	}
	names, err := s.fileNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	var entries []store.Entry
	for i, id := range ids {
		raw, err := s.client.LRange(ctx, s.entriesKey(id), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("read entries of %s: %w", id, err)
		}
		for _, item := range raw {
			entry, err := decodeEntry(id, names[i], item)
			if err != nil {
				return nil, err
			}
			if kind != "" && entry.Format != kind {
				continue
			}
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b store.Entry) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return entries, nil
}

func decodeEntry(recordID, fileName, raw string) (store.Entry, error) {
	var decoded entryJSON
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return store.Entry{}, fmt.Errorf("decode entry of %s: %w", recordID, err)
	}
	return store.Entry{
		RecordID: recordID,
		FileName: fileName,
		Seq:      decoded.Seq,
		Classification: store.Classification{
			Format:        decoded.Format,
			Timestamp:     decoded.Timestamp,
			Status:        decoded.Status,
			PHITags:       decoded.PHITags,
			UndefinedTags: decoded.UndefinedTags,
			Reason:        decoded.Reason,
		},
	}, nil
}

