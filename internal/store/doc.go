// Package store defines the metadata store contract the classification
// workflow depends on.
//
// A record is created by discovery and never mutated afterwards. Each
// classification pass appends a new timestamped entry to the record, so the
// store keeps a full audit trail per file; a record is unprocessed while it
// has no entry. Backends live in sqlitestore, redisstore and pgstore and are
// selected by storeaccess.
package store
