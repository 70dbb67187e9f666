package testsupport

import (
	"context"
	"testing"

	"phisweep/internal/config"
	"phisweep/internal/store"
	"phisweep/internal/store/sqlitestore"
)

// MustOpenStore opens a SQLite store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlitestore.Store {
	t.Helper()

	st, err := sqlitestore.Open(cfg)
	if err != nil {
		t.Fatalf("sqlitestore.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// AddFile records a discovery row for path and returns its id.
func AddFile(t testing.TB, st store.Store, path string) string {
	t.Helper()

	id, err := st.AddRecord(context.Background(), store.Discovery{FileName: path})
	if err != nil {
		t.Fatalf("AddRecord(%s): %v", path, err)
	}
	return id
}
