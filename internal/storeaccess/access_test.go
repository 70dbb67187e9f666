package storeaccess_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"phisweep/internal/config"
	"phisweep/internal/services"
	"phisweep/internal/store"
	"phisweep/internal/storeaccess"
	"phisweep/internal/testsupport"
)

func TestConnectRetriesUntilSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	want := testsupport.MustOpenStore(t, cfg)

	calls := 0
	dial := func(context.Context) (store.Store, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return want, nil
	}
	st, err := storeaccess.Connect(context.Background(), "sqlite", dial, 5, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if st != want || calls != 3 {
		t.Fatalf("expected success on third attempt, got calls=%d", calls)
	}
}

func TestConnectExhaustedIsConnectivityError(t *testing.T) {
	calls := 0
	dial := func(context.Context) (store.Store, error) {
		calls++
		return nil, errors.New("connection refused")
	}
	_, err := storeaccess.Connect(context.Background(), "redis", dial, 2, time.Millisecond, nil)
	if !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("connectivity error should be batch fatal")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := storeaccess.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Store.Backend = "mongo"
	_, err := storeaccess.Open(context.Background(), cfg, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOpenUnreachableRedis(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.RedisURL = "redis://127.0.0.1:1/0"
	cfg.Store.ConnectRetries = 1
	cfg.Store.ConnectBackoffMS = 1
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := storeaccess.Open(ctx, cfg, nil)
	if !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}
