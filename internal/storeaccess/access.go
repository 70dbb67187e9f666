// Package storeaccess opens the configured metadata store backend and retries
// the initial connection with a Fibonacci backoff.
package storeaccess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"phisweep/internal/config"
	"phisweep/internal/logging"
	"phisweep/internal/services"
	"phisweep/internal/store"
	"phisweep/internal/store/pgstore"
	"phisweep/internal/store/redisstore"
	"phisweep/internal/store/sqlitestore"
)

// Dialer opens and pings one backend. Errors are retried.
type Dialer func(ctx context.Context) (store.Store, error)

// Open connects to the backend named by cfg.Store.Backend. Exhausted retries
// are reported as services.ErrConnectivity.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "storeaccess", "open", "config is required", nil)
	}
	dial, err := DialerFor(cfg)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, cfg.Store.Backend, dial, cfg.Store.ConnectRetries, time.Duration(cfg.Store.ConnectBackoffMS)*time.Millisecond, logger)
}

// DialerFor returns the dialer for the configured backend.
func DialerFor(cfg *config.Config) (Dialer, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite, "":
		return func(ctx context.Context) (store.Store, error) {
			st, err := sqlitestore.Open(cfg)
			if err != nil {
				return nil, err
			}
			return pinged(ctx, st)
		}, nil
	case config.BackendRedis:
		return func(ctx context.Context) (store.Store, error) {
			st, err := redisstore.Open(cfg.Store.RedisURL, cfg.Store.RedisPrefix)
			if err != nil {
				return nil, err
			}
			return pinged(ctx, st)
		}, nil
	case config.BackendPostgres:
		return func(ctx context.Context) (store.Store, error) {
			st, err := pgstore.Open(ctx, cfg.Store.PostgresDSN)
			if err != nil {
				return nil, err
			}
			if _, err := pinged(ctx, st); err != nil {
				return nil, err
			}
			if err := st.Migrate(ctx); err != nil {
				st.Close()
				return nil, err
			}
			return st, nil
		}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "storeaccess", "open", fmt.Sprintf("unknown backend %q", cfg.Store.Backend), nil)
	}
}

func pinged(ctx context.Context, st store.Store) (store.Store, error) {
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// Connect runs dial until it succeeds or retries are exhausted. retries is
// the number of attempts after the first one.
func Connect(ctx context.Context, backend string, dial Dialer, retries int, backoff time.Duration, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	logger = logging.NewComponentLogger(logger, "storeaccess")

	attempt := 0
	var st store.Store
	b := retry.WithMaxRetries(uint64(retries), retry.NewFibonacci(backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		opened, err := dial(ctx)
		if err != nil {
			logging.WarnWithContext(logger, "store connection attempt failed", "store_connect_failed",
				logging.String("backend", backend),
				logging.Int("attempt", attempt),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the store address and that the server is running"),
				logging.String(logging.FieldImpact, "connection will be retried"),
			)
			return retry.RetryableError(err)
		}
		st = opened
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConnectivity, "storeaccess", "connect",
			fmt.Sprintf("%s unreachable after %d attempt(s)", backend, attempt), err)
	}
	logger.Debug("store connected", logging.Args(logging.String("backend", backend), logging.Int("attempts", attempt))...)
	return st, nil
}
