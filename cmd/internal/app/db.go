package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const (
	dbConnectTimeout = 3 * time.Second
	dbAppName        = "authgate"
)

// poolConfig maps Config onto a pgxpool configuration.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns >= 0 && cfg.DBMinConns <= pcfg.MaxConns {
		pcfg.MinConns = cfg.DBMinConns
	}
	if _, set := pcfg.ConnConfig.RuntimeParams["application_name"]; !set {
		pcfg.ConnConfig.RuntimeParams["application_name"] = dbAppName
	}
	return pcfg, nil
}

// NewDBPool opens a Postgres pool and waits for the database to answer a
// ping, retrying with exponential backoff up to cfg.DBConnectAttempts times.
// Migrations are applied separately.
func NewDBPool(ctx context.Context, cfg Config, log *slog.Logger) (*pgxpool.Pool, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	attempt := 0
	err = retry.Do(ctx, connectBackoff(cfg.DBConnectAttempts), func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			log.Warn("db.connect.retry", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", attempt, err)
	}
	return pool, nil
}

func connectBackoff(attempts int) retry.Backoff {
	if attempts < 1 {
		attempts = 1
	}
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	return retry.WithMaxRetries(uint64(attempts-1), b) // #nosec G115 -- attempts >= 1
}
