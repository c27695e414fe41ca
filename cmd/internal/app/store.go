package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"authgate/cmd/identity"
)

// Store kinds selected by Config.DatabaseURL.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeSQLite   = "sqlite"
)

const sqliteMemoryTarget = ":memory:"

// storeHandle owns the credential store and whatever backs it.
type storeHandle struct {
	store identity.Store
	kind  string
	close func() error
}

func (h *storeHandle) persistent() bool { return h != nil && h.kind != storeMemory }

func (h *storeHandle) Close() error {
	if h == nil || h.close == nil {
		return nil
	}
	return h.close()
}

// parseStoreURL classifies a database URL.
// For SQLite the returned target is a file path or ":memory:".
func parseStoreURL(raw string) (kind, target string, err error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	switch {
	case raw == "":
		return storeMemory, "", nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return storePostgres, raw, nil
	case strings.HasPrefix(lower, "sqlite://"):
		target = raw[len("sqlite://"):]
	case strings.HasPrefix(lower, "file:"):
		target = raw[len("file:"):]
	default:
		return "", "", fmt.Errorf("unsupported database url scheme in %q", redactURL(raw))
	}

	if strings.Contains(target, "?") {
		return "", "", errors.New("sqlite database url must not carry query parameters")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", errors.New("sqlite database url has no path")
	}
	return storeSQLite, target, nil
}

// redactURL drops everything after the scheme so credentials never reach logs.
func redactURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[:i+3] + "…"
	}
	if len(raw) > 8 {
		return raw[:8] + "…"
	}
	return raw
}

func openStore(ctx context.Context, cfg Config, log *slog.Logger) (*storeHandle, error) {
	kind, target, err := parseStoreURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case storePostgres:
		if cfg.AutoMigrate {
			v, err := identity.MigratePostgres(target, identity.MigrateUp)
			if err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
			log.Info("db.migrated", "kind", kind, "version", v)
		}
		pool, err := NewDBPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		st, err := identity.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("db.enabled", "kind", kind)
		return &storeHandle{store: st, kind: kind, close: func() error { pool.Close(); return nil }}, nil

	case storeSQLite:
		db, err := openSQLite(target)
		if err != nil {
			return nil, err
		}
		if _, err := identity.MigrateSQLite(db, identity.MigrateUp); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		st, err := identity.NewSQLiteStore(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("db.enabled", "kind", kind, "path", target)
		return &storeHandle{store: st, kind: kind, close: db.Close}, nil

	default:
		log.Info("db.disabled.memory_store")
		return &storeHandle{store: identity.NewMemoryStore(), kind: storeMemory}, nil
	}
}

func openSQLite(target string) (*identity.SQLiteDB, error) {
	if target == sqliteMemoryTarget {
		return identity.OpenSQLiteMemory("authgate")
	}
	return identity.OpenSQLite(target)
}

// Migrate moves the schema of the database named by cfg in dir and returns
// the resulting version.
func Migrate(ctx context.Context, cfg Config, dir identity.Direction, log *slog.Logger) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	kind, target, err := parseStoreURL(cfg.DatabaseURL)
	if err != nil {
		return 0, err
	}

	var version uint
	switch kind {
	case storePostgres:
		if version, err = identity.MigratePostgres(target, dir); err != nil {
			return 0, err
		}
	case storeSQLite:
		db, err := openSQLite(target)
		if err != nil {
			return 0, err
		}
		if version, err = identity.MigrateSQLite(db, dir); err != nil {
			_ = db.Close()
			return 0, err
		}
		if err := db.Close(); err != nil {
			return 0, err
		}
	default:
		return 0, errors.New("migrate: no database url configured (in-memory store has no schema)")
	}

	log.Info("db.migrated", "kind", kind, "direction", dir.String(), "version", version)
	return version, nil
}
