package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"

// SQLiteDB holds dual reader/writer connections.
// The writer is limited to one connection to avoid "database is locked" errors.
type SQLiteDB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// OpenSQLite opens a file-backed database in WAL mode.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if trimmed(path) == "" {
		return nil, errors.New("identity: empty sqlite path")
	}
	return openSQLiteDSN(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&%s", path, sqlitePragmas))
}

// OpenSQLiteMemory opens a named shared-cache in-memory database.
// Connections with the same name see the same data while at least one stays open.
func OpenSQLiteMemory(name string) (*SQLiteDB, error) {
	if trimmed(name) == "" {
		name = "authgate"
	}
	return openSQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(name), sqlitePragmas))
}

func openSQLiteDSN(dsn string) (*SQLiteDB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &SQLiteDB{Writer: writer, Reader: reader}, nil
}

// Close closes both connections. Returns the first error encountered.
func (db *SQLiteDB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}
	return firstErr
}

// SQLiteStore implements Store over an embedded SQLite database.
// The schema comes from migrations/sqlite; call MigrateSQLite first.
type SQLiteStore struct {
	db *SQLiteDB
}

// NewSQLiteStore constructs a SQLiteStore. The caller owns db.
func NewSQLiteStore(db *SQLiteDB) (*SQLiteStore, error) {
	if db == nil || db.Writer == nil || db.Reader == nil {
		return nil, errors.New("identity: nil sqlite db")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) FindByUsername(ctx context.Context, username string) (Credential, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return Credential{}, invalid(op, "username is required")
	}

	var (
		c                Credential
		created, updated string
	)
	err := s.db.Reader.QueryRowContext(ctx,
		`SELECT id, display_name, username, username_norm, password_hash, created_at, updated_at
		   FROM credentials
		  WHERE username_norm = ?`,
		norm,
	).Scan(&c.ID, &c.DisplayName, &c.Username, &c.UsernameNorm, &c.PasswordHash, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, NotFoundError{Op: op, Resource: "credential"}
		}
		return Credential{}, unavailable(op, err)
	}

	if c.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return Credential{}, unavailable(op, err)
	}
	if c.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return Credential{}, unavailable(op, err)
	}
	return c, nil
}

func (s *SQLiteStore) Create(ctx context.Context, in CreateCredentialInput) (Credential, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}
	c, err := prepareCreate(op, in)
	if err != nil {
		return Credential{}, err
	}

	ts := formatSQLiteTime(c.CreatedAt)
	_, err = s.db.Writer.ExecContext(ctx,
		`INSERT INTO credentials (id, display_name, username, username_norm, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DisplayName, c.Username, c.UsernameNorm, c.PasswordHash, ts, ts,
	)
	if err != nil {
		if sqliteIsUniqueViolation(err) {
			return Credential{}, ConflictError{Op: op, Field: "username"}
		}
		return Credential{}, unavailable(op, err)
	}
	return c, nil
}

func (s *SQLiteStore) UpdatePasswordHash(ctx context.Context, id string, newHash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	if trimmed(id) == "" {
		return invalid(op, "id is required")
	}
	if trimmed(newHash) == "" {
		return invalid(op, "password hash is required")
	}
	if now.IsZero() {
		now = time.Now()
	}

	res, err := s.db.Writer.ExecContext(ctx,
		`UPDATE credentials SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, formatSQLiteTime(now), id,
	)
	if err != nil {
		return unavailable(op, err)
	}
	return sqliteRequireRow(op, res)
}

func (s *SQLiteStore) DeleteByUsername(ctx context.Context, username string) error {
	const op = "identity.DeleteByUsername"

	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return invalid(op, "username is required")
	}

	res, err := s.db.Writer.ExecContext(ctx, `DELETE FROM credentials WHERE username_norm = ?`, norm)
	if err != nil {
		return unavailable(op, err)
	}
	return sqliteRequireRow(op, res)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.Reader.PingContext(ctx)
}

func sqliteRequireRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(op, err)
	}
	if n == 0 {
		return NotFoundError{Op: op, Resource: "credential"}
	}
	return nil
}

func sqliteIsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary result code only; extended codes disabled on this connection.
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	default:
		return false
	}
}

func formatSQLiteTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
