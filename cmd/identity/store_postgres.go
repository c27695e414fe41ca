package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool used by PostgresStore.
// pgxmock pools satisfy it as well.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store over PostgreSQL.
//
// The pool is owned by the caller; this store never closes it.
// Uniqueness is enforced by uq_credentials_username_norm (see migrations/postgres).
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool PgxPool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const pgSelectCredential = `SELECT id, display_name, username, username_norm, password_hash, created_at, updated_at
	   FROM credentials
	  WHERE username_norm = $1`

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (Credential, error) {
	const op = "identity.FindByUsername"

	if s == nil || s.pool == nil {
		return Credential{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return Credential{}, invalid(op, "username is required")
	}

	var c Credential
	err := s.pool.QueryRow(ctx, pgSelectCredential, norm).Scan(
		&c.ID,
		&c.DisplayName,
		&c.Username,
		&c.UsernameNorm,
		&c.PasswordHash,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, NotFoundError{Op: op, Resource: "credential"}
		}
		return Credential{}, unavailable(op, err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, in CreateCredentialInput) (Credential, error) {
	const op = "identity.Create"

	if s == nil || s.pool == nil {
		return Credential{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}

	c, err := prepareCreate(op, in)
	if err != nil {
		return Credential{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO credentials (
		     id, display_name, username, username_norm, password_hash, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		c.ID,
		c.DisplayName,
		c.Username,
		c.UsernameNorm,
		c.PasswordHash,
		c.CreatedAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Credential{}, ConflictError{Op: op, Field: field}
		}
		return Credential{}, unavailable(op, err)
	}

	return c, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id string, newHash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	tag, err := s.pool.Exec(ctx,
		`UPDATE credentials
		    SET password_hash = $1, updated_at = $2
		  WHERE id = $3`,
		newHash, now.UTC(), id,
	)
	if err != nil {
		return unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "credential"}
	}
	return nil
}

func (s *PostgresStore) DeleteByUsername(ctx context.Context, username string) error {
	const op = "identity.DeleteByUsername"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return invalid(op, "username is required")
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE username_norm = $1`, norm)
	if err != nil {
		return unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "credential"}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("identity: nil pool")
	}
	return s.pool.Ping(ctx)
}

// ---- helpers ----

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to heuristic substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_credentials_username_norm":
		return "username", true
	case "credentials_pkey":
		return "id", true
	default:
		if strings.Contains(c, "username") {
			return "username", true
		}
		return "unique", true
	}
}
