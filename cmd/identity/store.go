package identity

import (
	"context"
	"time"
)

// Credential is the single persisted record per user.
// PasswordHash is the encoded output of the password hasher, never plaintext.
type Credential struct {
	ID           string
	DisplayName  string
	Username     string
	UsernameNorm string
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCredentialInput describes a registration request that already carries a hash.
type CreateCredentialInput struct {
	DisplayName  string
	Username     string
	PasswordHash string
	Now          time.Time
}

// Store is the credential persistence boundary.
//
// Contract:
//   - Username lookups use NormalizeUsername.
//   - Create is atomic with respect to concurrent creates of the same username and
//     returns ConflictError{Field: "username"} for the loser.
//   - Missing rows are reported as NotFoundError.
//   - Infrastructure failures are reported as OpError{Kind: ErrUnavailable}.
type Store interface {
	FindByUsername(ctx context.Context, username string) (Credential, error)
	Create(ctx context.Context, in CreateCredentialInput) (Credential, error)
	UpdatePasswordHash(ctx context.Context, id string, newHash string, now time.Time) error
	DeleteByUsername(ctx context.Context, username string) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}

// prepareCreate validates and normalizes input shared by all Store implementations.
func prepareCreate(op string, in CreateCredentialInput) (Credential, error) {
	username := trimmed(in.Username)
	if username == "" {
		return Credential{}, invalid(op, "username is required")
	}
	if trimmed(in.PasswordHash) == "" {
		return Credential{}, invalid(op, "password hash is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	id, err := NewULID(now)
	if err != nil {
		return Credential{}, OpError{Op: op, Kind: ErrUnavailable, Msg: "id generation", Err: err}
	}

	return Credential{
		ID:           id,
		DisplayName:  CleanDisplayName(in.DisplayName),
		Username:     username,
		UsernameNorm: NormalizeUsername(username),
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
