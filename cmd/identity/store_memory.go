package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps credentials in process memory.
// It is meant for development and tests; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	byNorm map[string]Credential
	byID   map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byNorm: make(map[string]Credential),
		byID:   make(map[string]string),
	}
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (Credential, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return Credential{}, invalid(op, "username is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byNorm[norm]
	if !ok {
		return Credential{}, NotFoundError{Op: op, Resource: "credential"}
	}
	return c, nil
}

func (s *MemoryStore) Create(ctx context.Context, in CreateCredentialInput) (Credential, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Credential{}, unavailable(op, err)
	}
	c, err := prepareCreate(op, in)
	if err != nil {
		return Credential{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNorm[c.UsernameNorm]; exists {
		return Credential{}, ConflictError{Op: op, Field: "username"}
	}
	s.byNorm[c.UsernameNorm] = c
	s.byID[c.ID] = c.UsernameNorm
	return c, nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id string, newHash string, now time.Time) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	norm, ok := s.byID[id]
	if !ok {
		return NotFoundError{Op: op, Resource: "credential"}
	}
	c := s.byNorm[norm]
	c.PasswordHash = newHash
	c.UpdatedAt = now.UTC()
	s.byNorm[norm] = c
	return nil
}

func (s *MemoryStore) DeleteByUsername(ctx context.Context, username string) error {
	const op = "identity.DeleteByUsername"

	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return invalid(op, "username is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byNorm[norm]
	if !ok {
		return NotFoundError{Op: op, Resource: "credential"}
	}
	delete(s.byNorm, norm)
	delete(s.byID, c.ID)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// Len returns the number of stored credentials.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byNorm)
}
