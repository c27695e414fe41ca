// Package identity implements the credential store behind authgate.
//
// It owns the Credential record, the Store persistence boundary and its
// Postgres, SQLite and in-memory implementations, plus the embedded schema
// migrations for the SQL backends.
//
// Password hashing is not done here; callers pass an already encoded hash.
// Username uniqueness is enforced by each Store implementation.
package identity
