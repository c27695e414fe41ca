package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialColumns = []string{
	"id", "display_name", "username", "username_norm", "password_hash", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s, err := NewPostgresStore(mock)
	require.NoError(t, err)
	return s, mock
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_FindByUsername(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("FROM credentials").
		WithArgs("Ana1").
		WillReturnRows(pgxmock.NewRows(credentialColumns).
			AddRow("01HZX3J6Q5N8W2B7C4D9E0F1G2", "Ana", "Ana1", "Ana1", "$2a$10$abc", created, created))

	c, err := s.FindByUsername(ctx, "  Ana1 ")
	require.NoError(t, err)
	assert.Equal(t, "01HZX3J6Q5N8W2B7C4D9E0F1G2", c.ID)
	assert.Equal(t, "Ana", c.DisplayName)
	assert.Equal(t, "Ana1", c.Username)
	assert.Equal(t, "$2a$10$abc", c.PasswordHash)
	assert.Equal(t, created, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByUsername_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM credentials").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(credentialColumns))

	_, err := s.FindByUsername(context.Background(), "ghost")
	assert.True(t, IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByUsername_DriverError(t *testing.T) {
	s, mock := newMockStore(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM credentials").
		WithArgs("ana1").
		WillReturnError(boom)

	_, err := s.FindByUsername(context.Background(), "ana1")
	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, boom)
}

func TestPostgresStore_FindByUsername_EmptyUsername(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.FindByUsername(context.Background(), "   ")
	assert.True(t, IsInvalidInput(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(pgxmock.AnyArg(), "Ana", "ana1", "ana1", "$2a$10$abc", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c, err := s.Create(context.Background(), CreateCredentialInput{
		DisplayName:  "Ana",
		Username:     "ana1",
		PasswordHash: "$2a$10$abc",
		Now:          now,
	})
	require.NoError(t, err)
	assert.Len(t, c.ID, 26)
	assert.Equal(t, now, c.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_UniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(pgxmock.AnyArg(), "", "ana1", "ana1", "h", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "uq_credentials_username_norm",
		})

	_, err := s.Create(context.Background(), CreateCredentialInput{Username: "ana1", PasswordHash: "h"})
	require.Error(t, err)

	var ce ConflictError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "username", ce.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdatePasswordHash(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec("UPDATE credentials").
		WithArgs("new-hash", now, "01HZX3J6Q5N8W2B7C4D9E0F1G2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE credentials").
		WithArgs("new-hash", now, "01HZX3J6Q5N8W2B7C4D9E0F1G3").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, s.UpdatePasswordHash(context.Background(), "01HZX3J6Q5N8W2B7C4D9E0F1G2", "new-hash", now))

	err := s.UpdatePasswordHash(context.Background(), "01HZX3J6Q5N8W2B7C4D9E0F1G3", "new-hash", now)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteByUsername(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM credentials").
		WithArgs("ana1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM credentials").
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.DeleteByUsername(context.Background(), " ana1 "))

	err := s.DeleteByUsername(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgClassifyUniqueViolation(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantField string
		wantOK    bool
	}{
		{name: "username constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "uq_credentials_username_norm"}, wantField: "username", wantOK: true},
		{name: "primary key", err: &pgconn.PgError{Code: "23505", ConstraintName: "credentials_pkey"}, wantField: "id", wantOK: true},
		{name: "unknown unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}, wantField: "unique", wantOK: true},
		{name: "fk violation", err: &pgconn.PgError{Code: "23503"}, wantOK: false},
		{name: "plain error", err: errors.New("nope"), wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			field, ok := pgClassifyUniqueViolation(tc.err)
			if ok != tc.wantOK || field != tc.wantField {
				t.Fatalf("pgClassifyUniqueViolation()=(%q,%v) want (%q,%v)", field, ok, tc.wantField, tc.wantOK)
			}
		})
	}
}
