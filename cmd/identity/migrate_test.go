package identity

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) { return nil, nil }

func TestMigrator_Up_IgnoresNoChange(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
	assert.NoError(t, m.Up())
}

func TestMigrator_Up_WrapsFailure(t *testing.T) {
	boom := errors.New("boom")
	m := &Migrator{m: &fakeMigrate{upErr: boom}}

	err := m.Up()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMigrator_Version_NilVersion(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}

	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)
}

func TestMigrator_Apply(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange, version: 1}}
	v, err := m.Apply(MigrateUp)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	m = &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, err = m.Apply(MigrateDown)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestMigrator_Apply_Failures(t *testing.T) {
	boom := errors.New("boom")

	_, err := (&Migrator{m: &fakeMigrate{downErr: boom}}).Apply(MigrateDown)
	assert.ErrorIs(t, err, boom)

	_, err = (&Migrator{m: &fakeMigrate{version: 1, dirty: true}}).Apply(MigrateUp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty")
}

func TestPgx5URL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/db", want: "pgx5://u:p@localhost:5432/db"},
		{in: "postgresql://u@h/db?sslmode=disable", want: "pgx5://u@h/db?sslmode=disable"},
		{in: "pgx5://u@h/db", want: "pgx5://u@h/db"},
	}
	for _, tc := range cases {
		if got := pgx5URL(tc.in); got != tc.want {
			t.Fatalf("pgx5URL(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/sqlite"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err, dir)
		assert.NotEmpty(t, entries, dir)
	}
}
