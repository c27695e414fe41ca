package identity

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// migrateIface abstracts golang-migrate so Migrator can be tested without a database.
type migrateIface interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// Migrator applies the embedded credential schema.
type Migrator struct {
	m migrateIface
}

// NewPostgresMigrator creates a Migrator for a PostgreSQL connection string.
// postgres:// and postgresql:// are rewritten to the pgx5:// scheme golang-migrate expects.
func NewPostgresMigrator(databaseURL string) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").With("backend", "postgres").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, pgx5URL(databaseURL))
	if err != nil {
		_ = source.Close()
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("backend", "postgres").Wrap(err)
	}
	return &Migrator{m: m}, nil
}

// NewSQLiteMigrator creates a Migrator bound to the writer connection of db.
func NewSQLiteMigrator(db *SQLiteDB) (*Migrator, error) {
	if db == nil || db.Writer == nil {
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("backend", "sqlite").Errorf("nil sqlite db")
	}

	source, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").With("backend", "sqlite").Wrap(err)
	}

	driver, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{})
	if err != nil {
		_ = source.Close()
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("backend", "sqlite").Wrap(err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		_ = source.Close()
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("backend", "sqlite").Wrap(err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. Already applied migrations are skipped.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}

// Down rolls back every migration. This drops all credentials.
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_DOWN_FAILED").Wrap(err)
	}
	return nil
}

// Version returns the current migration version and dirty state.
// Returns version 0 with dirty=false if nothing has been applied.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	return version, dirty, nil
}

// Close releases the source and the database driver.
// A SQLite migrator's driver closes the writer connection it was built on.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").With("part", "source").Wrap(srcErr)
	}
	if dbErr != nil {
		return oops.Code("MIGRATION_CLOSE_FAILED").With("part", "database").Wrap(dbErr)
	}
	return nil
}

// Direction selects which way Apply moves the schema.
type Direction int

const (
	// MigrateUp applies every pending migration.
	MigrateUp Direction = iota
	// MigrateDown rolls every migration back, dropping all credentials.
	MigrateDown
)

func (d Direction) String() string {
	if d == MigrateDown {
		return "down"
	}
	return "up"
}

// Apply runs dir and returns the resulting schema version. A dirty schema
// after the run is an error.
func (m *Migrator) Apply(dir Direction) (uint, error) {
	step := m.Up
	if dir == MigrateDown {
		step = m.Down
	}
	if err := step(); err != nil {
		return 0, err
	}

	v, dirty, err := m.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, oops.Code("MIGRATION_DIRTY").With("version", v).Errorf("schema is dirty at version %d", v)
	}
	return v, nil
}

// MigratePostgres runs dir against databaseURL and closes the migrator.
func MigratePostgres(databaseURL string, dir Direction) (uint, error) {
	m, err := NewPostgresMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	v, runErr := m.Apply(dir)
	closeErr := m.Close()
	if runErr != nil {
		return 0, runErr
	}
	return v, closeErr
}

// MigrateSQLite runs dir on db. The migrator is left open because closing
// it would close db.Writer.
func MigrateSQLite(db *SQLiteDB, dir Direction) (uint, error) {
	m, err := NewSQLiteMigrator(db)
	if err != nil {
		return 0, err
	}
	return m.Apply(dir)
}

func pgx5URL(databaseURL string) string {
	if rest, found := strings.CutPrefix(databaseURL, "postgres://"); found {
		return "pgx5://" + rest
	}
	if rest, found := strings.CutPrefix(databaseURL, "postgresql://"); found {
		return "pgx5://" + rest
	}
	return databaseURL
}
