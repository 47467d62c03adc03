// Package store persists users, sessions, projects, memberships and tasks
// in Postgres or SQLite through database/sql.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate")
	// ErrMissingReference is returned when a foreign key rejects a write
	ErrMissingReference = errors.New("missing reference")
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the database connection
type Store struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
	now     func() time.Time
}

// Open connects to the database. driver is "postgres" or "sqlite".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serialises writers anyway; one connection also keeps an
	// in-memory database alive and shared.
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		dsn:     dsn,
		now:     defaultNow,
	}, nil
}

// OpenMemory opens a migrated in-memory SQLite store
func OpenMemory(ctx context.Context) (*Store, error) {
	s, err := Open(ctx, "sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SetClock replaces the time source used for created/updated timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.now = func() time.Time {
		return now().UTC().Truncate(time.Microsecond)
	}
}

// Now returns the current time from the store's clock
func (s *Store) Now() time.Time {
	return s.now()
}

// Dialect returns the SQL dialect in use
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies all pending schema migrations
func (s *Store) Migrate(ctx context.Context) error {
	src, err := iofs.New(migrationsFS, "migrations/"+s.dialect.String())
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, closeDriver, err := s.migrationDriver(ctx)
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.dialect.String(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if closeDriver {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			return srcErr
		}
		return dbErr
	}
	return src.Close()
}

// migrationDriver returns the golang-migrate driver. Postgres migrations run
// on a dedicated handle that is closed afterwards; SQLite must share the
// store's handle because an in-memory database lives in that connection.
func (s *Store) migrationDriver(ctx context.Context) (database.Driver, bool, error) {
	switch s.dialect {
	case DialectPostgres:
		db, err := sql.Open(s.dialect.driverName(), s.dsn)
		if err != nil {
			return nil, false, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, false, err
		}
		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			_ = db.Close()
			return nil, false, err
		}
		return driver, true, nil
	default:
		driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
		return driver, false, err
	}
}

// withTx runs fn in a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "$start, $start+1, ..." for n arguments
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// nullString converts an optional string into a nullable column value
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr converts a nullable column value into an optional string
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
