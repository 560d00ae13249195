package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	_ "modernc.org/sqlite"             // SQLite driver
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultQueryTimeout bounds every store call when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// DB wraps a connection pool with the SQL dialect it speaks and the per-call
// timeout repositories apply to store operations.
type DB struct {
	*sql.DB
	Driver       string
	QueryTimeout time.Duration
}

// Open opens a connection to the configured database and applies driver-specific settings.
// dsn is a file path for SQLite and a connection string for Postgres.
func Open(driver, dsn string, queryTimeout time.Duration) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	// Open database connection
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := Wrap(sqlDB, driver, queryTimeout)

	if driver == DriverSQLite {
		if err := db.configureSQLite(); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// Wrap adopts an existing connection pool.
func Wrap(sqlDB *sql.DB, driver string, queryTimeout time.Duration) *DB {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &DB{DB: sqlDB, Driver: driver, QueryTimeout: queryTimeout}
}

func (db *DB) configureSQLite() error {
	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Concurrent readers while the single writer upserts aggregates
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// Rebind rewrites '?' placeholders into the driver's bind syntax.
// Queries are written once with '?' and rebound for Postgres ($1, $2, ...).
func (db *DB) Rebind(query string) string {
	if db.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// WithTimeout derives a context bounded by the store call timeout.
func (db *DB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.QueryTimeout)
}

// HealthCheck performs a simple health check on the database
func HealthCheck(ctx context.Context, db *DB) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()
	return db.PingContext(ctx)
}
