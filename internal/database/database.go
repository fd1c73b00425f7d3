// Package database keeps a history of generation runs in SQLite or PostgreSQL.
// Only run metadata and a fingerprint are stored, never the map itself.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the connection and its dialect.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open connects to the configured database and applies the schema.
func Open(config Config) (*Database, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	dialect := NewDialect(DialectType(config.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = config.Postgres.ConnString()
	default:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(config.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = config.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(config.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(config.Postgres.ConnMaxLifetime)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database (%s): %w", stmt, err)
		}
	}

	d := &Database{
		db:      db,
		dialect: dialect,
		qb:      NewQueryBuilder(dialect),
	}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + d.dialect.SerialPrimaryKey() + `,
			strategy TEXT NOT NULL,
			rules TEXT NOT NULL DEFAULT '',
			distribution TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			iterations INTEGER NOT NULL DEFAULT 0,
			collapses INTEGER NOT NULL DEFAULT 0,
			backtracks INTEGER NOT NULL DEFAULT 0,
			max_depth INTEGER NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}
