package database

import (
	"fmt"
)

// PostgresDialect implements Dialect for the lib/pq driver.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// Placeholder returns "$N" for the given position.
func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) SupportsLastInsertID() bool {
	return false
}

// ReturningClause returns " RETURNING <column>".
func (d *PostgresDialect) ReturningClause(column string) string {
	return fmt.Sprintf(" RETURNING %s", column)
}

// InitStatements pins the session to UTC so created_at compares across hosts.
func (d *PostgresDialect) InitStatements() []string {
	return []string{
		"SET TIME ZONE 'UTC'",
	}
}

func (d *PostgresDialect) SerialPrimaryKey() string {
	return "BIGSERIAL PRIMARY KEY"
}
