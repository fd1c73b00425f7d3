package database

import (
	"strings"
)

// QueryBuilder rewrites queries written with ? placeholders for a dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build numbers the ? placeholders when the dialect needs it.
//
//	input:    "SELECT id FROM runs WHERE seed = ? AND width = ?"
//	SQLite:   unchanged
//	Postgres: "SELECT id FROM runs WHERE seed = $1 AND width = $2"
func (qb *QueryBuilder) Build(query string) string {
	if qb.dialect.Placeholder(1) == "?" {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	position := 1
	for _, part := range strings.SplitAfter(query, "?") {
		if !strings.HasSuffix(part, "?") {
			sb.WriteString(part)
			continue
		}
		sb.WriteString(part[:len(part)-1])
		sb.WriteString(qb.dialect.Placeholder(position))
		position++
	}
	return sb.String()
}

// BuildWithReturning is Build plus a RETURNING clause for dialects without
// LastInsertId().
//
//	input:    "INSERT INTO runs (seed) VALUES (?)", "id"
//	SQLite:   "INSERT INTO runs (seed) VALUES (?)"
//	Postgres: "INSERT INTO runs (seed) VALUES ($1) RETURNING id"
func (qb *QueryBuilder) BuildWithReturning(query string, column string) string {
	converted := qb.Build(query)
	if !qb.dialect.SupportsLastInsertID() {
		converted += qb.dialect.ReturningClause(column)
	}
	return converted
}
