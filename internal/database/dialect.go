package database

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// Placeholder returns the parameter placeholder for the given position (1-indexed).
	// SQLite: "?" (ignores position), PostgreSQL: "$1", "$2", etc.
	Placeholder(position int) string

	// SupportsLastInsertID returns true if the database supports LastInsertId().
	// PostgreSQL needs a RETURNING clause instead.
	SupportsLastInsertID() bool

	// ReturningClause returns the RETURNING clause for INSERT statements,
	// or "" when LastInsertId() is used.
	ReturningClause(column string) string

	// InitStatements run once after connecting.
	InitStatements() []string

	// SerialPrimaryKey is the column definition of an auto-incrementing id.
	SerialPrimaryKey() string
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a new Dialect for the given type. Unknown types fall
// back to SQLite.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
