// Package dbconn owns everything database-specific: dialect handling, DSN
// construction, schema introspection, and read-only statement execution.
// The pipeline core only sees the small provider surface.
package dbconn

import (
	"fmt"
	"strings"
)

// Dialect identifies the target database flavor. It informs DSN construction,
// introspection queries, and the generation prompt wording; the pipeline
// never parses it further.
type Dialect string

const (
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
	SQLite     Dialect = "sqlite"
	MSSQL      Dialect = "mssql"
)

// ParseDialect normalizes a dialect string, accepting common aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return MySQL, nil
	case "postgresql", "postgres":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mssql", "sqlserver":
		return MSSQL, nil
	default:
		return "", fmt.Errorf("unsupported database dialect: %q (supported: mysql, postgresql, sqlite, mssql)", s)
	}
}

// DriverName returns the database/sql driver name for the dialect. The mssql
// driver is not bundled; callers register one before Open.
func (d Dialect) DriverName() string {
	switch d {
	case MySQL:
		return "mysql"
	case PostgreSQL:
		return "pgx"
	case SQLite:
		return "sqlite"
	case MSSQL:
		return "sqlserver"
	default:
		return string(d)
	}
}
