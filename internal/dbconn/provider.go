package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Provider exposes the three operations the pipeline needs from the user's
// database: a schema snapshot, read-only execution of one statement, and a
// liveness check. Connection lifecycle is owned here, not by the pipeline.
type Provider struct {
	db      *sql.DB
	dialect Dialect
}

// Open builds a DSN from the params and opens a lazily-connected pool.
// Connectivity is checked per call through IsConnected, not here.
func Open(p ConnParams) (*Provider, error) {
	dsn, err := BuildDSN(p)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(p.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", p.Dialect, err)
	}
	return NewProvider(db, p.Dialect), nil
}

// NewProvider wraps an existing pool. Used directly by tests.
func NewProvider(db *sql.DB, dialect Dialect) *Provider {
	return &Provider{db: db, dialect: dialect}
}

// Dialect returns the provider's dialect.
func (p *Provider) Dialect() Dialect {
	return p.dialect
}

// IsConnected reports whether the database answers a ping.
func (p *Provider) IsConnected(ctx context.Context) bool {
	if p == nil || p.db == nil {
		return false
	}
	return p.db.PingContext(ctx) == nil
}

// Close releases the underlying pool.
func (p *Provider) Close() error {
	return p.db.Close()
}

// ExecuteReadOnly runs one statement and maps the result set into ordered
// rows. Column order follows the result set; row order follows the result
// set; no sorting is applied. The statement is expected to be validated
// upstream — this layer adds no second policy check.
func (p *Provider) ExecuteReadOnly(ctx context.Context, query string) ([]string, []map[string]any, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return cols, results, nil
}

// SchemaText returns a prompt-ready description of the current schema:
// tables with their columns and types, ordered by name.
func (p *Provider) SchemaText(ctx context.Context) (string, error) {
	if p.dialect == SQLite {
		return p.sqliteSchemaText(ctx)
	}

	query, args := columnQuery(p.dialect)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("introspect schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	currentTable := ""
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		if table != currentTable {
			if currentTable != "" {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "Table: %s\n", table)
			currentTable = table
		}
		fmt.Fprintf(&b, "  %s (%s)\n", column, dataType)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema rows: %w", err)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no tables found in database")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// columnQuery returns the information_schema query for non-sqlite dialects,
// ordered so columns group by table in definition order.
func columnQuery(d Dialect) (string, []any) {
	switch d {
	case MySQL:
		return `SELECT table_name, column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = DATABASE()
			ORDER BY table_name, ordinal_position`, nil
	case MSSQL:
		return `SELECT table_name, column_name, data_type
			FROM INFORMATION_SCHEMA.COLUMNS
			ORDER BY table_name, ordinal_position`, nil
	default: // PostgreSQL
		return `SELECT table_name, column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = 'public'
			ORDER BY table_name, ordinal_position`, nil
	}
}

// sqliteSchemaText reads CREATE TABLE statements out of sqlite_master, which
// is more faithful than information_schema emulation.
func (p *Provider) sqliteSchemaText(ctx context.Context) (string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND sql IS NOT NULL
		 ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("introspect schema: %w", err)
	}
	defer rows.Close()

	var ddl []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		ddl = append(ddl, stmt)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate schema rows: %w", err)
	}
	if len(ddl) == 0 {
		return "", fmt.Errorf("no tables found in database")
	}
	return strings.Join(ddl, "\n\n"), nil
}

// normalizeValue makes driver values prompt- and JSON-friendly. The mysql
// driver in particular returns []byte for text columns.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
