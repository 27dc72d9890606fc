package dbconn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockProvider(t *testing.T, dialect Dialect) (*Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProvider(db, dialect), mock
}

func TestProvider_ExecuteReadOnly(t *testing.T) {
	p, mock := newMockProvider(t, PostgreSQL)

	mock.ExpectQuery("SELECT name, total FROM orders;").
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}).
			AddRow("Alice", 3).
			AddRow(nil, 7))

	cols, rows, err := p.ExecuteReadOnly(context.Background(), "SELECT name, total FROM orders;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 || cols[0] != "name" || cols[1] != "total" {
		t.Errorf("cols = %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["name"] != "Alice" {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if rows[1]["name"] != nil {
		t.Errorf("NULL should map to nil, got %v", rows[1]["name"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProvider_ExecuteReadOnly_BytesNormalized(t *testing.T) {
	p, mock := newMockProvider(t, MySQL)

	mock.ExpectQuery("SELECT name FROM users;").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("Bob")))

	_, rows, err := p.ExecuteReadOnly(context.Background(), "SELECT name FROM users;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := rows[0]["name"].(string); !ok || got != "Bob" {
		t.Errorf("expected []byte normalized to string, got %T %v", rows[0]["name"], rows[0]["name"])
	}
}

func TestProvider_ExecuteReadOnly_QueryError(t *testing.T) {
	p, mock := newMockProvider(t, PostgreSQL)

	mock.ExpectQuery("SELECT bad FROM nowhere;").
		WillReturnError(errors.New(`relation "nowhere" does not exist`))

	_, _, err := p.ExecuteReadOnly(context.Background(), "SELECT bad FROM nowhere;")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `relation "nowhere" does not exist`) {
		t.Errorf("driver error should be wrapped, got %v", err)
	}
}

func TestProvider_SchemaText(t *testing.T) {
	p, mock := newMockProvider(t, PostgreSQL)

	mock.ExpectQuery("SELECT table_name, column_name, data_type").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("orders", "id", "integer").
			AddRow("orders", "total", "numeric").
			AddRow("users", "id", "integer"))

	schema, err := p.SchemaText(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Table: orders\n  id (integer)\n  total (numeric)\n\nTable: users\n  id (integer)"
	if schema != want {
		t.Errorf("schema = %q, want %q", schema, want)
	}
}

func TestProvider_SchemaText_Empty(t *testing.T) {
	p, mock := newMockProvider(t, PostgreSQL)

	mock.ExpectQuery("SELECT table_name, column_name, data_type").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}))

	_, err := p.SchemaText(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no tables found") {
		t.Errorf("expected no-tables error, got %v", err)
	}
}

func TestProvider_SchemaText_SQLite(t *testing.T) {
	p, mock := newMockProvider(t, SQLite)

	mock.ExpectQuery("SELECT sql FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"sql"}).
			AddRow("CREATE TABLE orders (id INTEGER PRIMARY KEY)").
			AddRow("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)"))

	schema, err := p.SchemaText(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(schema, "CREATE TABLE orders") || !strings.Contains(schema, "CREATE TABLE users") {
		t.Errorf("schema = %q", schema)
	}
}

func TestProvider_IsConnected(t *testing.T) {
	p, _ := newMockProvider(t, PostgreSQL)

	var nilProvider *Provider
	if nilProvider.IsConnected(context.Background()) {
		t.Error("nil provider should report disconnected")
	}
	// sqlmock without MonitorPingsOption answers pings successfully.
	if !p.IsConnected(context.Background()) {
		t.Error("mock-backed provider should report connected")
	}
}
