package pipeline

import (
	"strings"
	"testing"
)

func TestValidate_AllowsSelect(t *testing.T) {
	tests := []string{
		"SELECT * FROM users;",
		"select name from customers where id = 1;",
		"SELECT COUNT(*) FROM orders GROUP BY status;",
	}
	for _, sql := range tests {
		if err := Validate(sql); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", sql, err)
		}
	}
}

func TestValidate_RejectsNonSelect(t *testing.T) {
	tests := []string{
		"INSERT INTO users VALUES (1);",
		"delete from users;",
		"EXPLAIN SELECT 1;",
		// CTEs fail the SELECT-prefix rule; the policy is prefix-based.
		"WITH x AS (SELECT 1) SELECT * FROM x;",
		"",
	}
	for _, sql := range tests {
		if err := Validate(sql); err == nil {
			t.Errorf("Validate(%q) = nil, want error", sql)
		}
	}
}

func TestValidate_RejectsEmbeddedKeywords(t *testing.T) {
	tests := []struct {
		sql     string
		keyword string
	}{
		{"SELECT 1; DROP TABLE users;", "DROP"},
		{"SELECT * FROM t WHERE note = 'please TRUNCATE this';", "TRUNCATE"},
		{"SELECT merge_status FROM builds;", "MERGE"},
	}
	for _, tt := range tests {
		err := Validate(tt.sql)
		if err == nil {
			t.Errorf("Validate(%q) = nil, want error", tt.sql)
			continue
		}
		if !strings.Contains(err.Error(), tt.keyword) {
			t.Errorf("Validate(%q) error %v should name %s", tt.sql, err, tt.keyword)
		}
	}
}

func TestValidate_SubstringFalsePositive(t *testing.T) {
	// Matching is plain substring over the whole statement, so a column named
	// updated_at trips the UPDATE keyword. Conservative rejection is the
	// intended behavior.
	err := Validate("SELECT updated_at FROM users;")
	if err == nil {
		t.Fatal("expected rejection of updated_at column (UPDATE substring)")
	}
	if !strings.Contains(err.Error(), "UPDATE") {
		t.Errorf("error should name UPDATE, got %v", err)
	}
}
