package pipeline

import (
	"strings"
	"testing"
)

func TestExtractSQL_CleanStatement(t *testing.T) {
	got, err := ExtractSQL("SELECT 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("expected SELECT 1; got %q", got)
	}
}

func TestExtractSQL_Idempotent(t *testing.T) {
	first, err := ExtractSQL("SELECT name FROM users WHERE id = 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ExtractSQL(first)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if first != second {
		t.Errorf("extraction not idempotent: %q vs %q", first, second)
	}
}

func TestExtractSQL_ThinkingBlock(t *testing.T) {
	got, err := ExtractSQL("<think>the user wants a count</think>SELECT 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("expected SELECT 1; got %q", got)
	}

	got, err = ExtractSQL("<thinking>\nSELECT decoy;\n</thinking>\nSELECT real FROM t;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT real FROM t;" {
		t.Errorf("expected statement outside thinking block, got %q", got)
	}
}

func TestExtractSQL_FencedJSON(t *testing.T) {
	raw := "```json\n{\"sql_query\": \"SELECT * FROM users;\"}\n```"
	got, err := ExtractSQL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT * FROM users;" {
		t.Errorf("expected SELECT * FROM users; got %q", got)
	}
}

func TestExtractSQL_SQLFence(t *testing.T) {
	raw := "```sql\nSELECT id, name\nFROM customers;\n```"
	got, err := ExtractSQL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT id, name FROM customers;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_JSONKeyInProse(t *testing.T) {
	raw := `Sure! The query is {"sql_query": "SELECT a FROM b;"} — hope that helps.`
	got, err := ExtractSQL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT a FROM b;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_JSONEscapes(t *testing.T) {
	raw := `{"sql_query": "SELECT name FROM t WHERE note = \"x\";"}`
	got, err := ExtractSQL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `SELECT name FROM t WHERE note = "x";` {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_SpanAcrossProse(t *testing.T) {
	raw := "Here is the query:\nSELECT name\nFROM users\nWHERE id = 1;\nThat should work."
	got, err := ExtractSQL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT name FROM users WHERE id = 1;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_LineScanWithoutSemicolon(t *testing.T) {
	got, err := ExtractSQL("SELECT  1\n\tFROM t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT 1 FROM t;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_TrailingPeriod(t *testing.T) {
	got, err := ExtractSQL("SELECT 1.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_SingleTerminator(t *testing.T) {
	got, err := ExtractSQL("SELECT 1 ;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("got %q", got)
	}
	if strings.Count(got, ";") != 1 {
		t.Errorf("expected exactly one semicolon, got %q", got)
	}
}

func TestExtractSQL_FirstSelectLineFallback(t *testing.T) {
	// No parseable statement anywhere; the first line containing SELECT is
	// taken verbatim as a last resort.
	got, err := ExtractSQL("The answer uses SELECT COUNT(*) FROM t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "SELECT COUNT(*) FROM t") {
		t.Errorf("got %q", got)
	}
}

func TestExtractSQL_NoSQL(t *testing.T) {
	_, err := ExtractSQL("I cannot answer that question.")
	if err == nil {
		t.Fatal("expected error for output with no SQL")
	}
	if !strings.Contains(err.Error(), "could not extract SQL query") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestExtractSQL_ErrorPreviewTruncated(t *testing.T) {
	raw := strings.Repeat("no sql here ", 20)
	_, err := ExtractSQL(raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "...") {
		t.Errorf("expected truncated preview in %v", err)
	}
	if strings.Contains(err.Error(), raw) {
		t.Errorf("error should not carry full raw output: %v", err)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SELECT 1", "SELECT 1;"},
		{"SELECT 1;", "SELECT 1;"},
		{"SELECT 1;;", "SELECT 1;"},
		{"SELECT 1; ;", "SELECT 1;"},
		{"  SELECT\t1\n  FROM  t  ", "SELECT 1 FROM t;"},
		{"SELECT 1.", "SELECT 1;"},
	}
	for _, tt := range tests {
		if got := canonicalize(tt.input); got != tt.want {
			t.Errorf("canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
