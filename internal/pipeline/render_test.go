package pipeline

import (
	"strings"
	"testing"
)

func TestRenderTable_ColumnAndRowOrder(t *testing.T) {
	cols := []string{"name", "total"}
	rows := []Row{
		{"name": "Alice", "total": 3},
		{"name": "Bob", "total": 12},
	}

	out := renderTable(cols, rows, 50)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "name") || !strings.Contains(lines[0], "total") {
		t.Errorf("bad header line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Alice") {
		t.Errorf("row order not preserved: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Bob") {
		t.Errorf("row order not preserved: %q", lines[2])
	}
}

func TestRenderTable_NullAndBytes(t *testing.T) {
	cols := []string{"a", "b"}
	rows := []Row{{"a": nil, "b": []byte("raw")}}

	out := renderTable(cols, rows, 10)
	if !strings.Contains(out, "NULL") {
		t.Errorf("nil should render as NULL:\n%s", out)
	}
	if !strings.Contains(out, "raw") {
		t.Errorf("[]byte should render as text:\n%s", out)
	}
}

func TestRenderTable_Truncation(t *testing.T) {
	cols := []string{"n"}
	rows := make([]Row, 7)
	for i := range rows {
		rows[i] = Row{"n": i}
	}

	out := renderTable(cols, rows, 5)
	if !strings.Contains(out, "... (showing first 5 of 7 rows)") {
		t.Errorf("missing truncation note:\n%s", out)
	}
	// Header plus exactly maxRows data lines before the note.
	body := strings.Split(out, "\n\n")[0]
	if got := len(strings.Split(body, "\n")); got != 6 {
		t.Errorf("expected 6 body lines, got %d:\n%s", got, out)
	}
}

func TestRenderTable_NoTruncationNoteWhenWithinLimit(t *testing.T) {
	out := renderTable([]string{"n"}, []Row{{"n": 1}}, 5)
	if strings.Contains(out, "showing first") {
		t.Errorf("unexpected truncation note:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := renderTable([]string{"a"}, nil, 5); got != "(no rows)" {
		t.Errorf("got %q", got)
	}
}

func TestFallbackRendering(t *testing.T) {
	out := fallbackRendering([]string{"id"}, []Row{{"id": 1}, {"id": 2}})
	if !strings.HasPrefix(out, "Query returned 2 row(s):") {
		t.Errorf("missing row-count header:\n%s", out)
	}
	if !strings.Contains(out, "id") {
		t.Errorf("missing table body:\n%s", out)
	}
}
