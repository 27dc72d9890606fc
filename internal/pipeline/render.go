package pipeline

import (
	"fmt"
	"strings"
)

const (
	// previewRows caps the rendering handed to the formatting model.
	previewRows = 25
	// fallbackRows caps the deterministic rendering used when the
	// formatting model call fails.
	fallbackRows = 50
)

// renderTable produces a deterministic plain-text table of at most maxRows
// rows. Column order follows cols; row order follows rows. A trailing note
// reports truncation.
func renderTable(cols []string, rows []Row, maxRows int) string {
	if len(rows) == 0 {
		return "(no rows)"
	}

	shown := rows
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	cells := make([][]string, len(shown))
	for r, row := range shown {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v := formatValue(row[c])
			cells[r][i] = v
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	renderLine := func(vals []string) string {
		var line strings.Builder
		for i, v := range vals {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(v)
			line.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		return strings.TrimRight(line.String(), " ")
	}

	lines := make([]string, 0, len(cells)+1)
	lines = append(lines, renderLine(cols))
	for _, row := range cells {
		lines = append(lines, renderLine(row))
	}

	out := strings.Join(lines, "\n")
	if len(rows) > maxRows {
		out += fmt.Sprintf("\n\n... (showing first %d of %d rows)", maxRows, len(rows))
	}
	return out
}

// fallbackRendering is the recoverable formatting path: a plain table with a
// row-count header, never a model call.
func fallbackRendering(cols []string, rows []Row) string {
	return fmt.Sprintf("Query returned %d row(s):\n\n%s", len(rows), renderTable(cols, rows, fallbackRows))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
