package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output arrives as natural-language-adjacent text: reasoning blocks,
// markdown fences, JSON with a sql_query field, prose around the statement,
// or several candidate lines. ExtractSQL applies a fixed precedence chain and
// the first strategy that produces a candidate wins.

var (
	thinkingBlockRe = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)
	sqlLabelRe      = regexp.MustCompile(`(?i)^\s*sql(?:\s+query)?\s*:?\s*$`)
	jsonKeyRe       = regexp.MustCompile(`"sql_query"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	selectSpanRe    = regexp.MustCompile(`(?is)(SELECT\s.*?;)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

const previewLen = 100

// ExtractSQL recovers a single canonical SQL statement from raw model output.
// The returned statement is whitespace-normalized and semicolon-terminated.
// It is a pure function; validation is separate (see Validate).
func ExtractSQL(raw string) (string, error) {
	cleaned := stripThinking(raw)
	cleaned = stripFences(cleaned)

	if sql, ok := sqlFromJSONObject(cleaned); ok {
		return canonicalize(sql), nil
	}
	if m := jsonKeyRe.FindStringSubmatch(cleaned); m != nil {
		return canonicalize(unescapeJSONString(m[1])), nil
	}
	if m := selectSpanRe.FindStringSubmatch(cleaned); m != nil {
		return canonicalize(m[1]), nil
	}
	if sql, ok := sqlFromLines(cleaned); ok {
		return canonicalize(sql), nil
	}
	if line, ok := firstSelectLine(cleaned); ok {
		return canonicalize(line), nil
	}

	return "", fmt.Errorf("could not extract SQL query from model output: %q", truncate(strings.TrimSpace(raw), previewLen))
}

// stripThinking removes paired reasoning blocks entirely before any content
// inspection.
func stripThinking(s string) string {
	return thinkingBlockRe.ReplaceAllString(s, "")
}

// stripFences drops markdown code-fence markers and a leading "sql" /
// "sql query:" label line.
func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "```") {
			continue
		}
		kept = append(kept, l)
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))

	// A bare "sql" or "sql query:" label on the first line is fence residue.
	if i := strings.IndexByte(out, '\n'); i >= 0 && sqlLabelRe.MatchString(out[:i]) {
		out = strings.TrimSpace(out[i+1:])
	}
	out = strings.TrimSpace(strings.TrimPrefix(out, "sql "))
	return out
}

// sqlFromJSONObject returns the sql_query value when the whole content parses
// as a JSON object carrying that key.
func sqlFromJSONObject(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "{") || !strings.HasSuffix(t, "}") {
		return "", false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(t), &obj); err != nil {
		return "", false
	}
	v, ok := obj["sql_query"].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// sqlFromLines scans line by line: capture begins at the first line whose
// upper-cased form starts with SELECT and ends once a line ends with ";"
// (or the text runs out). Captured lines are joined with single spaces.
func sqlFromLines(s string) (string, bool) {
	var captured []string
	capturing := false
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if !capturing {
			if strings.HasPrefix(strings.ToUpper(t), "SELECT") {
				capturing = true
				captured = append(captured, t)
				if strings.HasSuffix(t, ";") {
					break
				}
			}
			continue
		}
		captured = append(captured, t)
		if strings.HasSuffix(t, ";") {
			break
		}
	}
	if !capturing {
		return "", false
	}
	return strings.Join(captured, " "), true
}

// firstSelectLine is the last-resort heuristic: the first line anywhere
// containing the token SELECT, used verbatim.
func firstSelectLine(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(strings.ToUpper(line), "SELECT") {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

// canonicalize collapses internal whitespace runs to single spaces, trims,
// strips one trailing period, and terminates with exactly one semicolon.
func canonicalize(sql string) string {
	s := whitespaceRe.ReplaceAllString(sql, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s + ";"
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
