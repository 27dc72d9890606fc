package pipeline

import (
	"fmt"
	"strings"
)

// prohibitedKeywords is the fixed denylist of DML/DDL keywords. Matching is a
// plain substring test over the upper-cased statement, including string
// literals, identifiers, and comments. That is intentionally conservative and
// produces false positives for legitimate names containing these substrings
// (a column "updated_at" trips UPDATE, a literal 'DROP-IN REPLACEMENT' trips
// DROP). The over-approximation is a documented property, not a bug.
var prohibitedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"TRUNCATE", "REPLACE", "MERGE", "GRANT", "REVOKE",
}

// Validate enforces the read-only security policy on a canonical statement:
// it must start with SELECT and must not contain any denylisted keyword.
func Validate(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("only SELECT queries are allowed, got: %s", truncate(sql, previewLen))
	}
	for _, kw := range prohibitedKeywords {
		if strings.Contains(upper, kw) {
			return fmt.Errorf("prohibited SQL operation detected: %s", kw)
		}
	}
	return nil
}
