package sqltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	dollarParamRe   = regexp.MustCompile(`\$\d+`)
	whereClauseRe   = regexp.MustCompile(`(?i)WHERE\s+.*?(GROUP BY|ORDER BY|$)`)
	orderByClauseRe = regexp.MustCompile(`(?i)ORDER\s+BY\s+((?:"?\w+"?(?:\."?\w+"?)?(?:\s+ASC|\s+DESC)?)(?:\s*,\s*"?\w+"?(?:\."?\w+"?)?(?:\s+ASC|\s+DESC)?)*)(?:\s*|\s*;)`)
	groupByClauseRe = regexp.MustCompile(`(?i)GROUP BY\s+.*?(ORDER BY|$)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	validSQLRe      = regexp.MustCompile(`^(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|TRUNCATE|GRANT|REVOKE)\s`)
	columnPrefixRe  = regexp.MustCompile(`[A-Za-z0-9_]+\.`)
)

// NormalizeQuery reduces a statement to its structural shape so that
// executions differing only in bound values group together: positional
// placeholders ($1, %s) become "?", WHERE/GROUP BY/ORDER BY clauses are
// stripped, and whitespace is collapsed.
func NormalizeQuery(sql string) string {
	s := strings.TrimSpace(sql)
	s = dollarParamRe.ReplaceAllString(s, "?")
	s = strings.ReplaceAll(s, "%s", "?")
	s = whereClauseRe.ReplaceAllString(s, "")
	s = orderByClauseRe.ReplaceAllString(s, "")
	s = groupByClauseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeIdentifier reduces a possibly quoted, possibly table-qualified
// identifier to a bare lowercase column name. The "on" substring removal is
// intentional: both sides of every comparison go through this function, so
// the collisions it introduces are stable across the comparison.
func NormalizeIdentifier(name string) string {
	parts := strings.Split(name, ".")
	n := strings.ReplaceAll(parts[len(parts)-1], `"`, "")
	n = strings.TrimSpace(strings.ToLower(n))
	if strings.Contains(n, "on") {
		n = strings.ReplaceAll(n, "on", "")
	}
	return strings.TrimSpace(n)
}

// IsValidSQL reports whether the statement starts with a recognized SQL verb.
func IsValidSQL(sql string) bool {
	return validSQLRe.MatchString(strings.ToUpper(strings.TrimSpace(sql)))
}

// IndexSuggestion builds an index name and the CREATE INDEX statement for the
// given table and columns. Column names are stripped of table prefixes and
// quoting first; a cleaned column of one character or less signals that the
// caller passed a broken column list.
func IndexSuggestion(table string, columns []string) (string, string, error) {
	table = strings.TrimSpace(strings.ReplaceAll(table, `"`, ""))
	cleaned := make([]string, 0, len(columns))
	for _, col := range columns {
		col = columnPrefixRe.ReplaceAllString(col, "")
		cleaned = append(cleaned, strings.TrimSpace(strings.ReplaceAll(col, `"`, "")))
	}
	for _, col := range cleaned {
		if len(col) <= 1 {
			return "", "", errors.New("column names appear to be split into individual characters")
		}
	}
	name := fmt.Sprintf("idx_%s_%s", table, strings.Join(cleaned, "_"))
	stmt := fmt.Sprintf("CREATE INDEX %s ON %s(%s);", name, table, strings.Join(cleaned, ", "))
	return name, stmt, nil
}
