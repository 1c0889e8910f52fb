// Package sqltext provides regex-based extraction and normalization helpers
// for raw SQL statements. The helpers are heuristics over query text, not a
// SQL parser: they cover the statement shapes produced by ORMs and query
// builders and degrade to empty results on anything else.
package sqltext

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	tableNamesRe   = regexp.MustCompile(`(?i)FROM\s+(["'\w.]+)(?:\s+AS\s+\w+)?|JOIN\s+(["'\w.]+)`)
	whereColumnsRe = regexp.MustCompile(`(?i)WHERE\s+(["'\w.]+)\s*=|AND\s+(["'\w.]+)\s*=`)
	selectClauseRe = regexp.MustCompile(`(?is)SELECT\s+(.+?)\s+FROM`)
	parenGroupRe   = regexp.MustCompile(`\(.*?\)`)
	joinOnRe       = regexp.MustCompile(`(?i)\b(?:INNER|LEFT|RIGHT|FULL|OUTER)?\s*JOIN\s+"?([a-zA-Z0-9_"]+)"?\s+ON\s+\("?([a-zA-Z0-9_".]+)"?\s*=\s*"?([a-zA-Z0-9_".]+)"?\)`)
	orderByEmptyRe = regexp.MustCompile(`(?i)ORDER\s+BY\s*(;|$)`)
	orderByListRe  = regexp.MustCompile(`(?i)ORDER\s+BY\s+((?:"\w+"\."\w+"(?:\s+ASC|\s+DESC)?)(?:\s*,\s*"\w+"\."\w+"(?:\s+ASC|\s+DESC)?)*)`)
	sortOrderRe    = regexp.MustCompile(`(?i)\s+(ASC|DESC)$`)
	aggregateRe    = regexp.MustCompile(`(?i)\b(SUM|AVG|COUNT|MIN|MAX)\s*\(\s*([^)]+)\s*\)`)
	nestedCallRe   = regexp.MustCompile(`\b\w+\s*\(\s*`)
)

// ExtractTableNames returns the tables referenced by FROM and JOIN clauses,
// deduplicated in first-seen order. Names keep whatever quoting the statement
// used; aliases are not resolved.
func ExtractTableNames(sql string) []string {
	matches := tableNamesRe.FindAllStringSubmatch(sql, -1)
	var tables []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tables = append(tables, name)
	}
	return tables
}

// ExtractTableAndWhereColumns returns the referenced tables together with the
// columns compared for equality in WHERE/AND predicates.
func ExtractTableAndWhereColumns(sql string) ([]string, []string) {
	return ExtractTableNames(sql), ExtractWhereColumns(sql)
}

// ExtractWhereColumns returns the columns compared for equality in WHERE/AND
// predicates, deduplicated in first-seen order.
func ExtractWhereColumns(sql string) []string {
	matches := whereColumnsRe.FindAllStringSubmatch(sql, -1)
	var columns []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}
	return columns
}

// ExtractSelectClause returns the projection list between SELECT and FROM with
// parenthesized expressions removed. The second return value reports whether a
// SELECT ... FROM shape was found at all.
func ExtractSelectClause(sql string) (string, bool) {
	m := selectClauseRe.FindStringSubmatch(sql)
	if m == nil {
		return "", false
	}
	return parenGroupRe.ReplaceAllString(m[1], ""), true
}

// Join is one JOIN ... ON (left = right) clause.
type Join struct {
	Table       string
	LeftColumn  string
	RightColumn string
}

// ExtractJoins returns the JOIN clauses written in the
// JOIN table ON (left = right) form. Statements with no such clause yield nil.
func ExtractJoins(sql string) []Join {
	matches := joinOnRe.FindAllStringSubmatch(sql, -1)
	if matches == nil {
		return nil
	}
	joins := make([]Join, 0, len(matches))
	for _, m := range matches {
		joins = append(joins, Join{
			Table:       strings.Trim(m[1], `"`),
			LeftColumn:  m[2],
			RightColumn: m[3],
		})
	}
	return joins
}

// KeyColumns splits the join condition sides into their column lists. Both
// sides must be non-empty and of equal length.
func (j Join) KeyColumns() ([]string, []string, error) {
	fk := splitColumns(strings.Trim(j.LeftColumn, `"`))
	ref := splitColumns(strings.Trim(j.RightColumn, `"`))
	if len(fk) == 0 || len(ref) == 0 || hasEmpty(fk) || hasEmpty(ref) {
		return nil, nil, errors.New("foreign key or referenced columns cannot be empty")
	}
	if len(fk) != len(ref) {
		return nil, nil, errors.New("mismatched number of foreign key and referenced columns")
	}
	return fk, ref, nil
}

func splitColumns(s string) []string {
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

func hasEmpty(cols []string) bool {
	for _, c := range cols {
		if c == "" {
			return true
		}
	}
	return false
}

// ExtractOrderByColumns returns the quoted, table-qualified columns of an
// ORDER BY clause ("tbl"."col" [ASC|DESC], ...) with the sort direction
// stripped. A bare ORDER BY with no columns is a validation error; clauses in
// any other form yield an empty result.
func ExtractOrderByColumns(sql string) ([]string, error) {
	if orderByEmptyRe.MatchString(sql) {
		return nil, errors.New("ORDER BY clause contains empty or invalid columns")
	}
	m := orderByListRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, nil
	}
	parts := strings.Split(m[1], ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		col := sortOrderRe.ReplaceAllString(strings.TrimSpace(part), "")
		columns = append(columns, col)
	}
	return columns, nil
}

// ExtractAggregateColumns returns the arguments of SUM/AVG/COUNT/MIN/MAX
// calls with nested function calls and quoting unwrapped. An aggregate over a
// blank argument is a validation error.
func ExtractAggregateColumns(sql string) ([]string, error) {
	matches := aggregateRe.FindAllStringSubmatch(sql, -1)
	var columns []string
	for _, m := range matches {
		col := strings.TrimSpace(m[2])
		if col == "" {
			return nil, errors.New("aggregate function contains empty or invalid columns")
		}
		col = nestedCallRe.ReplaceAllString(col, "")
		col = strings.ReplaceAll(col, ")", "")
		col = strings.ReplaceAll(col, `"`, "")
		columns = append(columns, strings.TrimSpace(col))
	}
	return columns, nil
}
