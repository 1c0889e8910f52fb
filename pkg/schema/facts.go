// Package schema answers catalog questions for the index-related
// detectors: row-count estimates, index coverage, primary keys, unique
// fields, and query plans. Implementations exist for PostgreSQL, MySQL
// and SQLite, plus a static snapshot provider for tests and offline
// analysis.
package schema

import (
	"context"
	"regexp"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// Facts is the schema introspection surface the detectors consume.
// Implementations must be safe for concurrent read-only use.
type Facts interface {
	// EstimatedRowCount returns an approximate row count for the table.
	// Estimates may be stale or negative for never-analyzed tables.
	EstimatedRowCount(ctx context.Context, table string) (int64, error)
	// IsColumnIndexed reports whether any of the given columns is the
	// leading column of an index on the table.
	IsColumnIndexed(ctx context.Context, table string, columns []string) (bool, error)
	// HasCompositeIndex reports whether an index exists whose column set
	// equals the given set exactly.
	HasCompositeIndex(ctx context.Context, table string, columns []string) (bool, error)
	PrimaryKeys(ctx context.Context, table string) ([]string, error)
	UniqueFields(ctx context.Context, table string) ([]string, error)
	// Explain runs the vendor's EXPLAIN over the statement and returns
	// the plan as lines of text.
	Explain(ctx context.Context, sql string) ([]string, error)
}

// catalogNoise lists column names that show up as primary keys when
// introspection leaks system catalogs or framework bookkeeping tables
// into the result. They carry no signal for duplicate-elimination
// reasoning and are dropped before the DISTINCT check.
var catalogNoise = map[string]bool{
	"oid": true, "chunk_id": true, "last_value": true, "attrelid": true,
	"inhrelid": true, "indexrelid": true, "classid": true,
	"objoid": true, "srrelid": true, "ev_class": true, "mapcfg": true,
	"proname": true, "stxoid": true, "roleid": true,
	"starelid": true, "rolname": true, "partrelid": true, "conrelid": true,
	"subid": true, "contypid": true, "amopfamily": true,
	"tgconstraint": true, "reltablespace": true, "stxrelid": true,
	"stxname": true, "pubname": true, "local_id": true,
	"collname": true, "prrelid": true, "typname": true,
	"foreign_server_catalog": true, "sequence_catalog": true,
	"implementation_info_id": true, "constraint_catalog": true,
	"nspname": true, "domain_catalog": true,
	"view_catalog": true, "user_defined_type_catalog": true,
	"table_catalog": true, "function_id": true,
	"dbid": true, "wal_records": true, "pid": true, "session_key": true,
	"expire_date": true, "feature_id": true, "line_number": true,
}

// FilterPrimaryKeys drops catalog-noise names from a primary key list,
// preserving order. Matching is against the raw names as reported by
// the provider.
func FilterPrimaryKeys(primaryKeys []string) []string {
	kept := make([]string, 0, len(primaryKeys))
	for _, key := range primaryKeys {
		if catalogNoise[key] {
			continue
		}
		kept = append(kept, key)
	}
	return kept
}

// PlanIndexed classifies an EXPLAIN plan: true when the plan reads
// through an index, false when it scans sequentially or is
// inconclusive. Markers are vendor plan-text substrings; within each
// line the sequential markers are checked first, and the first hit
// decides.
func PlanIndexed(engine types.Engine, plan []string) bool {
	seq, idx := planMarkers(engine)
	for _, line := range plan {
		for _, marker := range seq {
			if strings.Contains(line, marker) {
				return false
			}
		}
		for _, marker := range idx {
			if strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}

func planMarkers(engine types.Engine) (seq, idx []string) {
	switch engine {
	case types.Engine_MYSQL:
		// EXPLAIN FORMAT=TREE output.
		return []string{"Table scan on"},
			[]string{"Index lookup on", "Index range scan", "Index scan on", "Covering index"}
	case types.Engine_SQLITE:
		// EXPLAIN QUERY PLAN detail text.
		return []string{"SCAN "},
			[]string{"USING INDEX", "USING COVERING INDEX", "USING INTEGER PRIMARY KEY"}
	default:
		return []string{"Seq Scan"}, []string{"Index Scan"}
	}
}

var positionalParamRe = regexp.MustCompile(`\$\d+`)

// explainSQL returns the statement text to hand to EXPLAIN. Statements
// still carrying placeholder forms cannot be executed as-is, so they
// are collapsed to their normalized shape first.
func explainSQL(sql string) string {
	if strings.Contains(sql, "%s") || positionalParamRe.MatchString(sql) {
		return sqltext.NormalizeQuery(sql)
	}
	return sql
}

// cleanIdentifier maps an identifier as extracted from SQL text onto
// its catalog form: qualifier dropped, double quotes removed,
// lowercased. Unlike sqltext.NormalizeIdentifier it is lossless on the
// remaining characters, which lookups against real catalogs need.
func cleanIdentifier(name string) string {
	parts := strings.Split(name, ".")
	n := strings.ReplaceAll(parts[len(parts)-1], `"`, "")
	return strings.ToLower(strings.TrimSpace(n))
}

func cleanIdentifiers(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, cleanIdentifier(name))
	}
	return out
}

// columnSetsEqual compares two column lists as sets of cleaned
// identifiers.
func columnSetsEqual(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, col := range a {
		as[cleanIdentifier(col)] = true
	}
	bs := make(map[string]bool, len(b))
	for _, col := range b {
		bs[cleanIdentifier(col)] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for col := range as {
		if !bs[col] {
			return false
		}
	}
	return true
}
