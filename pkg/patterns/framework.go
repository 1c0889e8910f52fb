// Package patterns implements the individual anti-pattern detectors.
// Each file registers one detector; importing the package for side
// effects makes the full set available through the detector registry.
package patterns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// missingIndexFindings applies the shared index heuristic to one query
// for one clause. Per implicated table: small tables are skipped; two
// or more columns require a matching composite index and produce at
// most one finding; a single column is checked against per-column
// indexes, and only flagged when an EXPLAIN of the query also fails to
// show an index being used.
func missingIndexFindings(ctx context.Context, checkCtx detector.Context, level types.EventLevel, record *types.QueryRecord, tables, columns []string, clause string, findingType types.FindingType) []*types.Finding {
	var findings []*types.Finding

	for _, table := range tables {
		if isSmallTable(ctx, checkCtx, table) {
			continue
		}

		if len(columns) > 1 {
			if hasCompositeIndex(ctx, checkCtx, table, columns) {
				continue
			}
			_, indexSQL, err := sqltext.IndexSuggestion(table, columns)
			if err != nil {
				slog.Error("Error generating an index suggestion", "table", table, "error", err)
				continue
			}
			findings = append(findings, &types.Finding{
				Type:    findingType,
				Query:   record.SQL,
				Table:   table,
				Columns: columns,
				Suggestion: fmt.Sprintf("Columns %s involved in %s lack a composite index.\n%s",
					strings.Join(columns, ", "), clause, indexSQL),
				Level: level,
			})
			continue
		}

		for _, column := range columns {
			if columnIndexed(ctx, checkCtx, table, column) {
				continue
			}
			if queryPlanIndexed(ctx, checkCtx, record.SQL) {
				continue
			}
			_, indexSQL, err := sqltext.IndexSuggestion(table, []string{column})
			if err != nil {
				slog.Error("Error generating an index suggestion", "table", table, "error", err)
				continue
			}
			findings = append(findings, &types.Finding{
				Type:    findingType,
				Query:   record.SQL,
				Table:   table,
				Columns: []string{column},
				Suggestion: fmt.Sprintf("Column %s involved in %s lacks an index.\n%s",
					column, clause, indexSQL),
				Level: level,
			})
		}
	}

	return findings
}

// isSmallTable reports whether the table's row estimate falls below
// the indexing threshold. Lookup failures count as unknown, which
// never suppresses a check.
func isSmallTable(ctx context.Context, checkCtx detector.Context, table string) bool {
	rows, err := checkCtx.Facts.EstimatedRowCount(ctx, table)
	if err != nil {
		slog.Warn("Row count estimate unavailable", "table", table, "error", err)
		return false
	}
	return rows < checkCtx.Thresholds.SmallTableRows
}

func hasCompositeIndex(ctx context.Context, checkCtx detector.Context, table string, columns []string) bool {
	has, err := checkCtx.Facts.HasCompositeIndex(ctx, table, columns)
	if err != nil {
		slog.Warn("Composite index lookup failed", "table", table, "error", err)
		return false
	}
	return has
}

func columnIndexed(ctx context.Context, checkCtx detector.Context, table string, column string) bool {
	indexed, err := checkCtx.Facts.IsColumnIndexed(ctx, table, []string{column})
	if err != nil {
		slog.Warn("Index lookup failed", "table", table, "column", column, "error", err)
		return false
	}
	return indexed
}

// queryPlanIndexed runs EXPLAIN over the statement and classifies the
// plan. Failures count as not indexed.
func queryPlanIndexed(ctx context.Context, checkCtx detector.Context, sql string) bool {
	plan, err := checkCtx.Facts.Explain(ctx, sql)
	if err != nil {
		slog.Warn("EXPLAIN failed", "error", err)
		return false
	}
	return schema.PlanIndexed(checkCtx.Engine, plan)
}

// recordSeconds parses the record's execution time, logging and
// reporting false when the value is malformed.
func recordSeconds(record *types.QueryRecord) (float64, bool) {
	seconds, err := record.ExecutionSeconds()
	if err != nil {
		slog.Warn("Skipping query with malformed execution time", "time", record.Time, "error", err)
		return 0, false
	}
	return seconds, true
}
