package patterns

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*UnnecessaryDistinctDetector)(nil)

func init() {
	detector.Register(types.FindingUnnecessaryDistinct, &UnnecessaryDistinctDetector{})
}

var (
	distinctOnRe = regexp.MustCompile(`(?i)\bDISTINCT\s+ON\s*\(\s*([^\)]+)\s*\)`)
	distinctRe   = regexp.MustCompile(`(?i)\bDISTINCT\b`)
)

// UnnecessaryDistinctDetector flags DISTINCT over projections that are
// already duplicate-free because every selected column is a primary
// key or unique field.
type UnnecessaryDistinctDetector struct{}

func (*UnnecessaryDistinctDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}
	if checkCtx.Facts == nil {
		return nil, nil
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		sql := record.SQL
		if !strings.Contains(strings.ToUpper(sql), "DISTINCT") {
			continue
		}

		selectClause, ok := sqltext.ExtractSelectClause(sql)
		tables := sqltext.ExtractTableNames(sql)
		if !ok || len(tables) == 0 {
			continue
		}
		if !distinctUnnecessary(ctx, checkCtx, selectClause, tables) {
			continue
		}

		parts := strings.Split(selectClause, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingUnnecessaryDistinct,
			Query:      sql,
			Suggestion: suggest.RemoveDistinct(parts),
			Level:      level,
		})
	}
	return findings, nil
}

// distinctUnnecessary decides whether DISTINCT adds anything: it
// collects the normalized primary key and unique field names of every
// referenced table, drops the DISTINCT marker from the projection when
// it targets one of them, and reports true when every remaining
// selected column is in that unique set.
func distinctUnnecessary(ctx context.Context, checkCtx detector.Context, selectClause string, tables []string) bool {
	if selectClause == "" || len(tables) == 0 {
		return false
	}

	uniqueSet := map[string]bool{}
	for _, table := range tables {
		for _, pk := range schema.FilterPrimaryKeys(tablePrimaryKeys(ctx, checkCtx, table)) {
			uniqueSet[sqltext.NormalizeIdentifier(pk)] = true
		}
		for _, field := range tableUniqueFields(ctx, checkCtx, table) {
			uniqueSet[sqltext.NormalizeIdentifier(field)] = true
		}
	}

	if m := distinctOnRe.FindStringSubmatch(selectClause); m != nil {
		if uniqueSet[sqltext.NormalizeIdentifier(m[1])] {
			selectClause = strings.Trim(strings.ReplaceAll(selectClause, m[0], ""), ",")
		}
	} else if m := distinctRe.FindString(selectClause); m != "" {
		selectClause = strings.TrimSpace(strings.ReplaceAll(selectClause, m, ""))
	}

	for _, col := range strings.Split(selectClause, ",") {
		if col == "" {
			continue
		}
		if !uniqueSet[sqltext.NormalizeIdentifier(col)] {
			return false
		}
	}
	return true
}

func tablePrimaryKeys(ctx context.Context, checkCtx detector.Context, table string) []string {
	primaryKeys, err := checkCtx.Facts.PrimaryKeys(ctx, table)
	if err != nil {
		slog.Warn("Primary key lookup failed", "table", table, "error", err)
		return nil
	}
	return primaryKeys
}

func tableUniqueFields(ctx context.Context, checkCtx detector.Context, table string) []string {
	uniqueFields, err := checkCtx.Facts.UniqueFields(ctx, table)
	if err != nil {
		slog.Warn("Unique field lookup failed", "table", table, "error", err)
		return nil
	}
	return uniqueFields
}
