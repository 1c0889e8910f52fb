package patterns

import (
	"context"
	"log/slog"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*MissingIndexOrderByDetector)(nil)

func init() {
	detector.Register(types.FindingMissingIndexOrderBy, &MissingIndexOrderByDetector{})
}

// MissingIndexOrderByDetector flags ORDER BY clauses whose columns no
// index covers, since sorting those forces a full sort step.
type MissingIndexOrderByDetector struct{}

func (*MissingIndexOrderByDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}
	if checkCtx.Facts == nil {
		return nil, nil
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		tables := sqltext.ExtractTableNames(record.SQL)
		orderByColumns, err := sqltext.ExtractOrderByColumns(record.SQL)
		if err != nil {
			slog.Error("Error extracting ORDER BY columns", "error", err)
			continue
		}
		if len(orderByColumns) == 0 || len(tables) == 0 {
			continue
		}
		findings = append(findings, missingIndexFindings(ctx, checkCtx, level, record,
			tables, orderByColumns, "ORDER BY", types.FindingMissingIndexOrderBy)...)
	}
	return findings, nil
}
