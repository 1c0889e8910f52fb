package patterns

import (
	"context"
	"log/slog"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*MissingIndexAggregateDetector)(nil)

func init() {
	detector.Register(types.FindingMissingIndexAggregate, &MissingIndexAggregateDetector{})
}

// MissingIndexAggregateDetector flags aggregate function arguments
// over columns that no index covers.
type MissingIndexAggregateDetector struct{}

func (*MissingIndexAggregateDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
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
		aggregateColumns, err := sqltext.ExtractAggregateColumns(record.SQL)
		if err != nil {
			slog.Error("Error extracting aggregate columns", "error", err)
			continue
		}
		if len(aggregateColumns) == 0 || len(tables) == 0 {
			continue
		}
		findings = append(findings, missingIndexFindings(ctx, checkCtx, level, record,
			tables, aggregateColumns, "AGGREGATE", types.FindingMissingIndexAggregate)...)
	}
	return findings, nil
}
