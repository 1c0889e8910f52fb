package patterns

import (
	"context"
	"log/slog"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*MissingIndexJoinDetector)(nil)

func init() {
	detector.Register(types.FindingMissingIndexJoin, &MissingIndexJoinDetector{})
}

// MissingIndexJoinDetector flags JOIN conditions whose foreign key
// columns no index covers.
type MissingIndexJoinDetector struct{}

func (*MissingIndexJoinDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}
	if checkCtx.Facts == nil {
		return nil, nil
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		joins := sqltext.ExtractJoins(record.SQL)
		tables := sqltext.ExtractTableNames(record.SQL)
		if len(joins) == 0 || len(tables) == 0 {
			continue
		}

		for _, join := range joins {
			foreignKeyColumns, referencedColumns, err := join.KeyColumns()
			if err != nil {
				slog.Error("Error processing inefficiency on JOIN clause", "error", err)
				continue
			}
			if len(foreignKeyColumns) == 0 || len(referencedColumns) == 0 {
				continue
			}
			findings = append(findings, missingIndexFindings(ctx, checkCtx, level, record,
				tables, foreignKeyColumns, "JOIN", types.FindingMissingIndexJoin)...)
		}
	}
	return findings, nil
}
