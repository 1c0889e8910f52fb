package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*MissingIndexWhereDetector)(nil)

func init() {
	detector.Register(types.FindingMissingIndexWhere, &MissingIndexWhereDetector{})
}

// MissingIndexWhereDetector flags equality filters over columns that
// no index covers.
type MissingIndexWhereDetector struct{}

func (*MissingIndexWhereDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}
	if checkCtx.Facts == nil {
		return nil, nil
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !strings.Contains(record.SQL, "WHERE") {
			continue
		}
		tables, columns := sqltext.ExtractTableAndWhereColumns(record.SQL)
		findings = append(findings, missingIndexFindings(ctx, checkCtx, level, record,
			tables, columns, "WHERE", types.FindingMissingIndexWhere)...)
	}
	return findings, nil
}
