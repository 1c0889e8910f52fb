package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*FullTableScanDetector)(nil)

func init() {
	detector.Register(types.FindingFullTableScan, &FullTableScanDetector{})
}

// FullTableScanDetector flags SELECT statements with no WHERE clause,
// which read every row of the table.
type FullTableScanDetector struct{}

func (*FullTableScanDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !strings.Contains(record.SQL, "SELECT") || strings.Contains(record.SQL, "WHERE") {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingFullTableScan,
			Query:      record.SQL,
			Suggestion: suggest.AddWhere(),
			Level:      level,
		})
	}
	return findings, nil
}
