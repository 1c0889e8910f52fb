package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*MissingLimitDetector)(nil)

func init() {
	detector.Register(types.FindingMissingLimit, &MissingLimitDetector{})
}

// MissingLimitDetector flags SELECT statements with no LIMIT clause.
type MissingLimitDetector struct{}

func (*MissingLimitDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !strings.Contains(record.SQL, "SELECT") || strings.Contains(record.SQL, "LIMIT") {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingMissingLimit,
			Query:      record.SQL,
			Suggestion: suggest.AddLimit(),
			Level:      level,
		})
	}
	return findings, nil
}
