package patterns

import (
	"context"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*SlowQueryDetector)(nil)

func init() {
	detector.Register(types.FindingSlowQuery, &SlowQueryDetector{})
}

// SlowQueryDetector flags queries whose execution time exceeds the
// configured threshold.
type SlowQueryDetector struct{}

func (*SlowQueryDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		seconds, ok := recordSeconds(record)
		if !ok {
			continue
		}
		if seconds > checkCtx.Thresholds.SlowQuerySeconds {
			findings = append(findings, &types.Finding{
				Type:       types.FindingSlowQuery,
				Query:      record.SQL,
				Time:       seconds,
				Suggestion: suggest.SlowQuery(record.SQL),
				Level:      level,
			})
		}
	}
	return findings, nil
}
