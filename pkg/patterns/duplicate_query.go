package patterns

import (
	"context"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*DuplicateQueryDetector)(nil)

func init() {
	detector.Register(types.FindingDuplicateQuery, &DuplicateQueryDetector{})
}

// DuplicateQueryDetector flags statements submitted more than once in a
// batch. Every repeat past the first produces a finding carrying the
// running occurrence count.
type DuplicateQueryDetector struct{}

func (*DuplicateQueryDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	counts := make(map[string]int)
	for _, record := range checkCtx.Records {
		counts[record.SQL]++
		if counts[record.SQL] < 2 {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingDuplicateQuery,
			Query:      record.SQL,
			Count:      counts[record.SQL],
			Suggestion: suggest.DuplicateQuery(counts[record.SQL]),
			Level:      level,
		})
	}
	return findings, nil
}
