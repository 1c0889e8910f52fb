package patterns

import (
	"context"
	"regexp"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*NonSargableDetector)(nil)

func init() {
	detector.Register(types.FindingNonSargable, &NonSargableDetector{})
}

var nonSargableRe = regexp.MustCompile(`(?i)WHERE\s+.*\b(FUNCTION|EXPRESSION)\(.*\)`)

// NonSargableDetector flags WHERE clauses that wrap a column in a
// function or expression call, which keeps the planner from using an
// index on that column.
type NonSargableDetector struct{}

func (*NonSargableDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !nonSargableRe.MatchString(record.SQL) {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingNonSargable,
			Query:      record.SQL,
			Suggestion: suggest.Sargable(),
			Level:      level,
		})
	}
	return findings, nil
}
