package patterns

import (
	"context"
	"regexp"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*SubqueryOveruseDetector)(nil)

func init() {
	detector.Register(types.FindingSubqueryOveruse, &SubqueryOveruseDetector{})
}

var subqueryRe = regexp.MustCompile(`(?i)\(SELECT .* FROM`)

// SubqueryOveruseDetector flags nested SELECTs that a JOIN or CTE
// would usually serve better.
type SubqueryOveruseDetector struct{}

func (*SubqueryOveruseDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !subqueryRe.MatchString(record.SQL) {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingSubqueryOveruse,
			Query:      record.SQL,
			Suggestion: suggest.SubqueryAlternative(record.SQL),
			Level:      level,
		})
	}
	return findings, nil
}
