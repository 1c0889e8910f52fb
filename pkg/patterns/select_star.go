package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*SelectStarDetector)(nil)

func init() {
	detector.Register(types.FindingSelectStar, &SelectStarDetector{})
}

// SelectStarDetector flags SELECT * statements, which fetch every
// column whether or not the caller needs it.
type SelectStarDetector struct{}

func (*SelectStarDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		if !strings.Contains(record.SQL, "SELECT *") {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingSelectStar,
			Query:      record.SQL,
			Suggestion: suggest.SpecificColumns(),
			Level:      level,
		})
	}
	return findings, nil
}
