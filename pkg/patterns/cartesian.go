package patterns

import (
	"context"
	"regexp"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*CartesianProductDetector)(nil)

func init() {
	detector.Register(types.FindingCartesianJoin, &CartesianProductDetector{})
}

var (
	joinTableRe = regexp.MustCompile(`(?i)\bJOIN\s+\w+`)
	nextWordRe  = regexp.MustCompile(`^\s*([A-Za-z]+)`)
)

// CartesianProductDetector flags joins that multiply row counts: a JOIN
// whose table is not immediately followed by ON or USING, and explicit
// CROSS JOINs. A CROSS JOIN statement trips both checks.
type CartesianProductDetector struct{}

func (*CartesianProductDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		sql := record.SQL
		if hasBareJoin(sql) {
			findings = append(findings, &types.Finding{
				Type:       types.FindingCartesianJoin,
				Query:      sql,
				Suggestion: suggest.CartesianAlternative(sql),
				Level:      level,
			})
		}
		if strings.Contains(strings.ToUpper(sql), "CROSS JOIN") {
			findings = append(findings, &types.Finding{
				Type:       types.FindingCartesianCrossJoin,
				Query:      sql,
				Suggestion: suggest.CartesianAlternative(sql),
				Level:      level,
			})
		}
	}
	return findings, nil
}

// hasBareJoin reports whether any JOIN in the statement lacks a join
// condition, judged by the word token that follows the joined table.
func hasBareJoin(sql string) bool {
	for _, loc := range joinTableRe.FindAllStringIndex(sql, -1) {
		m := nextWordRe.FindStringSubmatch(sql[loc[1]:])
		if m == nil {
			return true
		}
		switch strings.ToUpper(m[1]) {
		case "ON", "USING":
		default:
			return true
		}
	}
	return false
}
