package patterns

import (
	"context"
	"regexp"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/sqltext"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*NPlusOneDetector)(nil)

func init() {
	detector.Register(types.FindingNPlusOne, &NPlusOneDetector{})
}

var (
	transactionControlRe = regexp.MustCompile(`(?i)\b(BEGIN|COMMIT|ROLLBACK)\b`)
	bulkWriteRe          = regexp.MustCompile(`(?i)\b(INSERT INTO|UPDATE)\b.*?\bVALUES\b`)
)

// NPlusOneDetector flags batches of structurally identical SELECTs on
// related rows issued one-by-one instead of through a JOIN.
type NPlusOneDetector struct{}

// Check groups filtered SELECTs by their normalized shape and flags
// every shape that repeats without a JOIN in sight.
func (*NPlusOneDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	type group struct {
		count  int
		rawSQL string
	}
	seen := map[string]*group{}
	var order []string

	for _, record := range checkCtx.Records {
		sql := record.SQL

		// Transaction control and bulk writes repeat legitimately.
		if transactionControlRe.MatchString(sql) || bulkWriteRe.MatchString(sql) {
			continue
		}
		if !strings.Contains(sql, "SELECT") || !strings.Contains(sql, "WHERE") {
			continue
		}

		normalized := sqltext.NormalizeQuery(sql)
		if g, ok := seen[normalized]; ok {
			g.count++
			continue
		}
		seen[normalized] = &group{count: 1, rawSQL: sql}
		order = append(order, normalized)
	}

	var findings []*types.Finding
	for _, key := range order {
		g := seen[key]
		if g.count <= 1 {
			continue
		}

		raw := g.rawSQL
		if strings.Contains(raw, "JOIN") || !strings.Contains(raw, "SELECT") || !strings.Contains(raw, "WHERE") {
			continue
		}

		suggestion := "Consider using prefetch_related to optimize this query."
		if strings.Contains(raw, "LIMIT") {
			suggestion = "Consider using select_related to optimize this query."
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingNPlusOne,
			Query:      raw,
			Count:      g.count,
			Suggestion: suggestion,
			Level:      level,
		})
	}

	return findings, nil
}
