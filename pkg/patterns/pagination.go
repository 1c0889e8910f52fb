package patterns

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*InefficientPaginationDetector)(nil)

func init() {
	detector.Register(types.FindingInefficientPagination, &InefficientPaginationDetector{})
}

var offsetRe = regexp.MustCompile(`(?i)OFFSET\s+(\d+)`)

// InefficientPaginationDetector flags LIMIT/OFFSET pagination with a
// large offset. The database still scans and discards every skipped
// row, so page cost grows with page number.
type InefficientPaginationDetector struct{}

func (*InefficientPaginationDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		sql := record.SQL
		if !strings.Contains(sql, "LIMIT") || !strings.Contains(sql, "OFFSET") {
			continue
		}
		m := offsetRe.FindStringSubmatch(sql)
		if m == nil {
			continue
		}
		// Atoi clamps out-of-range values, which still compare high.
		offset, _ := strconv.Atoi(m[1])
		if offset <= checkCtx.Thresholds.OffsetThreshold {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:       types.FindingInefficientPagination,
			Query:      sql,
			Suggestion: suggest.KeysetPagination(),
			Level:      level,
		})
	}
	return findings, nil
}
