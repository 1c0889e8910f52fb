package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*TransactionOveruseDetector)(nil)

func init() {
	detector.Register(types.FindingTransactionOveruse, &TransactionOveruseDetector{})
}

// TransactionOveruseDetector flags transactions held open past the
// configured threshold. Only statements carrying both BEGIN and COMMIT
// are considered, since those delimit a full transaction in one record.
type TransactionOveruseDetector struct{}

func (*TransactionOveruseDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
	level, err := detector.EventLevelByDetectorLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	var findings []*types.Finding
	for _, record := range checkCtx.Records {
		upper := strings.ToUpper(record.SQL)
		if !strings.Contains(upper, "BEGIN") || !strings.Contains(upper, "COMMIT") {
			continue
		}
		seconds, ok := recordSeconds(record)
		if !ok {
			continue
		}
		if seconds <= checkCtx.Thresholds.TransactionSeconds {
			continue
		}
		findings = append(findings, &types.Finding{
			Type:          types.FindingTransactionOveruse,
			Query:         record.SQL,
			ExecutionTime: seconds,
			Suggestion:    suggest.TransactionScope(seconds),
			Level:         level,
		})
	}
	return findings, nil
}
