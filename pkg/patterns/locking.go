package patterns

import (
	"context"
	"strings"

	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

var _ detector.Detector = (*LockingDetector)(nil)

func init() {
	detector.Register(types.FindingLockingIssue, &LockingDetector{})
}

// LockingDetector flags queries likely to hold locks too long: any
// query running past the lock threshold, and any statement taking an
// explicit lock. The two checks are independent, so one statement can
// produce both findings.
type LockingDetector struct{}

func (*LockingDetector) Check(_ context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
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
		if seconds > checkCtx.Thresholds.LockSeconds {
			findings = append(findings, &types.Finding{
				Type:          types.FindingLockingIssue,
				Query:         record.SQL,
				ExecutionTime: seconds,
				Suggestion:    suggest.AvoidLocks(seconds),
				Level:         level,
			})
		}
		if strings.Contains(strings.ToUpper(record.SQL), "LOCK") {
			findings = append(findings, &types.Finding{
				Type:       types.FindingExplicitLock,
				Query:      record.SQL,
				Suggestion: suggest.LockOptimization(),
				Level:      level,
			})
		}
	}
	return findings, nil
}
