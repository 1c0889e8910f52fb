// Package detector defines the detector interface and the registry
// that maps finding types to their implementations.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/query-inspector/pkg/config"
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// EventLevelByDetectorLevel returns the level findings carry for a
// rule configured at the given level.
func EventLevelByDetectorLevel(level types.DetectorLevel) (types.EventLevel, error) {
	switch level {
	case types.DetectorLevel_INFO:
		return types.EventLevel_INFO, nil
	case types.DetectorLevel_WARNING:
		return types.EventLevel_WARNING, nil
	case types.DetectorLevel_TIP:
		return types.EventLevel_TIP, nil
	case types.DetectorLevel_SUGGESTION:
		return types.EventLevel_SUGGESTION, nil
	case types.DetectorLevel_ERROR:
		return types.EventLevel_ERROR, nil
	}
	return types.EventLevel_LEVEL_UNSPECIFIED, errors.Errorf("unexpected rule level type: %v", level)
}

// Context carries everything a detector may consult while checking a
// batch of queries.
type Context struct {
	// Engine selects vendor-specific behavior such as plan
	// classification.
	Engine types.Engine

	// Records is the query batch under analysis, in capture order.
	Records []*types.QueryRecord

	// Facts answers schema questions. It may be nil, in which case
	// detectors that need the catalog produce no findings.
	Facts schema.Facts

	// Thresholds holds the numeric tunables.
	Thresholds config.Thresholds

	// Rule is the configuration entry that enabled this detector.
	Rule *types.DetectorRule
}

// Detector is the interface each anti-pattern check implements.
type Detector interface {
	Check(ctx context.Context, checkCtx Context) ([]*types.Finding, error)
}

var (
	detectorMu sync.RWMutex
	detectors  = make(map[types.FindingType]Detector)
)

// Register makes a detector available under the given finding type.
// If Register is called twice with the same type or if detector is
// nil, it panics.
func Register(findingType types.FindingType, d Detector) {
	detectorMu.Lock()
	defer detectorMu.Unlock()
	if d == nil {
		panic("detector: Register detector is nil")
	}
	if _, dup := detectors[findingType]; dup {
		panic(fmt.Sprintf("detector: Register called twice for detector %v", findingType))
	}
	detectors[findingType] = d
}

// Check runs the detector registered for the finding type and returns
// its findings.
func Check(ctx context.Context, findingType types.FindingType, checkCtx Context) (findings []*types.Finding, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panicErr, ok := panicErr.(error)
			if !ok {
				panicErr = errors.Errorf("%v", panicErr)
			}
			err = errors.Errorf("detector check PANIC RECOVER, type: %v, err: %v", findingType, panicErr)
			slog.Error("detector check PANIC RECOVER", "error", panicErr)
		}
	}()

	detectorMu.RLock()
	d, ok := detectors[findingType]
	defer detectorMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("detector: unknown detector %v", findingType)
	}

	return d.Check(ctx, checkCtx)
}
