package config

import (
	"github.com/nsxbet/query-inspector/pkg/types"
)

// DefaultThresholds returns the built-in detector tunables.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowQuerySeconds:   0.5,
		OffsetThreshold:    500,
		LockSeconds:        5.0,
		TransactionSeconds: 5.0,
		SmallTableRows:     100,
	}
}

// DefaultDetectors returns the full detector catalog in evaluation order.
// The cartesian-product detector also emits the CROSS JOIN variant and the
// locking detector also emits explicit-lock findings; both run under their
// primary type's rule.
func DefaultDetectors() []*types.DetectorRule {
	return []*types.DetectorRule{
		{Type: types.FindingNPlusOne, Level: types.DetectorLevel_TIP},
		{Type: types.FindingMissingIndexWhere, Level: types.DetectorLevel_TIP},
		{Type: types.FindingMissingIndexJoin, Level: types.DetectorLevel_TIP},
		{Type: types.FindingMissingIndexOrderBy, Level: types.DetectorLevel_TIP},
		{Type: types.FindingMissingIndexAggregate, Level: types.DetectorLevel_TIP},
		{Type: types.FindingUnnecessaryDistinct, Level: types.DetectorLevel_TIP},
		{Type: types.FindingSubqueryOveruse, Level: types.DetectorLevel_TIP},
		{Type: types.FindingCartesianJoin, Level: types.DetectorLevel_TIP},
		{Type: types.FindingSlowQuery, Level: types.DetectorLevel_TIP},
		{Type: types.FindingDuplicateQuery, Level: types.DetectorLevel_TIP},
		{Type: types.FindingMissingLimit, Level: types.DetectorLevel_TIP},
		{Type: types.FindingFullTableScan, Level: types.DetectorLevel_TIP},
		{Type: types.FindingSelectStar, Level: types.DetectorLevel_TIP},
		{Type: types.FindingInefficientPagination, Level: types.DetectorLevel_TIP},
		{Type: types.FindingNonSargable, Level: types.DetectorLevel_TIP},
		{Type: types.FindingLockingIssue, Level: types.DetectorLevel_TIP},
		{Type: types.FindingTransactionOveruse, Level: types.DetectorLevel_TIP},
	}
}
