package patterns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/config"
	"github.com/nsxbet/query-inspector/pkg/detector"
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// testThresholds are deliberately tight so fixtures stay small.
func testThresholds() config.Thresholds {
	return config.Thresholds{
		SlowQuerySeconds:   1.0,
		OffsetThreshold:    1000,
		LockSeconds:        2.0,
		TransactionSeconds: 5.0,
		SmallTableRows:     100,
	}
}

func testRecords(sqls ...string) []*types.QueryRecord {
	records := make([]*types.QueryRecord, 0, len(sqls))
	for _, sql := range sqls {
		records = append(records, &types.QueryRecord{SQL: sql, Time: "0.01"})
	}
	return records
}

func testContext(findingType types.FindingType, records []*types.QueryRecord) detector.Context {
	return detector.Context{
		Engine:     types.Engine_POSTGRES,
		Records:    records,
		Thresholds: testThresholds(),
		Rule:       &types.DetectorRule{Type: findingType, Level: types.DetectorLevel_WARNING},
	}
}

func runCheck(t *testing.T, findingType types.FindingType, checkCtx detector.Context) []*types.Finding {
	t.Helper()
	findings, err := detector.Check(context.Background(), findingType, checkCtx)
	require.NoError(t, err)
	return findings
}

// shopFacts is the catalog the index and DISTINCT tests share: a large
// indexed users table, a large orders table with a composite index, and
// a tiny settings table.
func shopFacts() schema.Facts {
	return schema.NewStaticFacts(&schema.Snapshot{
		Tables: []*types.TableMetadata{
			{
				Name:     "users",
				RowCount: 50000,
				Columns: []*types.ColumnMetadata{
					{Name: "id", Type: "bigint"},
					{Name: "email", Type: "text", Indexed: true},
					{Name: "name", Type: "text"},
					{Name: "status", Type: "text"},
				},
				Indexes: []*types.IndexMetadata{
					{Name: "users_pkey", Expressions: []string{"id"}, Primary: true, Unique: true},
					{Name: "idx_users_email", Expressions: []string{"email"}, Unique: true},
				},
			},
			{
				Name:     "orders",
				RowCount: 80000,
				Columns: []*types.ColumnMetadata{
					{Name: "id", Type: "bigint"},
					{Name: "user_id", Type: "bigint"},
					{Name: "status", Type: "text"},
					{Name: "created_at", Type: "timestamptz"},
				},
				Indexes: []*types.IndexMetadata{
					{Name: "orders_pkey", Expressions: []string{"id"}, Primary: true, Unique: true},
					{Name: "idx_orders_status_created", Expressions: []string{"status", "created_at"}},
				},
			},
			{
				Name:     "settings",
				RowCount: 12,
				Columns: []*types.ColumnMetadata{
					{Name: "key", Type: "text"},
					{Name: "value", Type: "text"},
				},
			},
		},
	})
}

// TestEveryDetectorRegistered checks that importing the package wires up
// one detector per configurable finding type.
func TestEveryDetectorRegistered(t *testing.T) {
	findingTypes := []types.FindingType{
		types.FindingNPlusOne,
		types.FindingMissingIndexWhere,
		types.FindingMissingIndexJoin,
		types.FindingMissingIndexOrderBy,
		types.FindingMissingIndexAggregate,
		types.FindingUnnecessaryDistinct,
		types.FindingSubqueryOveruse,
		types.FindingCartesianJoin,
		types.FindingSlowQuery,
		types.FindingDuplicateQuery,
		types.FindingMissingLimit,
		types.FindingFullTableScan,
		types.FindingSelectStar,
		types.FindingInefficientPagination,
		types.FindingNonSargable,
		types.FindingLockingIssue,
		types.FindingTransactionOveruse,
	}

	for _, findingType := range findingTypes {
		t.Run(string(findingType), func(t *testing.T) {
			findings, err := detector.Check(context.Background(), findingType, testContext(findingType, nil))
			require.NoError(t, err, "registered detector should accept an empty batch")
			require.Empty(t, findings, "empty batch should produce no findings")
		})
	}
}
