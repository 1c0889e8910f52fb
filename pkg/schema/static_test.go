package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Tables: []*types.TableMetadata{
			{
				Name:     "users",
				RowCount: 5000,
				Columns: []*types.ColumnMetadata{
					{Name: "id", Type: "bigint"},
					{Name: "email", Type: "text", Indexed: true},
					{Name: "name", Type: "text"},
					{Name: "status", Type: "text"},
				},
				Indexes: []*types.IndexMetadata{
					{Name: "users_pkey", Expressions: []string{"id"}, Unique: true, Primary: true},
					{Name: "idx_users_email", Expressions: []string{"email"}, Unique: true},
					{Name: "idx_users_name_status", Expressions: []string{"name", "status"}},
				},
			},
			{
				Name:     "settings",
				RowCount: 12,
			},
		},
		Plans: map[string][]string{
			"SELECT * FROM users WHERE name = 'x'": {"Seq Scan on users"},
		},
	}
}

func TestStaticFactsRowCount(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	count, err := facts.EstimatedRowCount(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), count)

	count, err = facts.EstimatedRowCount(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	_, err = facts.EstimatedRowCount(ctx, "missing")
	assert.Error(t, err)
}

func TestStaticFactsAcceptsQuotedAndQualifiedNames(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	count, err := facts.EstimatedRowCount(ctx, `"users"`)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), count)

	count, err = facts.EstimatedRowCount(ctx, "public.users")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), count)
}

func TestStaticFactsIsColumnIndexed(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{name: "flagged column", columns: []string{"email"}, want: true},
		{name: "leading column of a composite index", columns: []string{"name"}, want: true},
		{name: "trailing column of a composite index", columns: []string{"status"}, want: false},
		{name: "quoted qualified column", columns: []string{`"users"."email"`}, want: true},
		{name: "unknown column", columns: []string{"nickname"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexed, err := facts.IsColumnIndexed(ctx, "users", tt.columns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indexed)
		})
	}
}

func TestStaticFactsHasCompositeIndex(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	has, err := facts.HasCompositeIndex(ctx, "users", []string{"name", "status"})
	require.NoError(t, err)
	assert.True(t, has)

	// Matching is a set comparison, so column order does not matter.
	has, err = facts.HasCompositeIndex(ctx, "users", []string{"status", "name"})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = facts.HasCompositeIndex(ctx, "users", []string{"email", "name"})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStaticFactsKeysAndUniqueFields(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	primaryKeys, err := facts.PrimaryKeys(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, primaryKeys)

	unique, err := facts.UniqueFields(ctx, "users")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id", "email"}, unique)
}

func TestStaticFactsExplain(t *testing.T) {
	facts := NewStaticFacts(testSnapshot())
	ctx := context.Background()

	plan, err := facts.Explain(ctx, "SELECT * FROM users WHERE name = 'x'")
	require.NoError(t, err)
	assert.Equal(t, []string{"Seq Scan on users"}, plan)

	_, err = facts.Explain(ctx, "SELECT * FROM users")
	assert.Error(t, err)
}

func TestLoadSnapshotYAML(t *testing.T) {
	content := `
tables:
  - name: users
    rowCount: 250
    columns:
      - name: email
        indexed: true
    indexes:
      - name: users_pkey
        expressions: [id]
        unique: true
        primary: true
plans:
  "SELECT * FROM users": ["Seq Scan on users"]
`
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Tables, 1)
	assert.Equal(t, "users", snap.Tables[0].Name)
	assert.Equal(t, int64(250), snap.Tables[0].RowCount)
	require.Len(t, snap.Tables[0].Indexes, 1)
	assert.True(t, snap.Tables[0].Indexes[0].Primary)
	assert.Equal(t, []string{"Seq Scan on users"}, snap.Plans["SELECT * FROM users"])
}

func TestLoadSnapshotJSON(t *testing.T) {
	content := `{"tables":[{"name":"orders","rowCount":9000}]}`
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Tables, 1)
	assert.Equal(t, "orders", snap.Tables[0].Name)
	assert.Equal(t, int64(9000), snap.Tables[0].RowCount)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
