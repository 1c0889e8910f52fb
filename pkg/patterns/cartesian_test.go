package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

func TestCartesianProductDetector(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantTypes []types.FindingType
	}{
		{
			name:      "join without condition",
			sql:       "SELECT * FROM orders JOIN users WHERE orders.user_id = users.id",
			wantTypes: []types.FindingType{types.FindingCartesianJoin},
		},
		{
			name: "cross join trips both checks",
			sql:  "SELECT * FROM orders CROSS JOIN users",
			wantTypes: []types.FindingType{
				types.FindingCartesianJoin,
				types.FindingCartesianCrossJoin,
			},
		},
		{
			name:      "join with on condition passes",
			sql:       "SELECT * FROM orders JOIN users ON orders.user_id = users.id",
			wantTypes: nil,
		},
		{
			name:      "join with using condition passes",
			sql:       "SELECT * FROM orders JOIN users USING (user_id)",
			wantTypes: nil,
		},
		{
			name:      "implicit comma join is not matched",
			sql:       "SELECT * FROM orders, users",
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := runCheck(t, types.FindingCartesianJoin,
				testContext(types.FindingCartesianJoin, testRecords(tt.sql)))
			require.Len(t, findings, len(tt.wantTypes))
			for i, wantType := range tt.wantTypes {
				assert.Equal(t, wantType, findings[i].Type)
				assert.Equal(t, tt.sql, findings[i].Query)
				assert.Equal(t, suggest.CartesianAlternative(tt.sql), findings[i].Suggestion)
			}
		})
	}
}
