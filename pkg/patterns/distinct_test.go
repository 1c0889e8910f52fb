package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func TestUnnecessaryDistinctDetector(t *testing.T) {
	tests := []struct {
		name           string
		sql            string
		wantFindings   int
		wantSuggestion string
	}{
		{
			name:         "distinct over the primary key",
			sql:          "SELECT DISTINCT id FROM users",
			wantFindings: 1,
			wantSuggestion: "The DISTINCT clause in this query may be unnecessary. " +
				"The selected fields (DISTINCT id) are unique, so the DISTINCT clause may be redundant. " +
				"Consider removing DISTINCT to simplify the query and improve performance.",
		},
		{
			name:         "distinct over a qualified unique field",
			sql:          "SELECT DISTINCT u.email FROM users u",
			wantFindings: 1,
			wantSuggestion: "The DISTINCT clause in this query may be unnecessary. " +
				"The selected fields (DISTINCT u.email) are unique, so the DISTINCT clause may be redundant. " +
				"Consider removing DISTINCT to simplify the query and improve performance.",
		},
		{
			name:         "distinct on over the primary key",
			sql:          "SELECT DISTINCT ON (id) id, email FROM users",
			wantFindings: 1,
			wantSuggestion: "The DISTINCT clause in this query may be unnecessary. " +
				"The selected fields (DISTINCT ON  id, email) are unique, so the DISTINCT clause may be redundant. " +
				"Consider removing DISTINCT to simplify the query and improve performance.",
		},
		{
			name:         "distinct over a non-unique column",
			sql:          "SELECT DISTINCT name FROM users",
			wantFindings: 0,
		},
		{
			name:         "distinct on over a non-unique column",
			sql:          "SELECT DISTINCT ON (name) name, id FROM users",
			wantFindings: 0,
		},
		{
			name:         "mixed projection keeps distinct",
			sql:          "SELECT DISTINCT id, name FROM users",
			wantFindings: 0,
		},
		{
			name:         "table without unique columns keeps distinct",
			sql:          "SELECT DISTINCT key FROM settings",
			wantFindings: 0,
		},
		{
			name:         "statement without distinct passes",
			sql:          "SELECT id FROM users",
			wantFindings: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := runCheck(t, types.FindingUnnecessaryDistinct,
				missingIndexContext(types.FindingUnnecessaryDistinct, shopFacts(), tt.sql))
			require.Len(t, findings, tt.wantFindings)
			if tt.wantFindings == 0 {
				return
			}

			assert.Equal(t, types.FindingUnnecessaryDistinct, findings[0].Type)
			assert.Equal(t, tt.sql, findings[0].Query)
			assert.Equal(t, tt.wantSuggestion, findings[0].Suggestion)
		})
	}
}

func TestUnnecessaryDistinctDetectorNeedsFacts(t *testing.T) {
	findings := runCheck(t, types.FindingUnnecessaryDistinct,
		testContext(types.FindingUnnecessaryDistinct, testRecords("SELECT DISTINCT id FROM users")))
	require.Empty(t, findings)
}
