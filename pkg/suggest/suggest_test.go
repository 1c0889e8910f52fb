package suggest

import (
	"testing"

	"github.com/nsxbet/query-inspector/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Run("interpolates the finding suggestion", func(t *testing.T) {
		out := Format(&types.Finding{
			Type:       types.FindingSlowQuery,
			Suggestion: "Consider caching this query if the result doesn't change frequently.",
		})
		assert.Contains(t, out, "**Slow Query Detected**")
		assert.Contains(t, out, "✅ **Recommendation**: Consider caching this query")
		assert.NotContains(t, out, "{suggestion}")
	})

	t.Run("empty suggestion renders the placeholder default", func(t *testing.T) {
		out := Format(&types.Finding{Type: types.FindingMissingLimit})
		assert.Contains(t, out, "✅ **Recommendation**: No suggestion available")
	})

	t.Run("unknown type renders the fallback", func(t *testing.T) {
		out := Format(&types.Finding{Type: "Something Else"})
		assert.Equal(t, "No suggestion available.", out)
	})

	t.Run("order by findings render the fallback", func(t *testing.T) {
		out := Format(&types.Finding{
			Type:       types.FindingMissingIndexOrderBy,
			Suggestion: "CREATE INDEX idx_users_created_at ON users(created_at);",
		})
		assert.Equal(t, "No suggestion available.", out)
	})

	t.Run("cross join and explicit lock variants render the fallback", func(t *testing.T) {
		assert.Equal(t, "No suggestion available.", Format(&types.Finding{Type: types.FindingCartesianCrossJoin}))
		assert.Equal(t, "No suggestion available.", Format(&types.Finding{Type: types.FindingExplicitLock}))
	})
}

func TestSlowQuery(t *testing.T) {
	t.Run("plain query gets caching advice only", func(t *testing.T) {
		out := SlowQuery("SELECT id FROM users")
		assert.Equal(t, "Consider caching this query if the result doesn't change frequently.", out)
	})

	t.Run("join and select star stack advice", func(t *testing.T) {
		out := SlowQuery("SELECT * FROM users JOIN orders ON (users.id = orders.user_id)")
		assert.Contains(t, out, "JOIN conditions")
		assert.Contains(t, out, "Avoid using SELECT *")
		assert.Contains(t, out, "Consider caching this query")
	})
}

func TestDuplicateQuery(t *testing.T) {
	assert.Equal(t, "", DuplicateQuery(1))
	assert.Contains(t, DuplicateQuery(2), "caching the result")
}

func TestRemoveDistinct(t *testing.T) {
	out := RemoveDistinct([]string{"id", "email"})
	assert.Contains(t, out, "The selected fields (id, email) are unique")
}

func TestSubqueryAlternative(t *testing.T) {
	t.Run("correlated subquery suggests join rewrite", func(t *testing.T) {
		out := SubqueryAlternative("SELECT * FROM t WHERE id IN (SELECT id FROM u)")
		assert.Contains(t, out, "replacing the correlated subquery with a JOIN")
	})

	t.Run("repeated subqueries suggest a CTE", func(t *testing.T) {
		out := SubqueryAlternative("SELECT (SELECT 1), (SELECT 2) FROM t")
		assert.Contains(t, out, "CTE")
	})

	t.Run("otherwise generic advice", func(t *testing.T) {
		out := SubqueryAlternative("SELECT a, (SELECT MAX(b) FROM u) FROM t")
		assert.Contains(t, out, "JOINs or CTEs to replace subqueries")
	})
}

func TestCartesianAlternative(t *testing.T) {
	assert.Contains(t, CartesianAlternative("SELECT * FROM a CROSS JOIN b"), "CROSS JOIN results in a Cartesian product")
	assert.Contains(t, CartesianAlternative("SELECT * FROM a JOIN b"), "JOIN without an ON condition")
}

func TestExecutionTimeFormatting(t *testing.T) {
	assert.Contains(t, AvoidLocks(6.5), "6.50 seconds")
	assert.Contains(t, TransactionScope(7.25), "7.25 seconds")
}
