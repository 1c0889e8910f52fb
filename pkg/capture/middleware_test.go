package capture

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/events"
	"github.com/nsxbet/query-inspector/pkg/inspector"
	"github.com/nsxbet/query-inspector/pkg/types"
)

func serve(t *testing.T, m *Middleware, path string, handler http.HandlerFunc) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	m.Handler(handler).ServeHTTP(rec, req)
}

func TestMiddlewareReportsFindings(t *testing.T) {
	sink := &events.Collector{}
	m := NewMiddleware(inspector.New(types.Engine_POSTGRES), sink)

	serve(t, m, "/orders", func(w http.ResponseWriter, r *http.Request) {
		c := FromContext(r.Context())
		require.NotNil(t, c)
		c.Record("SELECT * FROM users", 10*time.Millisecond)
		c.Record("SELECT * FROM users", 10*time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	evts := sink.Events()
	require.Len(t, evts, 10)

	assert.Equal(t, types.EventLevel_INFO, evts[0].Level)
	assert.Contains(t, evts[0].Message, "--- General Info ---")
	assert.Contains(t, evts[0].Message, "Total Queries: 2")

	assert.Equal(t, types.EventLevel_WARNING, evts[1].Level)
	assert.Contains(t, evts[1].Message, "--- Repeated Query ---")
	assert.Contains(t, evts[1].Message, "Executed: 2 times")

	// One detail/tip pair per finding type, first occurrence kept.
	assert.Equal(t, types.EventLevel_SUGGESTION, evts[2].Level)
	assert.Contains(t, evts[2].Message, "Type: Duplicate Query")
	assert.Contains(t, evts[2].Message, "Occurrences: 2")
	assert.NotContains(t, evts[2].Message, "Source: Unknown")

	assert.Equal(t, types.EventLevel_TIP, evts[3].Level)
	assert.Contains(t, evts[3].Message, "Duplicate Query Detected")

	assert.Contains(t, evts[4].Message, "Type: Missing LIMIT")
	assert.Contains(t, evts[6].Message, "Type: Full Table Scan")
	assert.Contains(t, evts[8].Message, "Type: Inefficient SELECT *")
}

func TestMiddlewareNoQueries(t *testing.T) {
	sink := &events.Collector{}
	m := NewMiddleware(inspector.New(types.Engine_POSTGRES), sink)

	serve(t, m, "/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	evts := sink.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, types.EventLevel_INFO, evts[0].Level)
	assert.Contains(t, evts[0].Message, "No database interactions occurred during this request")
}

func TestMiddlewareSkipPrefixes(t *testing.T) {
	sink := &events.Collector{}
	m := NewMiddleware(inspector.New(types.Engine_POSTGRES), sink,
		WithSkipPrefixes("/static/", "/media/"))

	served := false
	serve(t, m, "/static/app.css", func(w http.ResponseWriter, r *http.Request) {
		served = true
		assert.Nil(t, FromContext(r.Context()))
	})

	assert.True(t, served)
	assert.Empty(t, sink.Events())
}

func TestMiddlewareSlowAndTimeout(t *testing.T) {
	sink := &events.Collector{}
	m := NewMiddleware(inspector.New(types.Engine_POSTGRES), sink)

	serve(t, m, "/reports", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Record("SELECT id FROM users WHERE id = 1 LIMIT 1", 6*time.Second)
	})

	evts := sink.Events()
	require.Len(t, evts, 6)

	// General info, slow warning, timeout error, the single-query
	// block, then the slow-query finding pair.
	wantLevels := []types.EventLevel{
		types.EventLevel_INFO,
		types.EventLevel_WARNING,
		types.EventLevel_ERROR,
		types.EventLevel_INFO,
		types.EventLevel_SUGGESTION,
		types.EventLevel_TIP,
	}
	for i, level := range wantLevels {
		assert.Equal(t, level, evts[i].Level, "event %d", i)
	}
	assert.Contains(t, evts[1].Message, "--- Slow Query ---")
	assert.Contains(t, evts[2].Message, "--- Timeout Error ---")
	assert.Contains(t, evts[4].Message, "Type: Slow Query")
}

func TestMiddlewareTruncatesLongQueries(t *testing.T) {
	sink := &events.Collector{}
	m := NewMiddleware(inspector.New(types.Engine_POSTGRES), sink)

	sql := "SELECT * FROM orders WHERE note = '" + strings.Repeat("x", 120) + "'"
	serve(t, m, "/orders", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Record(sql, 10*time.Millisecond)
	})

	var truncated bool
	for _, e := range sink.Events() {
		if e.Level == types.EventLevel_SUGGESTION && strings.Contains(e.Message, " ... [truncated]") {
			truncated = true
			assert.NotContains(t, e.Message, strings.Repeat("x", 120))
		}
	}
	assert.True(t, truncated, "expected a truncated query in the finding details")
}
