package capture

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nsxbet/query-inspector/pkg/config"
	"github.com/nsxbet/query-inspector/pkg/events"
	"github.com/nsxbet/query-inspector/pkg/inspector"
	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// DefaultTimeoutSeconds is the execution time past which a statement is
// reported as an error rather than a warning.
const DefaultTimeoutSeconds = 5.0

// MiddlewareOption adjusts the middleware.
type MiddlewareOption func(*Middleware)

// WithSlowThreshold overrides the slow-statement warning threshold, in
// seconds.
func WithSlowThreshold(seconds float64) MiddlewareOption {
	return func(m *Middleware) { m.slowSeconds = seconds }
}

// WithTimeoutThreshold overrides the timeout error threshold, in
// seconds.
func WithTimeoutThreshold(seconds float64) MiddlewareOption {
	return func(m *Middleware) { m.timeoutSeconds = seconds }
}

// WithSkipPrefixes disables capture for request paths with any of the
// given prefixes, such as static asset routes.
func WithSkipPrefixes(prefixes ...string) MiddlewareOption {
	return func(m *Middleware) { m.skipPrefixes = prefixes }
}

// WithAnalyzeOptions forwards analysis options, such as schema facts or
// an EXPLAIN cache, to the per-request analysis.
func WithAnalyzeOptions(opts ...inspector.Option) MiddlewareOption {
	return func(m *Middleware) { m.analyzeOpts = opts }
}

// Middleware wires a Collector into every request and, after the
// response is written, reports the captured statements, slow
// executions, repeats, and detected inefficiencies through the event
// sink.
type Middleware struct {
	inspector      *inspector.Inspector
	sink           events.Sink
	slowSeconds    float64
	timeoutSeconds float64
	skipPrefixes   []string
	analyzeOpts    []inspector.Option
}

// NewMiddleware creates the middleware. A nil sink discards all output.
func NewMiddleware(insp *inspector.Inspector, sink events.Sink, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		inspector:      insp,
		sink:           sink,
		slowSeconds:    config.DefaultThresholds().SlowQuerySeconds,
		timeoutSeconds: DefaultTimeoutSeconds,
	}
	if m.sink == nil {
		m.sink = events.Discard{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps next with statement capture. Handlers below reach the
// collector through FromContext.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range m.skipPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		collector := NewCollector()
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(WithCollector(r.Context(), collector)))
		m.report(r.Context(), collector, time.Since(start))
	})
}

func (m *Middleware) emit(level types.EventLevel, message string) {
	m.sink.Emit(events.Event{Level: level, Message: message})
}

// report emits the post-response summary for one request.
func (m *Middleware) report(ctx context.Context, collector *Collector, totalTime time.Duration) {
	records := collector.Records()
	if len(records) == 0 {
		m.emit(types.EventLevel_INFO, fmt.Sprintf(
			"No database interactions occurred during this request. Total Request Time: %.3f seconds",
			totalTime.Seconds()))
		return
	}

	var totalQueryTime float64
	for _, record := range records {
		seconds, err := record.ExecutionSeconds()
		if err != nil {
			continue
		}
		totalQueryTime += seconds
	}

	m.emit(types.EventLevel_INFO, fmt.Sprintf(
		"\n--- General Info ---\n"+
			"Batch: %s\n"+
			"Total Queries: %d\n"+
			"Total Query Execution Time: %v s\n"+
			"Total Request Time: %v s\n"+
			"\n--------------------------------\n",
		collector.BatchID(), len(records), totalQueryTime, totalTime.Seconds()))

	m.flagSlowStatements(records)
	m.reportRepeats(records)

	report, err := m.inspector.Analyze(ctx, records, m.analyzeOpts...)
	if err != nil {
		m.emit(types.EventLevel_ERROR, fmt.Sprintf("Query analysis failed: %v", err))
		return
	}
	m.reportFindings(report, records)
}

func (m *Middleware) flagSlowStatements(records []*types.QueryRecord) {
	for _, record := range records {
		seconds, err := record.ExecutionSeconds()
		if err != nil {
			continue
		}
		if seconds > m.slowSeconds {
			m.emit(types.EventLevel_WARNING, fmt.Sprintf(
				"\n--- Slow Query ---\n"+
					"SQL: %s\n"+
					"Execution Time: %v s\n"+
					"--------------------------------\n",
				record.SQL, seconds))
		}
		if seconds > m.timeoutSeconds {
			m.emit(types.EventLevel_ERROR, fmt.Sprintf(
				"\n--- Timeout Error ---\n"+
					"SQL: %s\n"+
					"Execution Time: %v s\n"+
					"--------------------------------\n",
				record.SQL, seconds))
		}
	}
}

// reportRepeats groups statements by their raw text, warning on repeats
// and reporting singles at info level.
func (m *Middleware) reportRepeats(records []*types.QueryRecord) {
	type group struct {
		count     int
		totalTime float64
	}
	groups := map[string]*group{}
	var order []string

	for _, record := range records {
		g, ok := groups[record.SQL]
		if !ok {
			g = &group{}
			groups[record.SQL] = g
			order = append(order, record.SQL)
		}
		seconds, _ := record.ExecutionSeconds()
		g.count++
		g.totalTime += seconds
	}

	for _, sql := range order {
		g := groups[sql]
		if g.count > 1 {
			m.emit(types.EventLevel_WARNING, fmt.Sprintf(
				"\n--- Repeated Query ---\n"+
					"SQL: %s\n"+
					"Executed: %d times\n"+
					"Total Execution Time: %v s\n"+
					"\n--------------------------------\n",
				truncate(sql, 500), g.count, g.totalTime))
		} else {
			m.emit(types.EventLevel_INFO, fmt.Sprintf(
				"\n--- Query ---\n"+
					"SQL: %s\n"+
					"Total Execution Time: %v s\n"+
					"\n--------------------------------\n",
				truncate(sql, 500), g.totalTime))
		}
	}
}

// reportFindings emits one detail event and one remediation event per
// finding type, keeping the first finding of each type.
func (m *Middleware) reportFindings(report *inspector.Report, records []*types.QueryRecord) {
	for _, finding := range report.DedupeByType() {
		count := finding.Count
		if count == 0 {
			count = 1
		}

		query := finding.Query
		if len(query) > 100 {
			query = query[:100] + " ... [truncated]"
		}

		m.emit(types.EventLevel_SUGGESTION, fmt.Sprintf(
			"\n--- Inefficiency Detected ---\n"+
				"Type: %s\n"+
				"Occurrences: %d\n"+
				"Problematic Query:\n%s\n"+
				"Source: %s\n"+
				"--------------------------------\n",
			finding.Type, count, query, findingSource(finding, records)))

		m.emit(types.EventLevel_TIP, fmt.Sprintf(
			"\n--- Optimization Tip ---\n"+
				" %s\n"+
				"--------------------------------\n",
			suggest.Format(finding)))
	}
}

// findingSource attributes a finding to the first captured stack frame
// of the record that produced it.
func findingSource(finding *types.Finding, records []*types.QueryRecord) string {
	for _, record := range records {
		if record.SQL == finding.Query && len(record.StackTrace) > 0 {
			return record.StackTrace[0]
		}
	}
	return "Unknown"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
