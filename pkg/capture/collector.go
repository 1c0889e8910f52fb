// Package capture records the SQL statements a request executes and
// reports on them once the response is written. A Collector travels in
// the request context; the middleware analyzes what it gathered and
// emits the results through an event sink.
package capture

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nsxbet/query-inspector/pkg/types"
)

// DefaultTime is recorded for statements whose execution time is
// unknown.
const DefaultTime = "0.04"

// Collector accumulates the statements executed during one request.
// It is safe for concurrent use.
type Collector struct {
	id string

	mu      sync.Mutex
	records []*types.QueryRecord
}

// NewCollector creates a collector with a fresh batch ID.
func NewCollector() *Collector {
	return &Collector{id: uuid.NewString()}
}

// BatchID identifies this collector's batch of statements.
func (c *Collector) BatchID() string { return c.id }

// Record stores one executed statement. A zero or negative duration is
// recorded as DefaultTime. The caller's stack is captured for source
// attribution, with runtime internals skipped.
//
// Recording on a nil collector is a no-op, so handlers can call
// FromContext(ctx).Record(...) whether or not the middleware is
// installed.
func (c *Collector) Record(sql string, duration time.Duration, params ...interface{}) {
	if c == nil {
		return
	}

	record := &types.QueryRecord{
		SQL:        sql,
		Time:       DefaultTime,
		Params:     params,
		StackTrace: callerStack(),
	}
	if duration > 0 {
		record.Time = strconv.FormatFloat(duration.Seconds(), 'f', -1, 64)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

// Records returns a copy of everything recorded so far.
func (c *Collector) Records() []*types.QueryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*types.QueryRecord, len(c.records))
	copy(out, c.records)
	return out
}

// callerStack captures the frames above Record, newest first.
func callerStack() []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var stack []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			stack = append(stack, fmt.Sprintf("%s:%d (%s)", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return stack
}

type contextKey struct{}

// WithCollector returns a context carrying the collector.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the collector carried by the context, or nil when
// the request is not under capture.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(contextKey{}).(*Collector)
	return c
}
