// Package events carries diagnostic output from query capture and analysis to
// a pluggable sink, replacing direct logging from library code.
package events

import (
	"sync"

	"github.com/nsxbet/query-inspector/pkg/logger"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// Event is one diagnostic message with its severity.
type Event struct {
	Level   types.EventLevel
	Message string
}

// Sink receives events.
type Sink interface {
	Emit(e Event)
}

// LogSink forwards events to a logger, mapping event levels onto the
// corresponding log severities.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a sink backed by the given logger.
func NewLogSink(l *logger.Logger) *LogSink {
	return &LogSink{log: l}
}

// Emit implements Sink
func (s *LogSink) Emit(e Event) {
	switch e.Level {
	case types.EventLevel_ERROR:
		s.log.Error(e.Message)
	case types.EventLevel_WARNING:
		s.log.Warn(e.Message)
	case types.EventLevel_TIP:
		s.log.Tip(e.Message)
	case types.EventLevel_SUGGESTION:
		s.log.Suggestion(e.Message)
	default:
		s.log.Info(e.Message)
	}
}

// Collector stores emitted events, for tests and programmatic consumers.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink
func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of everything emitted so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Discard drops every event.
type Discard struct{}

// Emit implements Sink
func (Discard) Emit(Event) {}
