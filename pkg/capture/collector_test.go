package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	c := NewCollector()
	c.Record("SELECT id FROM users WHERE id = $1", 80*time.Millisecond, 7)

	records := c.Records()
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "SELECT id FROM users WHERE id = $1", record.SQL)
	assert.Equal(t, "0.08", record.Time)
	assert.Equal(t, []interface{}{7}, record.Params)

	require.NotEmpty(t, record.StackTrace)
	assert.Contains(t, record.StackTrace[0], "collector_test.go")
}

func TestRecordDefaultTime(t *testing.T) {
	c := NewCollector()
	c.Record("SELECT 1", 0)

	records := c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, DefaultTime, records[0].Time)
}

func TestRecordNilCollector(t *testing.T) {
	// Handlers record through FromContext without checking for the
	// middleware, so a nil collector must not panic.
	var c *Collector
	assert.NotPanics(t, func() {
		c.Record("SELECT 1", 0)
	})
}

func TestBatchID(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	assert.NotEmpty(t, a.BatchID())
	assert.NotEmpty(t, b.BatchID())
	assert.NotEqual(t, a.BatchID(), b.BatchID())
}

func TestRecordsReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.Record("SELECT 1", 0)

	records := c.Records()
	records[0] = nil

	assert.NotNil(t, c.Records()[0])
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	c := NewCollector()
	ctx := WithCollector(context.Background(), c)
	assert.Same(t, c, FromContext(ctx))
}
