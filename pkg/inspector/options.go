package inspector

import "github.com/nsxbet/query-inspector/pkg/schema"

// Option is a functional option customizing one Analyze call.
type Option func(*analyzeOptions)

// analyzeOptions holds optional collaborators for an analysis pass.
type analyzeOptions struct {
	facts        schema.Facts
	explainCache schema.ExplainCache
}

// WithFacts provides the schema facts provider consulted by the
// catalog-aware detectors (the missing-index variants and unnecessary
// DISTINCT). Without it those detectors produce no findings.
//
// Example:
//
//	facts, _ := schema.NewSQLiteFacts("app.db")
//	report, err := insp.Analyze(ctx, records, inspector.WithFacts(facts))
func WithFacts(facts schema.Facts) Option {
	return func(opts *analyzeOptions) {
		opts.facts = facts
	}
}

// WithExplainCache layers a plan cache over the facts provider, so
// repeated EXPLAIN lookups for the same statement are served from the
// cache instead of the database. It has no effect without WithFacts.
//
// Example:
//
//	cache := schema.NewMemoryExplainCache(schema.DefaultExplainTTL)
//	report, err := insp.Analyze(ctx, records,
//	    inspector.WithFacts(facts),
//	    inspector.WithExplainCache(cache),
//	)
func WithExplainCache(cache schema.ExplainCache) Option {
	return func(opts *analyzeOptions) {
		opts.explainCache = cache
	}
}
