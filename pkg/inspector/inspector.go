// Package inspector provides a high-level API for analyzing captured query
// batches against the registered anti-pattern detectors.
//
// # Quick Start
//
//	// Create an inspector for PostgreSQL
//	insp := inspector.New(types.Engine_POSTGRES)
//
//	// Analyze a batch of query records
//	report, err := insp.Analyze(context.Background(), records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Check results
//	fmt.Printf("Found %d inefficiencies\n", report.Summary.Total)
//	for _, finding := range report.Findings {
//	    fmt.Printf("[%s] %s\n", finding.Type, finding.Suggestion)
//	}
//
// # Using Custom Configuration
//
//	insp := inspector.New(types.Engine_POSTGRES)
//	if err := insp.WithConfig("detectors.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	report, err := insp.Analyze(ctx, records)
//
// # With Schema Facts
//
//	facts, err := schema.NewPostgresFacts(ctx, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer facts.Close()
//
//	report, err := insp.Analyze(ctx, records, inspector.WithFacts(facts))
package inspector

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/nsxbet/query-inspector/pkg/config"
	"github.com/nsxbet/query-inspector/pkg/detector"
	_ "github.com/nsxbet/query-inspector/pkg/patterns" // registers the built-in detectors
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// Inspector analyzes query batches for performance anti-patterns.
// It encapsulates configuration management and detector execution.
//
// Inspector is safe for concurrent use by multiple goroutines as long
// as the configuration is not swapped mid-flight.
type Inspector struct {
	config *config.Config
	engine types.Engine
}

// New creates an Inspector for the given database engine with the
// default configuration: the full detector catalog at its default
// levels and thresholds.
//
// Use WithConfig or WithConfigObject to customize the detectors.
func New(engine types.Engine) *Inspector {
	return &Inspector{
		config: config.Default("default"),
		engine: engine,
	}
}

// NewFromConfig creates an Inspector driven entirely by the given
// configuration, including its engine selection.
func NewFromConfig(cfg *config.Config) *Inspector {
	return &Inspector{
		config: cfg,
		engine: cfg.Engine,
	}
}

// WithConfig loads detector configuration from a YAML or JSON file,
// replacing the current configuration.
func (i *Inspector) WithConfig(filename string) error {
	cfg, err := config.LoadFromFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to load config from %s", filename)
	}
	i.config = cfg
	return nil
}

// WithConfigObject sets a configuration object directly, replacing the
// current configuration. It returns the Inspector for chaining.
func (i *Inspector) WithConfigObject(cfg *config.Config) *Inspector {
	i.config = cfg
	return i
}

// Analyze runs every enabled detector over the batch, in catalog order,
// and concatenates their findings into a Report.
//
// The context supports cancellation: detector execution stops between
// detectors when the context is cancelled, returning the partial report
// together with the context error.
//
// Optional Option parameters customize the analysis:
//
//	report, err := insp.Analyze(ctx, records,
//	    inspector.WithFacts(facts),
//	    inspector.WithExplainCache(cache),
//	)
//
// Analyze returns an error only when the analysis itself cannot
// proceed. Individual detector failures are logged and skipped, and
// never abort the batch.
func (i *Inspector) Analyze(ctx context.Context, records []*types.QueryRecord, opts ...Option) (*Report, error) {
	rules := i.config.DetectorRules()

	options := &analyzeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	facts := options.facts
	if facts != nil && options.explainCache != nil {
		facts = schema.NewCachedFacts(facts, options.explainCache)
	}

	checkCtx := detector.Context{
		Engine:     i.engine,
		Records:    records,
		Facts:      facts,
		Thresholds: i.config.Thresholds,
	}

	var findings []*types.Finding
	for _, rule := range rules {
		select {
		case <-ctx.Done():
			return &Report{
				Findings: findings,
				Summary:  summarize(findings),
			}, ctx.Err()
		default:
		}

		if rule.Level == types.DetectorLevel_DISABLED {
			continue
		}

		ruleCtx := checkCtx
		ruleCtx.Rule = rule

		found, err := detector.Check(ctx, rule.Type, ruleCtx)
		if err != nil {
			slog.Warn("detector failed", "type", rule.Type, "error", err)
			continue
		}
		findings = append(findings, found...)
	}

	return &Report{
		Findings: findings,
		Summary:  summarize(findings),
	}, nil
}
