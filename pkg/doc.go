// Package pkg provides SQL query performance analysis for Go applications.
//
// Query Inspector offers both high-level and low-level APIs for classifying
// query batches against a catalog of performance anti-pattern detectors,
// supporting PostgreSQL, MySQL, and SQLite.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - inspector: High-level API for batch analysis (recommended starting point)
//   - detector: Low-level detector execution engine and registration system
//   - patterns: The built-in anti-pattern detector implementations
//   - types: Core type definitions and data structures
//   - config: Configuration loading and threshold management
//   - schema: Schema facts providers (live databases, snapshots) and the EXPLAIN cache
//   - ingest: Query sources (log files, SQL scripts, raw statements)
//   - capture: Per-request query capture and HTTP middleware
//   - events: Leveled event sinks for streaming analysis output
//   - report: Append-only inefficiency report files
//   - sqlparse: ANTLR-based statement splitting and validation
//   - sqltext: Lexical helpers for normalizing and picking apart statements
//   - suggest: Human-readable remediation templates
//   - logger: Logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the inspector package:
//
//	import (
//	    "github.com/nsxbet/query-inspector/pkg/inspector"
//	    "github.com/nsxbet/query-inspector/pkg/types"
//	)
//
//	func main() {
//	    insp := inspector.New(types.Engine_POSTGRES)
//	    result, err := insp.Analyze(context.Background(), records)
//	    // Process results...
//	}
//
// # Detector Categories
//
// The built-in catalog covers the common ways applications waste database
// time:
//
// Repetition: query storms and redundant work
//   - N+1 query patterns
//   - Duplicate queries within one batch
//
// Missing Indexes: filter, join, sort, and aggregate columns without
// index support, verified against schema facts and EXPLAIN output
//
// Statement Shape: anti-patterns visible in the SQL text
//   - SELECT * projection
//   - Missing LIMIT on unbounded reads
//   - Cartesian joins
//   - Subqueries that defeat the optimizer
//   - Non-sargable predicates (functions or arithmetic over indexed columns)
//   - Large-OFFSET pagination
//   - Unnecessary DISTINCT
//
// Runtime: problems visible only in execution measurements
//   - Slow queries
//   - Full table scans
//   - Lock contention
//   - Long-running transactions
//
// # Configuration
//
// Detectors can be configured via YAML/JSON files or programmatically:
//
//	insp := inspector.New(types.Engine_POSTGRES)
//	if err := insp.WithConfig("detectors.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Advanced Features
//
// Schema-aware analysis:
//
//	facts, _ := schema.NewPostgresFacts(ctx, dsn)
//	result, err := insp.Analyze(ctx, records, inspector.WithFacts(facts))
//
// Shared EXPLAIN cache:
//
//	cache := schema.NewRedisExplainCache(client, schema.DefaultExplainTTL)
//	result, err := insp.Analyze(ctx, records,
//	    inspector.WithFacts(facts),
//	    inspector.WithExplainCache(cache))
//
// Result filtering:
//
//	errors := result.FilterByLevel(types.EventLevel_ERROR)
//	scans := result.FilterByType(types.FindingFullTableScan)
//
// # Custom Detectors
//
// Implement custom checks by satisfying the Detector interface:
//
//	type MyDetector struct{}
//
//	func (d *MyDetector) Check(ctx context.Context, checkCtx detector.Context) ([]*types.Finding, error) {
//	    // Detection logic
//	    return findings, nil
//	}
//
//	func init() {
//	    detector.Register("My Finding", &MyDetector{})
//	}
//
// # Thread Safety
//
// All public APIs are safe for concurrent use by multiple goroutines.
// Inspector instances can be reused across multiple analysis passes.
//
// # Error Handling
//
// Analysis distinguishes between:
//   - Detection findings (returned as Finding values in the Report)
//   - System errors (returned as error from Analyze)
//
// Individual detector failures are logged but don't cause Analyze to return
// an error, allowing partial results even when some detectors fail.
//
// # Performance
//
// Analysis supports context cancellation for timeout control:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	result, err := insp.Analyze(ctx, records)
//
// Schema lookups and EXPLAIN calls are the expensive part; cached facts
// providers keep repeated analysis cheap. Context cancellation is checked
// between detectors.
//
// # Documentation
//
// Complete documentation and examples:
//   - Package documentation: https://pkg.go.dev/github.com/nsxbet/query-inspector/pkg
//   - Examples: examples/library-usage/
package pkg
