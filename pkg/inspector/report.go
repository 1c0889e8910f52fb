package inspector

import (
	"fmt"

	"github.com/nsxbet/query-inspector/pkg/types"
)

// Report contains the results of one analysis pass.
//
// It includes every finding from the enabled detectors and aggregate
// statistics for quick checks.
type Report struct {
	// Findings holds every detector hit in detection order.
	// Empty if the batch is clean.
	Findings []*types.Finding `json:"findings" yaml:"findings"`

	// Summary provides aggregate statistics about the findings.
	Summary Summary `json:"summary" yaml:"summary"`
}

// Summary counts findings by severity level.
type Summary struct {
	// Total number of findings across all levels.
	Total int `json:"total" yaml:"total"`

	// Errors is the count of error-level findings.
	Errors int `json:"errors" yaml:"errors"`

	// Warnings is the count of warning-level findings.
	Warnings int `json:"warnings" yaml:"warnings"`

	// Tips is the count of tip-level findings.
	Tips int `json:"tips" yaml:"tips"`

	// Suggestions is the count of suggestion-level findings.
	Suggestions int `json:"suggestions" yaml:"suggestions"`
}

// summarize computes aggregate statistics from findings.
func summarize(findings []*types.Finding) Summary {
	summary := Summary{}
	for _, finding := range findings {
		summary.Total++
		switch finding.Level {
		case types.EventLevel_ERROR:
			summary.Errors++
		case types.EventLevel_WARNING:
			summary.Warnings++
		case types.EventLevel_TIP:
			summary.Tips++
		case types.EventLevel_SUGGESTION:
			summary.Suggestions++
		}
	}
	return summary
}

// HasErrors reports whether the analysis raised any error-level finding.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether the analysis raised any warning-level
// finding.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// IsClean reports whether the analysis produced no findings at all.
//
// This is useful for CI pipelines that should fail on any finding:
//
//	if !report.IsClean() {
//	    os.Exit(1)
//	}
func (r *Report) IsClean() bool {
	return r.Summary.Total == 0
}

// String returns a human-readable summary of the report.
//
// Example output:
//
//	Analysis Results: 5 findings (0 errors, 2 warnings, 3 tips, 0 suggestions)
func (r *Report) String() string {
	return fmt.Sprintf(
		"Analysis Results: %d findings (%d errors, %d warnings, %d tips, %d suggestions)",
		r.Summary.Total,
		r.Summary.Errors,
		r.Summary.Warnings,
		r.Summary.Tips,
		r.Summary.Suggestions,
	)
}

// FilterByType returns a new slice containing only the findings of the
// given type.
//
// This is useful for processing one pattern separately:
//
//	slow := report.FilterByType(types.FindingSlowQuery)
//	for _, finding := range slow {
//	    fmt.Printf("%.2fs: %s\n", finding.Time, finding.Query)
//	}
func (r *Report) FilterByType(findingType types.FindingType) []*types.Finding {
	filtered := make([]*types.Finding, 0)
	for _, finding := range r.Findings {
		if finding.Type == findingType {
			filtered = append(filtered, finding)
		}
	}
	return filtered
}

// FilterByLevel returns a new slice containing only the findings raised
// at the given level.
func (r *Report) FilterByLevel(level types.EventLevel) []*types.Finding {
	filtered := make([]*types.Finding, 0)
	for _, finding := range r.Findings {
		if finding.Level == level {
			filtered = append(filtered, finding)
		}
	}
	return filtered
}

// DedupeByType returns the first finding of each type, in detection
// order. Analysis keeps every occurrence; presentation surfaces
// typically show one entry per pattern.
func (r *Report) DedupeByType() []*types.Finding {
	seen := make(map[types.FindingType]bool)
	deduped := make([]*types.Finding, 0)
	for _, finding := range r.Findings {
		if seen[finding.Type] {
			continue
		}
		seen[finding.Type] = true
		deduped = append(deduped, finding)
	}
	return deduped
}
