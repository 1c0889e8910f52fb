package inspector

import (
	"testing"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func sampleReport() *Report {
	findings := []*types.Finding{
		{Type: types.FindingLockingIssue, Level: types.EventLevel_ERROR, Query: "LOCK TABLES users WRITE"},
		{Type: types.FindingSlowQuery, Level: types.EventLevel_WARNING, Query: "SELECT * FROM orders"},
		{Type: types.FindingMissingLimit, Level: types.EventLevel_TIP, Query: "SELECT id FROM users"},
		{Type: types.FindingMissingLimit, Level: types.EventLevel_TIP, Query: "SELECT id FROM orders"},
		{Type: types.FindingNPlusOne, Level: types.EventLevel_SUGGESTION, Query: "SELECT * FROM items WHERE order_id = 1"},
	}
	return &Report{Findings: findings, Summary: summarize(findings)}
}

func TestSummarize(t *testing.T) {
	report := sampleReport()

	if report.Summary.Total != 5 {
		t.Errorf("Expected total 5, got %d", report.Summary.Total)
	}
	if report.Summary.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", report.Summary.Errors)
	}
	if report.Summary.Warnings != 1 {
		t.Errorf("Expected 1 warning, got %d", report.Summary.Warnings)
	}
	if report.Summary.Tips != 2 {
		t.Errorf("Expected 2 tips, got %d", report.Summary.Tips)
	}
	if report.Summary.Suggestions != 1 {
		t.Errorf("Expected 1 suggestion, got %d", report.Summary.Suggestions)
	}
}

func TestReportPredicates(t *testing.T) {
	report := sampleReport()
	if !report.HasErrors() {
		t.Error("Expected HasErrors() to be true")
	}
	if !report.HasWarnings() {
		t.Error("Expected HasWarnings() to be true")
	}
	if report.IsClean() {
		t.Error("Expected IsClean() to be false")
	}

	empty := &Report{}
	if empty.HasErrors() || empty.HasWarnings() {
		t.Error("Empty report should have no errors or warnings")
	}
	if !empty.IsClean() {
		t.Error("Empty report should be clean")
	}
}

func TestReportString(t *testing.T) {
	got := sampleReport().String()
	want := "Analysis Results: 5 findings (1 errors, 1 warnings, 2 tips, 1 suggestions)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFilterByType(t *testing.T) {
	report := sampleReport()

	limits := report.FilterByType(types.FindingMissingLimit)
	if len(limits) != 2 {
		t.Fatalf("Expected 2 Missing LIMIT findings, got %d", len(limits))
	}
	for _, finding := range limits {
		if finding.Type != types.FindingMissingLimit {
			t.Errorf("Unexpected type %q in filtered findings", finding.Type)
		}
	}

	if got := report.FilterByType(types.FindingCartesianJoin); len(got) != 0 {
		t.Errorf("Expected no Cartesian findings, got %d", len(got))
	}
}

func TestFilterByLevel(t *testing.T) {
	report := sampleReport()

	tips := report.FilterByLevel(types.EventLevel_TIP)
	if len(tips) != 2 {
		t.Fatalf("Expected 2 TIP findings, got %d", len(tips))
	}

	errors := report.FilterByLevel(types.EventLevel_ERROR)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 ERROR finding, got %d", len(errors))
	}
	if errors[0].Type != types.FindingLockingIssue {
		t.Errorf("Expected the locking finding, got %q", errors[0].Type)
	}
}

func TestDedupeByType(t *testing.T) {
	report := sampleReport()

	deduped := report.DedupeByType()
	if len(deduped) != 4 {
		t.Fatalf("Expected 4 findings after deduplication, got %d", len(deduped))
	}

	// The first occurrence of each type survives, in the original order.
	want := []types.FindingType{
		types.FindingLockingIssue,
		types.FindingSlowQuery,
		types.FindingMissingLimit,
		types.FindingNPlusOne,
	}
	for i, findingType := range want {
		if deduped[i].Type != findingType {
			t.Errorf("Finding %d: expected type %q, got %q", i, findingType, deduped[i].Type)
		}
	}
	if deduped[2].Query != "SELECT id FROM users" {
		t.Errorf("Expected the first Missing LIMIT occurrence to survive, got %q", deduped[2].Query)
	}
}
