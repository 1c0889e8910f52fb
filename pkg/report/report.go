// Package report appends detected inefficiencies to a report file, one
// timestamped block per finding type with its formatted optimization
// tip.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nsxbet/query-inspector/pkg/suggest"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// Writer appends findings to a report file.
type Writer struct {
	path string
}

// NewWriter creates a writer for the given report file. The file is
// created on first write and always opened in append mode.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write appends the findings to the report file, keeping the first
// finding of each type per call. Nothing is written for an empty batch.
func (w *Writer) Write(findings []*types.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open report file %s", w.path)
	}
	defer file.Close()

	var buf strings.Builder
	seen := map[types.FindingType]bool{}
	for _, finding := range findings {
		if seen[finding.Type] {
			continue
		}
		seen[finding.Type] = true

		count := finding.Count
		if count == 0 {
			count = 1
		}

		fmt.Fprintf(&buf, "\n--- Inefficiency Detected at %s ---\n", time.Now().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&buf, "Type: %s\n", finding.Type)
		fmt.Fprintf(&buf, "Occurrences: %d\n", count)
		// The truncation marker follows every query, truncated or not.
		fmt.Fprintf(&buf, "Problematic Query:\n%s ... [truncated]\n", truncate(finding.Query, 500))
		fmt.Fprintf(&buf, "Source: %s\n", "Unknown")
		buf.WriteString("--------------------------------\n")

		buf.WriteString("\n--- Optimization Tip ---\n")
		fmt.Fprintf(&buf, " %s\n", suggest.Format(finding))
		buf.WriteString("--------------------------------\n")
	}

	if _, err := file.WriteString(buf.String()); err != nil {
		return errors.Wrapf(err, "write report file %s", w.path)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
