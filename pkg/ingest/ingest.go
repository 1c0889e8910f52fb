// Package ingest turns query logs, SQL script files, and ad-hoc
// statement lists into QueryRecord batches ready for analysis.
//
// Statements pass a verb gate before they are accepted: anything that
// does not start with a known SQL verb is logged and skipped. Syntax
// validation against the engine grammar is available as an option and
// is off by default.
package ingest

import (
	"bufio"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/nsxbet/query-inspector/pkg/sqlparse"
	"github.com/nsxbet/query-inspector/pkg/types"
)

// DefaultTime is the execution time assigned to statements that were
// never actually executed, such as those read from a file.
const DefaultTime = "0.01"

var (
	// sqlMarkerRe pulls the statement out of a log line of the form
	// "... SQL: <statement>".
	sqlMarkerRe = regexp.MustCompile(`SQL:\s*(.+)`)

	// validSQLRe accepts statements that start with a known SQL verb
	// followed by whitespace.
	validSQLRe = regexp.MustCompile(`(?i)^(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|TRUNCATE|GRANT|REVOKE)\s`)
)

// Option adjusts how statements are validated during ingestion.
type Option func(*loader)

// WithSyntaxValidation additionally parses every statement with the
// grammar for the given engine and skips the ones that fail to parse.
// Engines without a wired-in grammar keep the verb check only.
func WithSyntaxValidation(engine types.Engine) Option {
	return func(l *loader) {
		l.validateSyntax = true
		l.engine = engine
	}
}

type loader struct {
	validateSyntax bool
	engine         types.Engine
}

func newLoader(opts []Option) *loader {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsValidSQL reports whether the statement starts with a known SQL verb.
func IsValidSQL(sql string) bool {
	return validSQLRe.MatchString(strings.TrimSpace(sql))
}

func (l *loader) accept(sql string) bool {
	if !IsValidSQL(sql) {
		slog.Warn("Invalid SQL query, skipping", "sql", sql)
		return false
	}
	if l.validateSyntax {
		if err := sqlparse.Validate(l.engine, sql); err != nil {
			slog.Warn("Statement failed syntax validation, skipping", "sql", sql, "error", err)
			return false
		}
	}
	return true
}

func wrap(sql string) *types.QueryRecord {
	return &types.QueryRecord{SQL: sql, Time: DefaultTime}
}

// FromLogFile scans a log file for lines carrying the "SQL:" marker and
// returns a record for every statement that passes validation. Lines
// without the marker are ignored.
func FromLogFile(path string, opts ...Option) ([]*types.QueryRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Error("Log file not found", "path", path)
			return nil, errors.Errorf("log file not found: %s", path)
		}
		return nil, errors.Wrapf(err, "open log file %s", path)
	}
	defer file.Close()

	l := newLoader(opts)
	var records []*types.QueryRecord

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		match := sqlMarkerRe.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		sql := strings.TrimSpace(match[1])
		if !l.accept(sql) {
			continue
		}
		records = append(records, wrap(sql))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read log file %s", path)
	}

	if len(records) == 0 {
		slog.Info("No valid SQL queries provided")
	}
	return records, nil
}

// FromQueries validates and wraps manually supplied statements. Empty
// and invalid entries are logged and skipped.
func FromQueries(queries []string, opts ...Option) []*types.QueryRecord {
	l := newLoader(opts)
	records := make([]*types.QueryRecord, 0, len(queries))

	for _, query := range queries {
		sql := strings.TrimSpace(query)
		if sql == "" {
			slog.Warn("Empty SQL query, skipping")
			continue
		}
		if !l.accept(sql) {
			continue
		}
		records = append(records, wrap(sql))
	}

	if len(records) == 0 {
		slog.Info("No valid SQL queries provided")
	}
	return records
}

// FromSQLFile splits a SQL script into statements and wraps the ones
// that pass validation. Splitting is string- and comment-safe and
// tolerates DELIMITER directives. Comments preceding a statement are
// stripped before the verb check.
func FromSQLFile(path string, opts ...Option) ([]*types.QueryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Error("SQL file not found", "path", path)
			return nil, errors.Errorf("SQL file not found: %s", path)
		}
		return nil, errors.Wrapf(err, "read SQL file %s", path)
	}

	statements, err := sqlparse.Split(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "split SQL file %s", path)
	}

	l := newLoader(opts)
	var records []*types.QueryRecord
	for _, stmt := range statements {
		if stmt.Empty {
			continue
		}
		sql := stripLeadingComments(stmt.Text)
		if sql == "" {
			continue
		}
		if !l.accept(sql) {
			continue
		}
		records = append(records, wrap(sql))
	}

	if len(records) == 0 {
		slog.Info("No valid SQL queries provided")
	}
	return records, nil
}

// stripLeadingComments removes line and block comments preceding the
// first statement token, along with surrounding whitespace.
func stripLeadingComments(sql string) string {
	for {
		sql = strings.TrimSpace(sql)
		switch {
		case strings.HasPrefix(sql, "--") || strings.HasPrefix(sql, "#"):
			idx := strings.IndexByte(sql, '\n')
			if idx < 0 {
				return ""
			}
			sql = sql[idx+1:]
		case strings.HasPrefix(sql, "/*"):
			idx := strings.Index(sql, "*/")
			if idx < 0 {
				return ""
			}
			sql = sql[idx+2:]
		default:
			return sql
		}
	}
}
