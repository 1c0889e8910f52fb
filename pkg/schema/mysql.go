package schema

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// MySQLFacts answers schema questions from a live MySQL database using
// INFORMATION_SCHEMA. Lookups are scoped to the schema selected by the
// DSN.
type MySQLFacts struct {
	db *sql.DB
}

// NewMySQLFacts opens a connection pool to the database described by
// dsn, e.g. "user:pass@tcp(127.0.0.1:3306)/appdb".
func NewMySQLFacts(dsn string) (*MySQLFacts, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	return &MySQLFacts{db: db}, nil
}

// NewMySQLFactsFromDB wraps an existing handle. The caller keeps
// ownership of the handle.
func NewMySQLFactsFromDB(db *sql.DB) *MySQLFacts {
	return &MySQLFacts{db: db}
}

func (f *MySQLFacts) Close() error {
	return f.db.Close()
}

// Ping verifies connectivity by executing SELECT 1.
func (f *MySQLFacts) Ping(ctx context.Context) error {
	var one int
	if err := f.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

func (f *MySQLFacts) EstimatedRowCount(ctx context.Context, table string) (int64, error) {
	const query = `
		SELECT TABLE_ROWS
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	`

	var estimate sql.NullInt64
	if err := f.db.QueryRowContext(ctx, query, cleanIdentifier(table)).Scan(&estimate); err != nil {
		return 0, errors.Wrapf(err, "estimate row count for %q", table)
	}
	return estimate.Int64, nil
}

func (f *MySQLFacts) IsColumnIndexed(ctx context.Context, table string, columns []string) (bool, error) {
	cleaned := cleanIdentifiers(columns)
	if len(cleaned) == 0 {
		return false, nil
	}

	query := `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		  AND SEQ_IN_INDEX = 1
		  AND COLUMN_NAME IN (` + placeholders(len(cleaned)) + `)`

	args := make([]interface{}, 0, len(cleaned)+1)
	args = append(args, cleanIdentifier(table))
	for _, col := range cleaned {
		args = append(args, col)
	}

	var count int
	if err := f.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "check index coverage for %q", table)
	}
	return count > 0, nil
}

func (f *MySQLFacts) HasCompositeIndex(ctx context.Context, table string, columns []string) (bool, error) {
	const query = `
		SELECT INDEX_NAME, COLUMN_NAME
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`

	rows, err := f.db.QueryContext(ctx, query, cleanIdentifier(table))
	if err != nil {
		return false, errors.Wrapf(err, "list indexes for %q", table)
	}
	defer rows.Close()

	indexes := map[string][]string{}
	for rows.Next() {
		var indexName, columnName string
		if err := rows.Scan(&indexName, &columnName); err != nil {
			return false, errors.Wrap(err, "scan index column")
		}
		indexes[indexName] = append(indexes[indexName], columnName)
	}
	if err := rows.Err(); err != nil {
		return false, errors.Wrapf(err, "iterate indexes for %q", table)
	}

	for _, indexColumns := range indexes {
		if columnSetsEqual(columns, indexColumns) {
			return true, nil
		}
	}
	return false, nil
}

func (f *MySQLFacts) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		  AND COLUMN_KEY = 'PRI'
	`
	return f.queryColumnNames(ctx, query, table, "primary keys")
}

// UniqueFields returns every column covered by a unique index, the
// primary key included.
func (f *MySQLFacts) UniqueFields(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		  AND NON_UNIQUE = 0
	`
	return f.queryColumnNames(ctx, query, table, "unique fields")
}

func (f *MySQLFacts) queryColumnNames(ctx context.Context, query, table, what string) ([]string, error) {
	rows, err := f.db.QueryContext(ctx, query, cleanIdentifier(table))
	if err != nil {
		return nil, errors.Wrapf(err, "query %s for %q", what, table)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrapf(err, "scan %s", what)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s for %q", what, table)
	}
	return names, nil
}

// Explain runs EXPLAIN FORMAT=TREE, which reports the whole plan as a
// single multi-line value, and returns it split into lines.
func (f *MySQLFacts) Explain(ctx context.Context, sql string) ([]string, error) {
	rows, err := f.db.QueryContext(ctx, "EXPLAIN FORMAT=TREE "+explainSQL(sql))
	if err != nil {
		return nil, errors.Wrap(err, "explain query")
	}
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var tree string
		if err := rows.Scan(&tree); err != nil {
			return nil, errors.Wrap(err, "scan plan")
		}
		plan = append(plan, strings.Split(tree, "\n")...)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plan")
	}
	return plan, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
