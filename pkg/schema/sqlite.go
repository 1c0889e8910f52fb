package schema

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteFacts answers schema questions from a SQLite database file
// through the PRAGMA interface.
type SQLiteFacts struct {
	db *sql.DB
}

// NewSQLiteFacts opens the database at path.
func NewSQLiteFacts(path string) (*SQLiteFacts, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	return &SQLiteFacts{db: db}, nil
}

// NewSQLiteFactsFromDB wraps an existing handle. The caller keeps
// ownership of the handle.
func NewSQLiteFactsFromDB(db *sql.DB) *SQLiteFacts {
	return &SQLiteFacts{db: db}
}

func (f *SQLiteFacts) Close() error {
	return f.db.Close()
}

// Ping verifies connectivity by executing SELECT 1.
func (f *SQLiteFacts) Ping(ctx context.Context) error {
	var one int
	if err := f.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

// EstimatedRowCount counts rows directly. SQLite keeps no planner
// estimate that PRAGMA exposes, and the small-table check only needs
// the order of magnitude.
func (f *SQLiteFacts) EstimatedRowCount(ctx context.Context, table string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, cleanIdentifier(table))

	var count int64
	if err := f.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "count rows for %q", table)
	}
	return count, nil
}

func (f *SQLiteFacts) IsColumnIndexed(ctx context.Context, table string, columns []string) (bool, error) {
	wanted := map[string]bool{}
	for _, col := range cleanIdentifiers(columns) {
		wanted[col] = true
	}

	indexes, err := f.indexColumnSets(ctx, table, false)
	if err != nil {
		return false, err
	}
	for _, indexColumns := range indexes {
		if len(indexColumns) > 0 && wanted[cleanIdentifier(indexColumns[0])] {
			return true, nil
		}
	}
	return false, nil
}

func (f *SQLiteFacts) HasCompositeIndex(ctx context.Context, table string, columns []string) (bool, error) {
	indexes, err := f.indexColumnSets(ctx, table, false)
	if err != nil {
		return false, err
	}
	for _, indexColumns := range indexes {
		if columnSetsEqual(columns, indexColumns) {
			return true, nil
		}
	}
	return false, nil
}

// PrimaryKeys reports the table's primary key column. For composite
// keys only the first key column is reported.
func (f *SQLiteFacts) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(`PRAGMA table_info(%q)`, cleanIdentifier(table))

	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query table info for %q", table)
	}
	defer rows.Close()

	var primaryKeys []string
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, errors.Wrap(err, "scan table info")
		}
		if pk == 1 {
			primaryKeys = append(primaryKeys, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate table info for %q", table)
	}
	return primaryKeys, nil
}

func (f *SQLiteFacts) UniqueFields(ctx context.Context, table string) ([]string, error) {
	indexes, err := f.indexColumnSets(ctx, table, true)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var unique []string
	for _, indexColumns := range indexes {
		for _, col := range indexColumns {
			if seen[col] {
				continue
			}
			seen[col] = true
			unique = append(unique, col)
		}
	}
	return unique, nil
}

// indexColumnSets returns the column list of each index on the table,
// optionally restricted to unique indexes.
func (f *SQLiteFacts) indexColumnSets(ctx context.Context, table string, uniqueOnly bool) ([][]string, error) {
	listQuery := fmt.Sprintf(`PRAGMA index_list(%q)`, cleanIdentifier(table))

	rows, err := f.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes for %q", table)
	}
	defer rows.Close()

	var indexNames []string
	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, errors.Wrap(err, "scan index list")
		}
		if uniqueOnly && unique == 0 {
			continue
		}
		indexNames = append(indexNames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate index list for %q", table)
	}

	var indexes [][]string
	for _, name := range indexNames {
		columns, err := f.indexColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, columns)
	}
	return indexes, nil
}

func (f *SQLiteFacts) indexColumns(ctx context.Context, index string) ([]string, error) {
	query := fmt.Sprintf(`PRAGMA index_info(%q)`, index)

	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query index info for %q", index)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, errors.Wrap(err, "scan index info")
		}
		// Expression index entries have no column name.
		if name.Valid {
			columns = append(columns, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate index info for %q", index)
	}
	return columns, nil
}

func (f *SQLiteFacts) Explain(ctx context.Context, sqlText string) ([]string, error) {
	rows, err := f.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+explainSQL(sqlText))
	if err != nil {
		return nil, errors.Wrap(err, "explain query")
	}
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var id, parent, notUsed int
		var detail string
		if err := rows.Scan(&id, &parent, &notUsed, &detail); err != nil {
			return nil, errors.Wrap(err, "scan plan line")
		}
		plan = append(plan, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plan")
	}
	return plan, nil
}
