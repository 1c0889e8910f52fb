package schema

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresFacts answers schema questions from a live PostgreSQL
// database through a pgx connection pool.
type PostgresFacts struct {
	pool *pgxpool.Pool
}

// NewPostgresFacts connects to the database described by dsn.
func NewPostgresFacts(ctx context.Context, dsn string) (*PostgresFacts, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	return &PostgresFacts{pool: pool}, nil
}

// NewPostgresFactsFromPool wraps an existing pool. The caller keeps
// ownership of the pool.
func NewPostgresFactsFromPool(pool *pgxpool.Pool) *PostgresFacts {
	return &PostgresFacts{pool: pool}
}

func (f *PostgresFacts) Close() {
	f.pool.Close()
}

// Ping verifies connectivity by executing SELECT 1.
func (f *PostgresFacts) Ping(ctx context.Context) error {
	var one int
	if err := f.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.Wrap(err, "ping database")
	}
	return nil
}

// EstimatedRowCount reads the planner's row estimate from pg_class.
// The estimate is -1 for tables that have never been analyzed.
func (f *PostgresFacts) EstimatedRowCount(ctx context.Context, table string) (int64, error) {
	const query = `SELECT reltuples::bigint FROM pg_class WHERE relname = $1`

	var estimate int64
	if err := f.pool.QueryRow(ctx, query, cleanIdentifier(table)).Scan(&estimate); err != nil {
		return 0, errors.Wrapf(err, "estimate row count for %q", table)
	}
	return estimate, nil
}

func (f *PostgresFacts) IsColumnIndexed(ctx context.Context, table string, columns []string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ix.indkey[0]
			WHERE t.relname = $1
			  AND a.attname = ANY($2)
		)
	`

	var indexed bool
	if err := f.pool.QueryRow(ctx, query, cleanIdentifier(table), cleanIdentifiers(columns)).Scan(&indexed); err != nil {
		return false, errors.Wrapf(err, "check index coverage for %q", table)
	}
	return indexed, nil
}

func (f *PostgresFacts) HasCompositeIndex(ctx context.Context, table string, columns []string) (bool, error) {
	indexes, err := f.indexColumnSets(ctx, table)
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

// indexColumnSets returns the column set of every index on the table.
func (f *PostgresFacts) indexColumnSets(ctx context.Context, table string) ([][]string, error) {
	const query = `
		SELECT array_agg(a.attname)
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
		GROUP BY ix.indexrelid
	`

	rows, err := f.pool.Query(ctx, query, cleanIdentifier(table))
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes for %q", table)
	}
	defer rows.Close()

	var indexes [][]string
	for rows.Next() {
		var indexColumns []string
		if err := rows.Scan(&indexColumns); err != nil {
			return nil, errors.Wrap(err, "scan index columns")
		}
		indexes = append(indexes, indexColumns)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate indexes for %q", table)
	}
	return indexes, nil
}

func (f *PostgresFacts) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
		  AND ix.indisprimary
	`
	return f.queryColumnNames(ctx, query, table, "primary keys")
}

// UniqueFields returns every column covered by a unique index,
// primary key columns included.
func (f *PostgresFacts) UniqueFields(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
		  AND ix.indisunique
	`
	return f.queryColumnNames(ctx, query, table, "unique fields")
}

func (f *PostgresFacts) queryColumnNames(ctx context.Context, query, table, what string) ([]string, error) {
	rows, err := f.pool.Query(ctx, query, cleanIdentifier(table))
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

func (f *PostgresFacts) Explain(ctx context.Context, sql string) ([]string, error) {
	rows, err := f.pool.Query(ctx, "EXPLAIN "+explainSQL(sql))
	if err != nil {
		return nil, errors.Wrap(err, "explain query")
	}
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, errors.Wrap(err, "scan plan line")
		}
		plan = append(plan, line)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plan")
	}
	return plan, nil
}
