package schema

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/query-inspector/pkg/types"
)

// Snapshot is an offline description of a database schema, loadable
// from YAML or JSON. Plans maps raw statement text to pre-recorded
// EXPLAIN output for environments without a live database.
type Snapshot struct {
	Tables []*types.TableMetadata `yaml:"tables" json:"tables"`
	Plans  map[string][]string    `yaml:"plans,omitempty" json:"plans,omitempty"`
}

// LoadSnapshot reads a snapshot file, trying YAML first and falling
// back to JSON.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot file")
	}

	var snap Snapshot
	if yamlErr := yaml.Unmarshal(data, &snap); yamlErr != nil {
		if jsonErr := json.Unmarshal(data, &snap); jsonErr != nil {
			return nil, errors.Wrapf(yamlErr, "parse snapshot file %q", path)
		}
	}
	return &snap, nil
}

// StaticFacts serves schema questions from an in-memory snapshot.
// Useful for tests and for analyzing query logs away from the
// database they came from.
type StaticFacts struct {
	tables map[string]*types.TableMetadata
	plans  map[string][]string
}

func NewStaticFacts(snap *Snapshot) *StaticFacts {
	tables := make(map[string]*types.TableMetadata, len(snap.Tables))
	for _, table := range snap.Tables {
		tables[cleanIdentifier(table.Name)] = table
	}
	return &StaticFacts{tables: tables, plans: snap.Plans}
}

func (f *StaticFacts) lookup(table string) (*types.TableMetadata, error) {
	meta, ok := f.tables[cleanIdentifier(table)]
	if !ok {
		return nil, errors.Errorf("table %q not in snapshot", table)
	}
	return meta, nil
}

func (f *StaticFacts) EstimatedRowCount(_ context.Context, table string) (int64, error) {
	meta, err := f.lookup(table)
	if err != nil {
		return 0, err
	}
	return meta.RowCount, nil
}

func (f *StaticFacts) IsColumnIndexed(_ context.Context, table string, columns []string) (bool, error) {
	meta, err := f.lookup(table)
	if err != nil {
		return false, err
	}

	wanted := map[string]bool{}
	for _, col := range cleanIdentifiers(columns) {
		wanted[col] = true
	}
	for _, col := range meta.Columns {
		if col.Indexed && wanted[cleanIdentifier(col.Name)] {
			return true, nil
		}
	}
	for _, index := range meta.Indexes {
		if len(index.Expressions) > 0 && wanted[cleanIdentifier(index.Expressions[0])] {
			return true, nil
		}
	}
	return false, nil
}

func (f *StaticFacts) HasCompositeIndex(_ context.Context, table string, columns []string) (bool, error) {
	meta, err := f.lookup(table)
	if err != nil {
		return false, err
	}
	for _, index := range meta.Indexes {
		if columnSetsEqual(columns, index.Expressions) {
			return true, nil
		}
	}
	return false, nil
}

func (f *StaticFacts) PrimaryKeys(_ context.Context, table string) ([]string, error) {
	meta, err := f.lookup(table)
	if err != nil {
		return nil, err
	}

	var primaryKeys []string
	for _, index := range meta.Indexes {
		if index.Primary {
			primaryKeys = append(primaryKeys, index.Expressions...)
		}
	}
	return primaryKeys, nil
}

func (f *StaticFacts) UniqueFields(_ context.Context, table string) ([]string, error) {
	meta, err := f.lookup(table)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var unique []string
	for _, index := range meta.Indexes {
		if !index.Unique && !index.Primary {
			continue
		}
		for _, col := range index.Expressions {
			if seen[col] {
				continue
			}
			seen[col] = true
			unique = append(unique, col)
		}
	}
	return unique, nil
}

func (f *StaticFacts) Explain(_ context.Context, sql string) ([]string, error) {
	plan, ok := f.plans[sql]
	if !ok {
		return nil, errors.Errorf("no recorded plan for query")
	}
	return plan, nil
}
