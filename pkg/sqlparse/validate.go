package sqlparse

import "github.com/nsxbet/query-inspector/pkg/types"

// Validate parses the statement with the grammar for the given engine
// and returns the syntax error, if any. Engines without a wired-in
// grammar, SQLite among them, are not validated.
func Validate(engine types.Engine, sql string) error {
	switch engine {
	case types.Engine_MYSQL:
		_, err := ParseMySQL(sql)
		return err
	case types.Engine_POSTGRES:
		_, err := ParsePostgres(sql)
		return err
	default:
		return nil
	}
}
