package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func TestParseMySQL(t *testing.T) {
	t.Run("valid statement without semicolon", func(t *testing.T) {
		res, err := ParseMySQL("SELECT id, email FROM users WHERE id = 1")
		require.NoError(t, err, "well-formed statement should parse")
		require.NotNil(t, res.Tree)
		require.NotNil(t, res.Tokens)
	})

	t.Run("valid insert", func(t *testing.T) {
		res, err := ParseMySQL("INSERT INTO users (id, email) VALUES (1, 'a@b.c');")
		require.NoError(t, err)
		require.NotNil(t, res.Tree)
	})

	t.Run("syntax error carries a position", func(t *testing.T) {
		_, err := ParseMySQL("SELECT FROM WHERE")
		require.Error(t, err, "statement without select items should not parse")

		var syntaxErr *SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		require.NotNil(t, syntaxErr.Position)
		assert.Equal(t, int32(1), syntaxErr.Position.Line, "error should be reported on the first line")
	})
}

func TestParsePostgres(t *testing.T) {
	t.Run("valid statement", func(t *testing.T) {
		res, err := ParsePostgres("SELECT id FROM users WHERE email = 'x@y.com';")
		require.NoError(t, err, "well-formed statement should parse")
		require.NotNil(t, res.Tree)
		require.NotNil(t, res.Tokens)
	})

	t.Run("syntax error carries a position", func(t *testing.T) {
		_, err := ParsePostgres("SELECT id FROM FROM users;")
		require.Error(t, err, "doubled FROM should not parse")

		var syntaxErr *SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		require.NotNil(t, syntaxErr.Position)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		engine  types.Engine
		sql     string
		wantErr bool
	}{
		{
			name:   "valid mysql",
			engine: types.Engine_MYSQL,
			sql:    "SELECT id FROM users WHERE id = 1",
		},
		{
			name:    "broken mysql",
			engine:  types.Engine_MYSQL,
			sql:     "SELECT FROM WHERE",
			wantErr: true,
		},
		{
			name:   "valid postgres",
			engine: types.Engine_POSTGRES,
			sql:    "SELECT id FROM users WHERE email = 'x@y.com';",
		},
		{
			name:    "broken postgres",
			engine:  types.Engine_POSTGRES,
			sql:     "SELECT id FROM FROM users;",
			wantErr: true,
		},
		{
			name:   "sqlite is not validated",
			engine: types.Engine_SQLITE,
			sql:    "PRAGMA journal_mode = WAL",
		},
		{
			name:   "unspecified engine is not validated",
			engine: types.Engine_ENGINE_UNSPECIFIED,
			sql:    "anything at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.engine, tt.sql)
			if tt.wantErr {
				assert.Error(t, err, "expected a syntax error")
			} else {
				assert.NoError(t, err, "expected no validation error")
			}
		})
	}
}

func TestSyntaxErrorFormat(t *testing.T) {
	t.Run("with position", func(t *testing.T) {
		err := &SyntaxError{
			Message:  "no viable alternative",
			Position: &types.Position{Line: 3, Column: 7},
		}
		require.Equal(t, "syntax error at line 3, column 7: no viable alternative", err.Error())
	})

	t.Run("with related text", func(t *testing.T) {
		err := &SyntaxError{
			Message:  "extraneous input",
			Related:  "FROM FROM users",
			Position: &types.Position{Line: 1, Column: 15},
		}
		require.Equal(t, `syntax error at line 1, column 15: extraneous input (near "FROM FROM users")`, err.Error())
	})

	t.Run("without position", func(t *testing.T) {
		err := &SyntaxError{Message: "failed to parse SQL statement"}
		require.Equal(t, "syntax error: failed to parse SQL statement", err.Error())
	})
}

func TestEnsureSemicolon(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "appends after the last token",
			sql:  "SELECT 1",
			want: "SELECT 1;",
		},
		{
			name: "already terminated",
			sql:  "SELECT 1;",
			want: "SELECT 1;",
		},
		{
			name: "terminated with trailing whitespace",
			sql:  "SELECT 1;   ",
			want: "SELECT 1;   ",
		},
		{
			name: "inserts before trailing whitespace",
			sql:  "SELECT 1   ",
			want: "SELECT 1;   ",
		},
		{
			name: "empty input",
			sql:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ensureSemicolon(tt.sql))
		})
	}
}
