package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/query-inspector/pkg/types"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      []Statement
	}{
		{
			name:      "two statements on one line",
			statement: "SELECT 1; SELECT 2;",
			want: []Statement{
				{
					Text:     "SELECT 1;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 8},
				},
				{
					Text:     " SELECT 2;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 10},
					End:      &types.Position{Line: 0, Column: 18},
				},
			},
		},
		{
			name:      "semicolon inside a string literal does not split",
			statement: "INSERT INTO logs (note) VALUES ('a; b'); SELECT 1",
			want: []Statement{
				{
					Text:     "INSERT INTO logs (note) VALUES ('a; b');",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 39},
				},
				{
					Text:     " SELECT 1",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 41},
					End:      &types.Position{Line: 0, Column: 48},
				},
			},
		},
		{
			name:      "semicolon inside a line comment does not split",
			statement: "SELECT id\nFROM users; -- done; really\nUPDATE users SET active = 1",
			want: []Statement{
				{
					Text:     "SELECT id\nFROM users;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 1, Column: 10},
				},
				{
					Text:     " -- done; really\nUPDATE users SET active = 1",
					BaseLine: 1,
					Start:    &types.Position{Line: 2, Column: 0},
					End:      &types.Position{Line: 2, Column: 26},
				},
			},
		},
		{
			name:      "transaction script splits at every semicolon",
			statement: "BEGIN; UPDATE accounts SET balance = balance - 1 WHERE id = 7; COMMIT;",
			want: []Statement{
				{
					Text:     "BEGIN;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 5},
				},
				{
					Text:     " UPDATE accounts SET balance = balance - 1 WHERE id = 7;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 7},
					End:      &types.Position{Line: 0, Column: 61},
				},
				{
					Text:     " COMMIT;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 63},
					End:      &types.Position{Line: 0, Column: 69},
				},
			},
		},
		{
			name:      "trailing statement without a semicolon",
			statement: "SELECT 1",
			want: []Statement{
				{
					Text:     "SELECT 1",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 7},
				},
			},
		},
		{
			name:      "trailing newline yields an empty fragment",
			statement: "SELECT 1;\n",
			want: []Statement{
				{
					Text:     "SELECT 1;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 8},
				},
				{
					Text:     "\n",
					BaseLine: 0,
					// The all-hidden fragment takes its start position
					// from the EOF token, past its own end.
					Start: &types.Position{Line: 1, Column: 0},
					End:   &types.Position{Line: 0, Column: 9},
					Empty: true,
				},
			},
		},
		{
			name:      "bare semicolons are empty statements",
			statement: ";;SELECT 1;",
			want: []Statement{
				{
					Text:     ";",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 0},
					End:      &types.Position{Line: 0, Column: 0},
					Empty:    true,
				},
				{
					Text:     ";",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 1},
					End:      &types.Position{Line: 0, Column: 1},
					Empty:    true,
				},
				{
					Text:     "SELECT 1;",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 2},
					End:      &types.Position{Line: 0, Column: 10},
				},
			},
		},
		{
			name:      "whitespace only",
			statement: "   ",
			want: []Statement{
				{
					Text:     "   ",
					BaseLine: 0,
					Start:    &types.Position{Line: 0, Column: 3},
					End:      &types.Position{Line: 0, Column: 0},
					Empty:    true,
				},
			},
		},
		{
			name: "delimiter directive keeps routine bodies whole",
			statement: "DELIMITER ;;\n" +
				"CREATE PROCEDURE bump()\n" +
				"BEGIN\n" +
				"UPDATE counters SET n = n + 1;\n" +
				"END;;\n" +
				"DELIMITER ;\n" +
				"SELECT 1;",
			want: []Statement{
				{
					Text:     "CREATE PROCEDURE bump()\nBEGIN\nUPDATE counters SET n = n + 1;\nEND;",
					BaseLine: 1,
					Start:    &types.Position{Line: 1, Column: 0},
					End:      &types.Position{Line: 4, Column: 4},
				},
				{
					Text:     "SELECT 1;",
					BaseLine: 6,
					Start:    &types.Position{Line: 6, Column: 0},
					End:      &types.Position{Line: 6, Column: 8},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.statement)
			require.NoError(t, err, "split should succeed")
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	got, err := Split("")
	require.NoError(t, err)
	require.Empty(t, got, "empty input should produce no statements")
}

func TestSplitBadDelimiterDirective(t *testing.T) {
	_, err := Split("DELIMITER\nSELECT 1;")
	require.Error(t, err, "a DELIMITER directive without an argument should fail")
	require.Contains(t, err.Error(), "cannot extract delimiter")
}
