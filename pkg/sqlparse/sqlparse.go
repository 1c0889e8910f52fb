// Package sqlparse provides statement splitting and dialect-aware
// syntax validation on top of the ANTLR SQL grammars.
//
// Splitting always runs on the MySQL lexer: at the token level the
// supported dialects agree on everything splitting cares about, string
// literal boundaries, comment boundaries, and semicolons. Positions on
// split statements are zero based; positions on syntax errors are one
// based, the way the grammars report them.
package sqlparse

import (
	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"

	"github.com/nsxbet/query-inspector/pkg/types"
)

// Statement is a single statement cut from a larger SQL text, with its
// position in the original input.
type Statement struct {
	Text     string
	BaseLine int
	Start    *types.Position
	End      *types.Position
	// Empty is true when the statement holds nothing but semicolons
	// and hidden channel tokens.
	Empty bool
}

// Split cuts a SQL text into individual statements on semicolon
// boundaries. Semicolons inside string literals and comments do not
// split. Scripts that redefine the terminator with DELIMITER directives
// are split at the active delimiter instead. The trailing statement is
// returned even without a terminating semicolon.
func Split(text string) ([]Statement, error) {
	lexer := parser.NewMySQLLexer(antlr.NewInputStream(text))
	listener := &errorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(listener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	stream.Fill()
	if listener.err != nil {
		return nil, listener.err
	}

	if hasDelimiterDirective(stream) {
		return splitDelimited(stream)
	}

	var result []Statement
	tokens := stream.GetAllTokens()
	start := 0
	for i, token := range tokens {
		if token.GetTokenType() != parser.MySQLLexerSEMICOLON_SYMBOL {
			continue
		}
		result = append(result, cutStatement(stream, tokens, start, i))
		start = i + 1
	}

	// The last statement may end at EOF instead of a semicolon.
	eofPos := len(tokens) - 1
	if start < eofPos {
		result = append(result, cutStatement(stream, tokens, start, eofPos-1))
	}

	return result, nil
}

// cutStatement builds the statement spanning tokens[start] through
// tokens[end] inclusive, where tokens[end] is either a semicolon or the
// last token before EOF. An all-hidden trailing fragment takes its
// start position from the EOF token.
func cutStatement(stream *antlr.CommonTokenStream, tokens []antlr.Token, start, end int) Statement {
	return Statement{
		Text:     stream.GetTextFromTokens(tokens[start], tokens[end]),
		BaseLine: tokens[start].GetLine() - 1,
		Start:    firstDefaultChannelTokenPosition(tokens[start:]),
		End: &types.Position{
			Line:   int32(tokens[end].GetLine() - 1),
			Column: int32(tokens[end].GetColumn()),
		},
		Empty: emptyTokenRange(tokens[start : end+1]),
	}
}

// From antlr4, the line is ONE based, and the column is ZERO based.
// So we should minus 1 for the line.
func firstDefaultChannelTokenPosition(tokens []antlr.Token) *types.Position {
	for _, token := range tokens {
		if token.GetChannel() == antlr.TokenDefaultChannel {
			return &types.Position{
				Line:   int32(token.GetLine() - 1),
				Column: int32(token.GetColumn()),
			}
		}
	}
	return &types.Position{}
}

func emptyTokenRange(tokens []antlr.Token) bool {
	for _, token := range tokens {
		if token.GetChannel() == antlr.TokenDefaultChannel &&
			token.GetTokenType() != parser.MySQLLexerSEMICOLON_SYMBOL &&
			token.GetTokenType() != antlr.TokenEOF {
			return false
		}
	}
	return true
}
