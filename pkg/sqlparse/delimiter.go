package sqlparse

import (
	"regexp"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
	"github.com/pkg/errors"

	"github.com/nsxbet/query-inspector/pkg/types"
)

var delimiterRe = regexp.MustCompile(`(?i)^\s*DELIMITER\s+(?P<DELIMITER>[^\s\\]+)\s*`)

// splitDelimited handles scripts that change the statement terminator
// with DELIMITER directives, the way dump files wrap stored routine
// bodies. Statements cut under a custom delimiter are rewritten to end
// with a plain semicolon, and the directives themselves are dropped.
func splitDelimited(stream *antlr.CommonTokenStream) ([]Statement, error) {
	var result []Statement
	delimiter := ";"
	tokens := stream.GetAllTokens()
	start := 0

	i := 0
	for i < len(tokens) {
		token := tokens[i]
		if token.GetChannel() == antlr.TokenDefaultChannel &&
			token.GetTokenType() == parser.MySQLLexerDELIMITER_SYMBOL {
			newStart, directive := delimiterDirective(stream, i)
			var err error
			delimiter, err = extractDelimiter(directive)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to extract delimiter from statement: %s", directive)
			}
			start = newStart
			i = newStart
			continue
		}

		if delimiter == ";" && token.GetTokenType() == parser.MySQLLexerSEMICOLON_SYMBOL {
			result = append(result, cutStatement(stream, tokens, start, i))
			i++
			start = i
			continue
		}

		if token.GetChannel() != antlr.TokenDefaultChannel {
			i++
			continue
		}

		if newStart, ok := matchDelimiter(stream, i, delimiter); ok {
			stmt := cutStatement(stream, tokens, start, i-1)
			stmt.Text += ";"
			stmt.End = &types.Position{
				Line:   int32(tokens[newStart-1].GetLine() - 1),
				Column: int32(tokens[newStart-1].GetColumn()),
			}
			result = append(result, stmt)
			i = newStart
			start = newStart
			continue
		}

		i++
	}

	endPos := len(tokens) - 1
	if start < endPos {
		result = append(result, cutStatement(stream, tokens, start, endPos-1))
	}

	return result, nil
}

// delimiterDirective consumes a DELIMITER directive through the end of
// its line and returns the index of the token after it along with the
// directive text.
func delimiterDirective(stream *antlr.CommonTokenStream, pos int) (int, string) {
	length := len(stream.GetAllTokens())
	for i := pos; i < length; i++ {
		if (stream.Get(i).GetTokenType() == parser.MySQLLexerWHITESPACE && stream.Get(i).GetText() == "\n") ||
			stream.Get(i).GetTokenType() == antlr.TokenEOF {
			return i + 1, stream.GetTextFromTokens(stream.Get(pos), stream.Get(i-1))
		}
	}

	// never reach here
	return length, stream.GetTextFromTokens(stream.Get(pos), stream.Get(length-1))
}

// matchDelimiter reports whether the delimiter text starts at token pos,
// matching byte by byte across consecutive tokens. On a match it returns
// the index of the token after the delimiter.
func matchDelimiter(stream *antlr.CommonTokenStream, pos int, delimiter string) (int, bool) {
	matchPos := 0
	length := len(stream.GetAllTokens())
	for i := pos; i < length; i++ {
		text := stream.GetTextFromInterval(antlr.NewInterval(i, i))
		for j := 0; j < len(text); j++ {
			if matchPos >= len(delimiter) || text[j] != delimiter[matchPos] {
				return 0, false
			}
			matchPos++
			if matchPos == len(delimiter) {
				return i + 1, true
			}
		}
	}

	return 0, false
}

func extractDelimiter(stmt string) (string, error) {
	matchList := delimiterRe.FindStringSubmatch(stmt)
	index := delimiterRe.SubexpIndex("DELIMITER")
	if index >= 0 && index < len(matchList) {
		return matchList[index], nil
	}
	return "", errors.Errorf("cannot extract delimiter from %q", stmt)
}

func hasDelimiterDirective(stream *antlr.CommonTokenStream) bool {
	for _, token := range stream.GetAllTokens() {
		if token.GetChannel() == antlr.TokenDefaultChannel &&
			token.GetTokenType() == parser.MySQLLexerDELIMITER_SYMBOL {
			return true
		}
	}
	return false
}
