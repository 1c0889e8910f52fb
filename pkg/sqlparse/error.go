package sqlparse

import (
	"fmt"

	"github.com/antlr4-go/antlr/v4"

	"github.com/nsxbet/query-inspector/pkg/types"
)

// SyntaxError reports where a statement stopped matching its dialect
// grammar. Line is one based.
type SyntaxError struct {
	Message  string
	Related  string
	Position *types.Position
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Position == nil {
		return fmt.Sprintf("syntax error: %s", e.Message)
	}
	if e.Related != "" {
		return fmt.Sprintf("syntax error at line %d, column %d: %s (near %q)",
			e.Position.Line, e.Position.Column, e.Message, e.Related)
	}
	return fmt.Sprintf("syntax error at line %d, column %d: %s",
		e.Position.Line, e.Position.Column, e.Message)
}

// errorListener keeps the first syntax error raised during lexing or
// parsing, along with a snippet of the statement text around the
// offending token.
type errorListener struct {
	*antlr.DefaultErrorListener
	err *SyntaxError
}

// SyntaxError implements antlr.ErrorListener.
func (l *errorListener) SyntaxError(
	_ antlr.Recognizer,
	token any,
	line, column int,
	message string,
	_ antlr.RecognitionException,
) {
	if l.err != nil {
		return
	}

	related := ""
	if token, ok := token.(*antlr.CommonToken); ok {
		stream := token.GetInputStream()
		start := token.GetStart() - 40
		if start < 0 {
			start = 0
		}
		stop := token.GetStop()
		if stop >= stream.Size() {
			stop = stream.Size() - 1
		}
		related = stream.GetTextFromInterval(antlr.NewInterval(start, stop))
	}

	l.err = &SyntaxError{
		Message: message,
		Related: related,
		Position: &types.Position{
			Line:   int32(line),
			Column: int32(column),
		},
	}
}
