package sqlparse

import (
	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"
)

// ParsePostgres parses a PostgreSQL statement and returns its parse
// tree.
func ParsePostgres(sql string) (*Result, error) {
	lexer := parser.NewPostgreSQLLexer(antlr.NewInputStream(sql))
	lexerErrors := &errorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrors)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewPostgreSQLParser(stream)
	p.BuildParseTrees = true
	parserErrors := &errorListener{}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrors)

	tree := p.Root()

	if lexerErrors.err != nil {
		return nil, lexerErrors.err
	}
	if parserErrors.err != nil {
		return nil, parserErrors.err
	}
	if tree == nil {
		return nil, &SyntaxError{Message: "failed to parse SQL statement"}
	}

	return &Result{Tree: tree, Tokens: stream}, nil
}
