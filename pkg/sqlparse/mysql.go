package sqlparse

import (
	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
)

// Result holds the parse tree and token stream of a parsed statement.
type Result struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// ParseMySQL parses a MySQL statement and returns its parse tree. A
// missing trailing semicolon is supplied before parsing.
func ParseMySQL(sql string) (*Result, error) {
	sql = ensureSemicolon(sql)

	lexer := parser.NewMySQLLexer(antlr.NewInputStream(sql))
	lexerErrors := &errorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrors)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewMySQLParser(stream)
	p.BuildParseTrees = true
	parserErrors := &errorListener{}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrors)

	tree := p.Script()

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

// ensureSemicolon appends a semicolon after the last default channel
// token when the statement does not already end with one.
func ensureSemicolon(sql string) string {
	lexer := parser.NewMySQLLexer(antlr.NewInputStream(sql))
	listener := &errorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(listener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	stream.Fill()
	if listener.err != nil {
		// Leave the statement alone and let the parser report it.
		return sql
	}

	tokens := stream.GetAllTokens()
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].GetChannel() != antlr.TokenDefaultChannel ||
			tokens[i].GetTokenType() == antlr.TokenEOF {
			continue
		}
		if tokens[i].GetTokenType() == parser.MySQLLexerSEMICOLON_SYMBOL {
			return sql
		}

		head := stream.GetTextFromInterval(antlr.NewInterval(0, tokens[i].GetTokenIndex()))
		tail := stream.GetTextFromInterval(antlr.NewInterval(tokens[i].GetTokenIndex()+1, tokens[len(tokens)-1].GetTokenIndex()))
		return head + ";" + tail
	}

	return sql
}
