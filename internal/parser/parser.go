// Package parser turns algebra expression strings into ASTs.
//
// The grammar is deliberately tiny:
//
//	expr := atom (' ' atom)*        application, left-associative
//	atom := IDENT | '(' expr ')'
package parser

import (
	"fmt"

	"github.com/quangis/cct/internal/ast"
	"github.com/quangis/cct/internal/lexer"
	"github.com/quangis/cct/internal/token"
)

// maxDepth bounds parenthesis nesting so a hostile input cannot blow
// the stack.
const maxDepth = 500

type Parser struct {
	l        *lexer.Lexer
	curToken token.Token
	depth    int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	return p
}

// Parse is the convenience entry point: lex, parse, and require the
// whole input to be one expression.
func Parse(input string) (ast.Expression, error) {
	p := New(lexer.New(input))
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != token.EOF {
		return nil, p.errorf("unexpected %q after complete expression", p.curToken.Lexeme)
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.curToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	prefix := fmt.Sprintf("parse error at line %d, column %d: ", p.curToken.Line, p.curToken.Column)
	return fmt.Errorf(prefix+format, args...)
}

// parseExpression folds a run of atoms into left-associative
// applications. It stops at ')' or end of input.
func (p *Parser) parseExpression() (ast.Expression, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf("expression nesting exceeds %d levels", maxDepth)
	}

	var expr ast.Expression
	first := p.curToken
	for {
		var atom ast.Expression
		switch p.curToken.Type {
		case token.IDENT:
			atom = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
			p.advance()
		case token.LPAREN:
			p.advance()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if p.curToken.Type != token.RPAREN {
				return nil, p.errorf("expected ')', got %q", p.curToken.Lexeme)
			}
			p.advance()
			atom = inner
		case token.RPAREN, token.EOF:
			if expr == nil {
				return nil, p.errorf("empty expression")
			}
			return expr, nil
		default:
			return nil, p.errorf("unexpected token %q", p.curToken.Lexeme)
		}

		if expr == nil {
			expr = atom
		} else {
			expr = &ast.Application{Token: first, Function: expr, Argument: atom}
		}
	}
}
