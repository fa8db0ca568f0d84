package ast

import (
	"github.com/quangis/cct/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Expression is the base interface for all nodes of an algebra expression.
// The grammar has exactly two forms: an identifier, and the application
// of one expression to another.
type Expression interface {
	expressionNode()
	TokenLiteral() string
	GetToken() token.Token
	String() string
}

// Identifier is a bare atom: an operator name, a data input or an
// opaque source label.
type Identifier struct {
	Token token.Token // The IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}
func (i *Identifier) String() string { return i.Value }

// Application applies Function to Argument. Adjacency in the source is
// left-associative, so "f x y" parses as Application(Application(f, x), y).
type Application struct {
	Token    token.Token // The first token of the function expression
	Function Expression
	Argument Expression
}

func (a *Application) expressionNode()      {}
func (a *Application) TokenLiteral() string { return a.Token.Lexeme }
func (a *Application) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	return a.Token
}

// String reconstructs the source form. Arguments that are themselves
// applications are parenthesized; function position is left-associative
// and needs no parentheses.
func (a *Application) String() string {
	arg := a.Argument.String()
	if _, ok := a.Argument.(*Application); ok {
		arg = "(" + arg + ")"
	}
	return a.Function.String() + " " + arg
}
