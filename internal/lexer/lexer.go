package lexer

import (
	"unicode/utf8"

	"github.com/quangis/cct/internal/token"
)

// Lexer splits an algebra expression into atoms and parentheses.
//
// There are no keywords and no literal forms: any maximal run of
// characters that is not whitespace and not a parenthesis is a single
// IDENT token. This keeps labels such as "_:source1", "1984" or
// "Amsterdam" intact without the lexer having to understand them.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	var tok token.Token
	switch l.ch {
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Line: l.line, Column: l.column}
	default:
		startLine, startCol := l.line, l.column
		lexeme := l.readAtom()
		return token.Token{Type: token.IDENT, Lexeme: lexeme, Line: startLine, Column: startCol}
	}

	l.readChar()
	return tok
}

// readAtom consumes a maximal run of non-space, non-paren characters.
func (l *Lexer) readAtom() string {
	position := l.position
	for !isBoundary(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isBoundary(ch rune) bool {
	switch ch {
	case 0, '(', ')', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(ch), Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}
