package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// IDENT covers every atom in an algebra expression: operator names
	// (pi1, select), data inputs (objectregions) and opaque source
	// labels (xs, _:source1, 1984). The checker decides what they mean.
	IDENT TokenType = "IDENT"

	LPAREN TokenType = "("
	RPAREN TokenType = ")"
)

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}
