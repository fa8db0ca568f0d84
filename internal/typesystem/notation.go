package typesystem

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The type notation is the textual form types render to and that
// configuration files and conformance catalogs are written in:
//
//	type := term ('**' type)?                 arrows, right-associative
//	term := name ('(' type (',' type)* ')')?  operator application
//	      | name                              nullary operator or variable
//	      | '(' type ')'
//
// Names starting with an upper-case letter are operators resolved
// against a lattice; everything else is a variable drawn from a
// VarNames namespace.

// VarNames maps notation variable names to stable variables within one
// parse scope, so that "x" in a signature's type and in its constraint
// descriptors means the same variable.
type VarNames struct {
	supply func() TVar
	byName map[string]TVar
}

func NewVarNames(supply func() TVar) *VarNames {
	return &VarNames{supply: supply, byName: make(map[string]TVar)}
}

// Get returns the variable for name, allocating it on first use.
func (vn *VarNames) Get(name string) TVar {
	if v, ok := vn.byName[name]; ok {
		return v
	}
	v := vn.supply()
	vn.byName[name] = v
	return v
}

// Has reports whether name has been mentioned in this scope.
func (vn *VarNames) Has(name string) bool {
	_, ok := vn.byName[name]
	return ok
}

// ParseTypeNotation parses src against the operators declared in lat,
// drawing variables from vars.
func ParseTypeNotation(src string, lat *Lattice, vars *VarNames) (Type, error) {
	p := &notationParser{lat: lat, vars: vars}
	p.tokens = tokenizeNotation(src)
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok != "" {
		return nil, fmt.Errorf("type notation %q: unexpected %q after complete type", src, tok)
	}
	return t, nil
}

type notationParser struct {
	lat    *Lattice
	vars   *VarNames
	tokens []string
	pos    int
}

func tokenizeNotation(src string) []string {
	var toks []string
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '(' || r == ')' || r == ',':
			toks = append(toks, string(r))
			i += w
		case r == '*':
			if strings.HasPrefix(src[i:], "**") {
				toks = append(toks, "**")
				i += 2
			} else {
				toks = append(toks, "*")
				i++
			}
		default:
			j := i
			for j < len(src) {
				r, w := utf8.DecodeRuneInString(src[j:])
				if unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' || r == '*' {
					break
				}
				j += w
			}
			toks = append(toks, src[i:j])
			i = j
		}
	}
	return toks
}

func (p *notationParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *notationParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *notationParser) parseType() (Type, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.peek() != "**" {
		return left, nil
	}
	p.next()
	right, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return Func(left, right), nil
}

func (p *notationParser) parseTerm() (Type, error) {
	tok := p.next()
	switch {
	case tok == "":
		return nil, fmt.Errorf("type notation: unexpected end of input")
	case tok == "(":
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if got := p.next(); got != ")" {
			return nil, fmt.Errorf("type notation: expected ')', got %q", got)
		}
		return t, nil
	case tok == ")" || tok == "," || tok == "**" || tok == "*":
		return nil, fmt.Errorf("type notation: unexpected %q", tok)
	}

	r, _ := utf8.DecodeRuneInString(tok)
	if !unicode.IsUpper(r) {
		if p.peek() == "(" {
			return nil, fmt.Errorf("type notation: variable %q cannot take arguments", tok)
		}
		return p.vars.Get(tok), nil
	}

	var args []Type
	if p.peek() == "(" {
		p.next()
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			sep := p.next()
			if sep == ")" {
				break
			}
			if sep != "," {
				return nil, fmt.Errorf("type notation: expected ',' or ')', got %q", sep)
			}
		}
	}
	op, ok := p.lat.Operator(tok, len(args))
	if !ok {
		return nil, fmt.Errorf("type notation: operator %s/%d is not declared", tok, len(args))
	}
	return TOper{Op: op, Args: args}, nil
}
