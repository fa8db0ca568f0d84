package typesystem

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the interface for all types in the model: type variables,
// applied type operators and function types. Values are immutable;
// bindings accumulate in a Subst instead of rewriting live types.
type Type interface {
	String() string
	typeNode()
}

// Operator is a named type constructor with a fixed arity and an
// optional direct supertype. Operators are created only through
// Lattice.Declare so that the subtype hierarchy stays acyclic.
//
// Several operators may share a display name at different arities
// (the relation family "R" exists at arities 1, 2 and 3); they are
// distinct operators that render identically.
type Operator struct {
	Name  string
	Arity int
	super *Operator
}

// Supertype returns the declared direct supertype, or nil for roots.
func (o *Operator) Supertype() *Operator { return o.super }

func (o *Operator) String() string { return o.Name }

// TVar is an identity-bearing type variable. Identities are handed out
// by a call-scoped VarSource; variables never survive a checking call.
type TVar struct {
	ID int
}

func (v TVar) typeNode()      {}
func (v TVar) String() string { return "t" + strconv.Itoa(v.ID) }

// TOper is a type operator applied to exactly Op.Arity arguments.
// Nullary applications render as the bare operator name.
type TOper struct {
	Op   *Operator
	Args []Type
}

func (t TOper) typeNode() {}

func (t TOper) String() string {
	if len(t.Args) == 0 {
		return t.Op.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", t.Op.Name, strings.Join(parts, ", "))
}

// TFunc is a function type. Application requires the argument to be
// subsumed by Domain; the result is Codomain. Curried signatures are
// nested TFuncs, right-associative.
type TFunc struct {
	Domain   Type
	Codomain Type
}

func (t TFunc) typeNode() {}

func (t TFunc) String() string {
	dom := t.Domain.String()
	if _, ok := t.Domain.(TFunc); ok {
		dom = "(" + dom + ")"
	}
	return dom + " ** " + t.Codomain.String()
}

// Oper applies an operator to arguments. The argument count must match
// the operator's declared arity; a mismatch is a programming error in
// catalog construction, not a checking-time condition.
func Oper(op *Operator, args ...Type) TOper {
	if len(args) != op.Arity {
		panic(fmt.Sprintf("typesystem: operator %s/%d applied to %d arguments",
			op.Name, op.Arity, len(args)))
	}
	return TOper{Op: op, Args: args}
}

// Func builds a function type.
func Func(domain, codomain Type) TFunc {
	return TFunc{Domain: domain, Codomain: codomain}
}

// Arrow folds types into a curried function type, right-associative:
// Arrow(a, b, c) is a ** (b ** c).
func Arrow(ts ...Type) Type {
	if len(ts) == 0 {
		panic("typesystem: Arrow needs at least one type")
	}
	out := ts[len(ts)-1]
	for i := len(ts) - 2; i >= 0; i-- {
		out = TFunc{Domain: ts[i], Codomain: out}
	}
	return out
}

// CurriedArity returns the number of curried arguments a type accepts:
// the length of its right spine of TFuncs.
func CurriedArity(t Type) int {
	n := 0
	for {
		f, ok := t.(TFunc)
		if !ok {
			return n
		}
		n++
		t = f.Codomain
	}
}

// RenameType rewrites every variable in t through ren. The callback is
// expected to memoize, so that repeated occurrences of one variable map
// to one replacement; instantiation relies on this.
func RenameType(t Type, ren func(TVar) TVar) Type {
	switch tt := t.(type) {
	case TVar:
		return ren(tt)
	case TOper:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = RenameType(a, ren)
		}
		return TOper{Op: tt.Op, Args: args}
	case TFunc:
		return TFunc{
			Domain:   RenameType(tt.Domain, ren),
			Codomain: RenameType(tt.Codomain, ren),
		}
	default:
		return t
	}
}
