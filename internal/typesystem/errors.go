package typesystem

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every way a check can fail. Configuration-time kinds
// (CyclicHierarchy, UndefinedOperatorArity) are fatal at startup; the
// rest abort the single expression being checked.
type Kind int

const (
	KindSubtypeMismatch Kind = iota + 1
	KindConstraintViolation
	KindArityMismatch
	KindInfiniteType
	KindCyclicHierarchy
	KindNoCommonSupertype
	KindConstraintDeadlock
	KindAmbiguousOverload
	KindUndefinedOperatorArity
	KindUnresolvedType
)

var kindNames = map[Kind]string{
	KindSubtypeMismatch:        "SubtypeMismatch",
	KindConstraintViolation:    "ConstraintViolation",
	KindArityMismatch:          "ArityMismatch",
	KindInfiniteType:           "InfiniteType",
	KindCyclicHierarchy:        "CyclicHierarchy",
	KindNoCommonSupertype:      "NoCommonSupertype",
	KindConstraintDeadlock:     "ConstraintDeadlock",
	KindAmbiguousOverload:      "AmbiguousOverload",
	KindUndefinedOperatorArity: "UndefinedOperatorArity",
	KindUnresolvedType:         "UnresolvedType",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindByName resolves the textual name used in conformance catalogs
// back to a Kind.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Error is the single error type surfaced by checking. It carries the
// failure kind, the two conflicting types when there are two, the
// violated constraint when there is one, and the offending
// subexpression when the checker knows it.
type Error struct {
	Kind       Kind
	Left       Type
	Right      Type
	Constraint Constraint
	Expr       string
	Detail     string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Constraint != nil {
		fmt.Fprintf(&b, " [%s]", e.Constraint)
	}
	if e.Expr != "" {
		fmt.Fprintf(&b, " in %q", e.Expr)
	}
	return b.String()
}

// WithExpr attaches the offending subexpression, keeping the innermost
// attribution when one is already present.
func (e *Error) WithExpr(expr string) *Error {
	if e.Expr == "" {
		e.Expr = expr
	}
	return e
}

// KindOf extracts the failure kind from any error produced by this
// package or wrapped around one.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

func NewSubtypeMismatch(arg, domain Type) *Error {
	return &Error{
		Kind:   KindSubtypeMismatch,
		Left:   arg,
		Right:  domain,
		Detail: fmt.Sprintf("%s is not a subtype of %s", arg, domain),
	}
}

func NewConstraintViolation(c Constraint, offending Type) *Error {
	detail := "constraint cannot hold"
	if offending != nil {
		detail = fmt.Sprintf("constraint cannot hold for %s", offending)
	}
	return &Error{
		Kind:       KindConstraintViolation,
		Left:       offending,
		Constraint: c,
		Detail:     detail,
	}
}

func NewArityMismatch(fn Type, expr string) *Error {
	return &Error{
		Kind:   KindArityMismatch,
		Left:   fn,
		Expr:   expr,
		Detail: fmt.Sprintf("%s is not a function and cannot be applied", fn),
	}
}

func NewInfiniteType(v TVar, t Type) *Error {
	return &Error{
		Kind:   KindInfiniteType,
		Left:   v,
		Right:  t,
		Detail: fmt.Sprintf("%s occurs in %s", v, t),
	}
}

func NewCyclicHierarchy(detail string) *Error {
	return &Error{Kind: KindCyclicHierarchy, Detail: detail}
}

func NewNoCommonSupertype(a, b, ceiling *Operator) *Error {
	detail := fmt.Sprintf("%s and %s share no common supertype", a, b)
	if ceiling != nil {
		detail += fmt.Sprintf(" within %s", ceiling)
	}
	return &Error{Kind: KindNoCommonSupertype, Detail: detail}
}

func NewConstraintDeadlock(rounds int) *Error {
	return &Error{
		Kind:   KindConstraintDeadlock,
		Detail: fmt.Sprintf("constraint solving did not converge after %d rounds", rounds),
	}
}

func NewAmbiguousOverload(expr string, alternatives []Type) *Error {
	parts := make([]string, len(alternatives))
	for i, t := range alternatives {
		parts[i] = t.String()
	}
	return &Error{
		Kind:   KindAmbiguousOverload,
		Expr:   expr,
		Detail: "more than one overload applies: " + strings.Join(parts, "; "),
	}
}

func NewUndefinedOperatorArity(name string, claimed, max int) *Error {
	return &Error{
		Kind:   KindUndefinedOperatorArity,
		Detail: fmt.Sprintf("%s declares arity %d but its signature supports at most %d", name, claimed, max),
	}
}

func NewUnresolvedType(t Type) *Error {
	return &Error{
		Kind:   KindUnresolvedType,
		Left:   t,
		Detail: fmt.Sprintf("result %s still contains free variables", t),
	}
}
