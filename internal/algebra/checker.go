package algebra

import (
	"errors"
	"fmt"

	u "github.com/rjNemo/underscore"

	"github.com/quangis/cct/internal/ast"
	"github.com/quangis/cct/internal/parser"
	"github.com/quangis/cct/internal/typesystem"
)

// Checker infers the type of applicative expressions against a
// signature table. It holds no per-call state: every Check allocates
// its own variable namespace and substitution, so one Checker may be
// used from any number of goroutines.
type Checker struct {
	lattice   *typesystem.Lattice
	table     *Table
	allowOpen bool
}

type Option func(*Checker)

// AllowOpen permits partial results: a final type may still contain
// free variables instead of failing with UnresolvedType.
func AllowOpen() Option {
	return func(c *Checker) { c.allowOpen = true }
}

func NewChecker(lattice *typesystem.Lattice, table *Table, opts ...Option) *Checker {
	c := &Checker{lattice: lattice, table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check parses and types one expression.
func (c *Checker) Check(input string) (typesystem.Type, error) {
	expr, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	return c.CheckExpression(expr)
}

// CheckExpression types a parsed expression. Identifiers known to the
// table are instantiated fresh per occurrence; unknown identifiers in
// argument position become free inputs whose type is inferred from
// context. The result is the fully substituted type of the whole
// expression, or the single terminal error that aborted checking.
func (c *Checker) CheckExpression(expr ast.Expression) (typesystem.Type, error) {
	fresh := typesystem.NewVarSource()
	root := typesystem.NewSolver(c.lattice, fresh)

	outs, fails := c.infer(expr, root, 0)
	if len(outs) == 0 {
		return nil, mostSpecific(fails, expr)
	}
	if len(outs) > 1 {
		types := u.Map(outs, func(o outcome) typesystem.Type {
			return o.solver.Apply(o.typ)
		})
		return nil, typesystem.NewAmbiguousOverload(expr.String(), types)
	}

	out := outs[0]
	if err := out.solver.Settle(); err != nil {
		return nil, withExpr(err, expr)
	}
	result := out.solver.Apply(out.typ)
	if !c.allowOpen && !typesystem.FreeVars(result, out.solver.Subst()).Empty() {
		return nil, typesystem.NewUnresolvedType(result).WithExpr(expr.String())
	}
	return result, nil
}

// outcome is one surviving way of typing a (sub)expression. Distinct
// outcomes always own distinct solvers: candidate states fork whenever
// an overloaded name offers alternatives.
type outcome struct {
	typ      typesystem.Type
	solver   *typesystem.Solver
	progress int
}

// failure remembers how far a candidate got before dying, so that a
// zero-success expression reports its most specific error.
type failure struct {
	err      *typesystem.Error
	progress int
}

func (c *Checker) infer(expr ast.Expression, s *typesystem.Solver, progress int) ([]outcome, []failure) {
	switch e := expr.(type) {
	case *ast.Identifier:
		schemes := c.table.Lookup(e.Value)
		switch len(schemes) {
		case 0:
			// Free external data: a fresh unconstrained variable.
			return []outcome{{typ: s.Fresh().Fresh(), solver: s, progress: progress}}, nil
		case 1:
			return []outcome{{typ: instantiate(schemes[0], s), solver: s, progress: progress}}, nil
		}
		outs := make([]outcome, 0, len(schemes))
		for _, sch := range schemes {
			alt := s.Clone()
			outs = append(outs, outcome{typ: instantiate(sch, alt), solver: alt, progress: progress})
		}
		return outs, nil

	case *ast.Application:
		fnOuts, fails := c.infer(e.Function, s, progress)
		var outs []outcome
		for _, fo := range fnOuts {
			argOuts, argFails := c.infer(e.Argument, fo.solver, fo.progress)
			fails = append(fails, argFails...)
			for _, ao := range argOuts {
				out, fail := c.apply(e, fo.typ, ao)
				if fail != nil {
					fails = append(fails, *fail)
					continue
				}
				outs = append(outs, *out)
			}
		}
		return outs, fails

	default:
		err := &typesystem.Error{
			Kind:   typesystem.KindArityMismatch,
			Detail: fmt.Sprintf("unsupported expression node %T", expr),
		}
		return nil, []failure{{err: err, progress: progress}}
	}
}

// apply types one application step: the current type must be a
// function, the argument must be acceptable in its domain, and the
// constraint set must settle before the candidate advances to the
// codomain.
func (c *Checker) apply(e *ast.Application, fnType typesystem.Type, ao outcome) (*outcome, *failure) {
	s := ao.solver
	cur, _ := s.Subst().Walk(fnType)
	fn, ok := cur.(typesystem.TFunc)
	if !ok {
		err := typesystem.NewArityMismatch(s.Apply(cur), e.String())
		return nil, &failure{err: err, progress: ao.progress}
	}
	if err := s.UnifyAccept(fn.Domain, ao.typ); err != nil {
		return nil, &failure{err: asTypeError(err, e), progress: ao.progress}
	}
	if err := s.Settle(); err != nil {
		return nil, &failure{err: asTypeError(err, e), progress: ao.progress}
	}
	return &outcome{typ: fn.Codomain, solver: s, progress: ao.progress + 1}, nil
}

func instantiate(sch *Scheme, s *typesystem.Solver) typesystem.Type {
	t, cs := sch.Instantiate(s.Fresh())
	s.Constrain(cs...)
	return t
}

// mostSpecific picks the failure from the deepest application fold;
// on a tie the earliest candidate wins, which keeps errors
// deterministic across runs.
func mostSpecific(fails []failure, expr ast.Expression) error {
	if len(fails) == 0 {
		return fmt.Errorf("no way to type %q", expr.String())
	}
	best := fails[0]
	for _, f := range fails[1:] {
		if f.progress > best.progress {
			best = f
		}
	}
	return best.err.WithExpr(expr.String())
}

func asTypeError(err error, e *ast.Application) *typesystem.Error {
	var te *typesystem.Error
	if errors.As(err, &te) {
		return te.WithExpr(e.String())
	}
	return &typesystem.Error{
		Kind:   typesystem.KindConstraintViolation,
		Expr:   e.String(),
		Detail: err.Error(),
	}
}

func withExpr(err error, expr ast.Expression) error {
	var te *typesystem.Error
	if errors.As(err, &te) {
		return te.WithExpr(expr.String())
	}
	return err
}
