// Package algebra holds the polymorphic operator signatures of a
// transformation algebra and the checker that infers types for
// applicative expressions over them.
package algebra

import (
	"github.com/quangis/cct/internal/typesystem"
)

// Scheme is one polymorphic signature of an operator: a type skeleton
// over bound variables, the number of curried arguments it accepts,
// and the constraints over those variables. An operator name may carry
// several alternative schemes (ad hoc overloads).
//
// Schemes are immutable once built; every use instantiates a fresh
// alpha-renamed copy.
type Scheme struct {
	name        string
	skeleton    typesystem.Type
	arity       int
	constraints []typesystem.Constraint
}

func (s *Scheme) Name() string { return s.name }

// Arity is the number of curried arguments. For a data input (a
// non-arrow skeleton) it counts the synthetic source arguments
// prepended at instantiation.
func (s *Scheme) Arity() int { return s.arity }

// Skeleton exposes the raw type skeleton, for table dumps. Its
// variables are scheme-bound; never unify against it directly.
func (s *Scheme) Skeleton() typesystem.Type { return s.skeleton }

func (s *Scheme) Constraints() []typesystem.Constraint { return s.constraints }

// Instantiate produces a fresh copy of the scheme's type and
// constraints: every bound variable is replaced by a new variable from
// fresh, consistently across the skeleton and the constraints. No two
// instantiations ever share a variable identity.
//
// A data-input scheme (non-arrow skeleton with arity n > 0) gains n
// fresh unconstrained domains, one per synthetic source argument.
func (s *Scheme) Instantiate(fresh *typesystem.VarSource) (typesystem.Type, []typesystem.Constraint) {
	seen := make(map[int]typesystem.TVar)
	ren := func(v typesystem.TVar) typesystem.TVar {
		if n, ok := seen[v.ID]; ok {
			return n
		}
		n := fresh.Fresh()
		seen[v.ID] = n
		return n
	}

	t := typesystem.RenameType(s.skeleton, ren)
	var cs []typesystem.Constraint
	if len(s.constraints) > 0 {
		cs = make([]typesystem.Constraint, len(s.constraints))
		for i, c := range s.constraints {
			cs[i] = c.Rename(ren)
		}
	}

	if _, arrow := t.(typesystem.TFunc); !arrow {
		for i := 0; i < s.arity; i++ {
			t = typesystem.Func(fresh.Fresh(), t)
		}
	}
	return t, cs
}
