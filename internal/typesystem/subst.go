package typesystem

import (
	set "github.com/hashicorp/go-set/v3"
	"golang.org/x/exp/maps"
)

// Subst maps variable identities to types. It is built incrementally
// during unification and constraint solving; readers resolve through it
// instead of rewriting live types, which keeps later rebinding (the
// least-upper-bound merge) consistent for every holder of a type.
type Subst struct {
	m       map[int]Type
	version int
}

func NewSubst() *Subst {
	return &Subst{m: make(map[int]Type)}
}

// Clone returns an independent copy. Overload alternatives and scratch
// constraint checks work on clones so failed attempts leave no trace.
func (s *Subst) Clone() *Subst {
	return &Subst{m: maps.Clone(s.m), version: s.version}
}

// Binding reports the direct binding of a variable, without walking
// chains.
func (s *Subst) Binding(id int) (Type, bool) {
	t, ok := s.m[id]
	return t, ok
}

// Bind records a binding. Rebinding an already-bound variable is
// reserved for the least-upper-bound merge; ordinary unification only
// binds open variables. Every write bumps the version, which is how
// the constraint fixpoint detects progress.
func (s *Subst) Bind(id int, t Type) {
	s.m[id] = t
	s.version++
}

// Version increases monotonically with every binding.
func (s *Subst) Version() int { return s.version }

// Len reports the number of bound variables.
func (s *Subst) Len() int { return len(s.m) }

// Walk resolves variable chains one step short of materializing: it
// follows bindings until it reaches a non-variable type or an unbound
// variable. The second result is the last variable on the chain (the
// representative), or nil when t was never a variable. The caller
// needs the representative to merge conflicting concrete bindings.
func (s *Subst) Walk(t Type) (Type, *TVar) {
	var last *TVar
	for {
		v, ok := t.(TVar)
		if !ok {
			return t, last
		}
		vv := v
		last = &vv
		b, bound := s.m[v.ID]
		if !bound {
			return v, last
		}
		t = b
	}
}

// Apply materializes t under the substitution, resolving every
// variable it can reach.
func (s *Subst) Apply(t Type) Type {
	t, _ = s.Walk(t)
	switch tt := t.(type) {
	case TOper:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = s.Apply(a)
		}
		return TOper{Op: tt.Op, Args: args}
	case TFunc:
		return TFunc{Domain: s.Apply(tt.Domain), Codomain: s.Apply(tt.Codomain)}
	default:
		return t
	}
}

// FreeVars collects the identities of unbound variables reachable from
// t under s.
func FreeVars(t Type, s *Subst) *set.Set[int] {
	out := set.New[int](4)
	collectFree(t, s, out)
	return out
}

func collectFree(t Type, s *Subst, out *set.Set[int]) {
	t, _ = s.Walk(t)
	switch tt := t.(type) {
	case TVar:
		out.Insert(tt.ID)
	case TOper:
		for _, a := range tt.Args {
			collectFree(a, s, out)
		}
	case TFunc:
		collectFree(tt.Domain, s, out)
		collectFree(tt.Codomain, s, out)
	}
}
