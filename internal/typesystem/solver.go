package typesystem

// Solver owns the mutable state of one type-checking call: the
// substitution, the live constraint set and the fresh-variable source.
// The lattice it consults is shared and read-only.
//
// Unification binds optimistically; Settle then re-checks the affected
// constraints to a fixpoint. Callers that need to explore an
// alternative without commitment work on a Clone.
type Solver struct {
	lattice *Lattice
	fresh   *VarSource
	subst   *Subst
	store   *store
}

func NewSolver(lattice *Lattice, fresh *VarSource) *Solver {
	return &Solver{
		lattice: lattice,
		fresh:   fresh,
		subst:   NewSubst(),
		store:   &store{},
	}
}

// Clone copies the substitution and constraint set. The lattice and
// the variable source stay shared: the lattice is read-only and the
// source is a monotonic counter, so clones never collide on variable
// identities.
func (s *Solver) Clone() *Solver {
	return &Solver{
		lattice: s.lattice,
		fresh:   s.fresh,
		subst:   s.subst.Clone(),
		store:   s.store.clone(),
	}
}

// scratch is a throwaway copy with an empty constraint set, used for
// viability probes that must not recurse into constraint solving.
func (s *Solver) scratch() *Solver {
	return &Solver{
		lattice: s.lattice,
		fresh:   s.fresh,
		subst:   s.subst.Clone(),
		store:   &store{},
	}
}

func (s *Solver) Lattice() *Lattice { return s.lattice }
func (s *Solver) Fresh() *VarSource { return s.fresh }
func (s *Solver) Subst() *Subst     { return s.subst }

// Constraints exposes the live constraint set, for diagnostics.
func (s *Solver) Constraints() []Constraint {
	return s.store.constraints
}

// Constrain adds a constraint to the live set. It is evaluated on the
// next Settle.
func (s *Solver) Constrain(cs ...Constraint) {
	s.store.constraints = append(s.store.constraints, cs...)
}

// Apply materializes t under the current substitution.
func (s *Solver) Apply(t Type) Type { return s.subst.Apply(t) }

// Unify makes two types equal: operators and arguments must match
// exactly, variables bind.
func (s *Solver) Unify(t1, t2 Type) error {
	return s.unify(t1, t2, false, false)
}

// UnifyAccept makes arg acceptable where domain is expected, the
// application-site rule: a nominal subtype is accepted in place of its
// supertype. Inside matching constructors, conflicting concrete
// bindings for one variable merge to their least upper bound below the
// variable's subtype ceiling; at the application site itself a bound
// domain is a hard requirement and a non-subtype argument is rejected.
func (s *Solver) UnifyAccept(domain, arg Type) error {
	return s.unify(domain, arg, true, false)
}

func (s *Solver) unify(domain, arg Type, accept, nested bool) error {
	d, dvar := s.subst.Walk(domain)
	a, _ := s.subst.Walk(arg)

	if av, ok := a.(TVar); ok {
		// The argument side adopts the domain: free external data
		// takes whatever type the operator expects.
		return s.bindVar(av, d)
	}
	if dv, ok := d.(TVar); ok {
		return s.bindVar(dv, a)
	}

	switch dt := d.(type) {
	case TOper:
		at, ok := a.(TOper)
		if !ok {
			return NewSubtypeMismatch(s.Apply(a), s.Apply(d))
		}
		if dt.Op == at.Op {
			// Same constructor: unify argument-wise. Acceptance
			// propagates covariantly into the slots.
			for i := range dt.Args {
				if err := s.unify(dt.Args[i], at.Args[i], accept, true); err != nil {
					return err
				}
			}
			return nil
		}
		if accept && dt.Op.Arity == 0 && at.Op.Arity == 0 {
			if s.lattice.IsSubtype(at.Op, dt.Op) {
				return nil
			}
			if nested && dvar != nil {
				// The domain side reached this concrete type through
				// a variable: merge the old and new bindings instead
				// of failing, staying below the variable's bound.
				lub, err := s.lattice.LeastUpperBoundBelow(dt.Op, at.Op, s.ceilingFor(*dvar))
				if err != nil {
					return err
				}
				s.subst.Bind(dvar.ID, TOper{Op: lub})
				return nil
			}
		}
		return NewSubtypeMismatch(s.Apply(a), s.Apply(d))
	case TFunc:
		af, ok := a.(TFunc)
		if !ok {
			return NewSubtypeMismatch(s.Apply(a), s.Apply(d))
		}
		if accept {
			// Contravariant domains, covariant codomains.
			if err := s.unify(af.Domain, dt.Domain, true, nested); err != nil {
				return err
			}
			return s.unify(dt.Codomain, af.Codomain, true, nested)
		}
		if err := s.unify(dt.Domain, af.Domain, false, nested); err != nil {
			return err
		}
		return s.unify(dt.Codomain, af.Codomain, false, nested)
	default:
		return NewSubtypeMismatch(s.Apply(a), s.Apply(d))
	}
}

func (s *Solver) bindVar(v TVar, t Type) error {
	if tv, ok := t.(TVar); ok && tv.ID == v.ID {
		return nil
	}
	if FreeVars(t, s.subst).Contains(v.ID) {
		return NewInfiniteType(v, s.Apply(t))
	}
	s.subst.Bind(v.ID, t)
	return nil
}

// ceilingFor finds the tightest declared subtype bound whose variable
// resolves to rep, to cap a least-upper-bound merge.
func (s *Solver) ceilingFor(rep TVar) *Operator {
	var best *Operator
	for _, c := range s.store.constraints {
		sb, ok := c.(*subtypeBound)
		if !ok {
			continue
		}
		if sb.v.ID != rep.ID {
			_, last := s.subst.Walk(sb.v)
			if last == nil || last.ID != rep.ID {
				continue
			}
		}
		if best == nil || s.lattice.IsSubtype(sb.bound, best) {
			best = sb.bound
		}
	}
	return best
}

// Settle re-checks the constraint set to a fixpoint. Binding one
// variable can satisfy or violate constraints on others, so the loop
// keeps going while any check changes the substitution; iteration is
// bounded by the number of live variables and constraints so a
// malformed set fails with ConstraintDeadlock instead of spinning.
func (s *Solver) Settle() error {
	limit := (s.fresh.Count() + 1) * (len(s.store.constraints) + 1)
	for round := 0; ; round++ {
		if round > limit {
			return NewConstraintDeadlock(round)
		}
		before := s.subst.Version()
		for _, c := range s.store.constraints {
			verdict, err := c.check(s)
			if verdict == Violated {
				return err
			}
		}
		if s.subst.Version() == before {
			return nil
		}
	}
}

// store is the per-call constraint set. Constraints carry commit
// flags, so cloning copies each one.
type store struct {
	constraints []Constraint
}

func (st *store) clone() *store {
	out := make([]Constraint, len(st.constraints))
	for i, c := range st.constraints {
		out[i] = c.clone()
	}
	return &store{constraints: out}
}
