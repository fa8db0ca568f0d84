package typesystem

import (
	"fmt"
	"strings"
)

// Verdict is the result of re-evaluating a constraint against the
// current substitution.
type Verdict int

const (
	// Satisfied means the constraint holds under the current bindings.
	Satisfied Verdict = iota
	// Pending means the constraint still mentions unresolved variables
	// and must be re-checked when they bind.
	Pending
	// Violated means no binding can ever satisfy the constraint.
	Violated
)

// Constraint is a side-condition attached to type variables: a subtype
// bound, a finite membership, a parameter-position linkage or a
// structural shape limit. Constraints are created by the exported
// constructors and re-checked by the solver whenever a binding
// changes; the set of kinds is closed.
type Constraint interface {
	fmt.Stringer

	// Rename rewrites every variable the constraint mentions through
	// ren; instantiation uses it to alpha-rename scheme constraints.
	Rename(ren func(TVar) TVar) Constraint

	check(s *Solver) (Verdict, error)
	clone() Constraint
}

// NewSubtypeBound restricts v to the operator bound or one of its
// subtypes.
func NewSubtypeBound(v TVar, bound *Operator) Constraint {
	return &subtypeBound{v: v, bound: bound}
}

// NewMemberOf restricts v to one of an enumerated set of concrete
// alternatives.
func NewMemberOf(v TVar, alternatives ...Type) Constraint {
	return &memberOf{v: v, alts: alternatives}
}

// NewHasParam requires container to resolve to an application of an
// operator from the named family whose argument at the 1-based
// position unifies with param. Position 0 means any position.
func NewHasParam(container TVar, family string, param Type, at int) Constraint {
	return &hasParam{container: container, family: family, param: param, pos: at}
}

// NewShapeLimit requires v to structurally match one of the given
// parametric patterns. Patterns share the scheme's variables, so the
// one surviving pattern commits its bindings back into the signature;
// variables that appear only inside a pattern are local placeholders.
func NewShapeLimit(v TVar, patterns ...Type) Constraint {
	return &shapeLimit{v: v, patterns: patterns}
}

type subtypeBound struct {
	v     TVar
	bound *Operator
}

func (c *subtypeBound) String() string {
	return fmt.Sprintf("%s <= %s", c.v, c.bound)
}

func (c *subtypeBound) Rename(ren func(TVar) TVar) Constraint {
	return &subtypeBound{v: ren(c.v), bound: c.bound}
}

func (c *subtypeBound) clone() Constraint {
	cc := *c
	return &cc
}

func (c *subtypeBound) check(s *Solver) (Verdict, error) {
	t, _ := s.subst.Walk(c.v)
	switch tt := t.(type) {
	case TVar:
		return Pending, nil
	case TOper:
		if s.lattice.IsSubtype(tt.Op, c.bound) {
			return Satisfied, nil
		}
	}
	return Violated, NewConstraintViolation(c, s.Apply(t))
}

type memberOf struct {
	v         TVar
	alts      []Type
	committed bool
}

func (c *memberOf) String() string {
	parts := make([]string, len(c.alts))
	for i, a := range c.alts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s in {%s}", c.v, strings.Join(parts, ", "))
}

func (c *memberOf) Rename(ren func(TVar) TVar) Constraint {
	alts := make([]Type, len(c.alts))
	for i, a := range c.alts {
		alts[i] = RenameType(a, ren)
	}
	return &memberOf{v: ren(c.v), alts: alts}
}

func (c *memberOf) clone() Constraint {
	cc := *c
	return &cc
}

func (c *memberOf) check(s *Solver) (Verdict, error) {
	t, _ := s.subst.Walk(c.v)
	if _, open := t.(TVar); open {
		return Pending, nil
	}
	var viable []Type
	for _, alt := range c.alts {
		if s.scratch().UnifyAccept(alt, t) == nil {
			viable = append(viable, alt)
		}
	}
	if len(viable) == 0 {
		return Violated, NewConstraintViolation(c, s.Apply(t))
	}
	if len(viable) == 1 && !c.committed {
		c.committed = true
		if err := s.UnifyAccept(viable[0], t); err != nil {
			return Violated, NewConstraintViolation(c, s.Apply(t))
		}
	}
	if len(viable) > 1 && !FreeVars(t, s.subst).Empty() {
		return Pending, nil
	}
	return Satisfied, nil
}

type hasParam struct {
	container TVar
	family    string
	param     Type
	pos       int // 1-based; 0 means any position
	forced    bool
}

func (c *hasParam) String() string {
	if c.pos > 0 {
		return fmt.Sprintf("%s has %s at %s position %d", c.container, c.param, c.family, c.pos)
	}
	return fmt.Sprintf("%s has %s at some %s position", c.container, c.param, c.family)
}

func (c *hasParam) Rename(ren func(TVar) TVar) Constraint {
	return &hasParam{
		container: ren(c.container),
		family:    c.family,
		param:     RenameType(c.param, ren),
		pos:       c.pos,
	}
}

func (c *hasParam) clone() Constraint {
	cc := *c
	return &cc
}

func (c *hasParam) check(s *Solver) (Verdict, error) {
	t, rep := s.subst.Walk(c.container)
	if _, open := t.(TVar); open {
		family := s.lattice.Family(c.family)
		if len(family) != 1 || c.forced {
			return Pending, nil
		}
		// A single-operator family leaves only one possible shape, so
		// force the container toward it with fresh slots.
		c.forced = true
		slots := make([]Type, family[0].Arity)
		for i := range slots {
			slots[i] = s.fresh.Fresh()
		}
		if err := s.bindVar(*rep, Oper(family[0], slots...)); err != nil {
			return Violated, NewConstraintViolation(c, s.Apply(t))
		}
		t, _ = s.subst.Walk(c.container)
	}
	op, ok := t.(TOper)
	if !ok || op.Op.Name != c.family {
		return Violated, NewConstraintViolation(c, s.Apply(t))
	}
	if c.pos > 0 {
		if c.pos > len(op.Args) {
			return Violated, NewConstraintViolation(c, s.Apply(t))
		}
		if err := s.UnifyAccept(c.param, op.Args[c.pos-1]); err != nil {
			return Violated, NewConstraintViolation(c, s.Apply(op.Args[c.pos-1]))
		}
		return Satisfied, nil
	}
	p, _ := s.subst.Walk(c.param)
	if _, open := p.(TVar); open {
		return Pending, nil
	}
	for _, slot := range op.Args {
		if s.scratch().UnifyAccept(p, slot) == nil {
			return Satisfied, nil
		}
	}
	return Violated, NewConstraintViolation(c, s.Apply(t))
}

type shapeLimit struct {
	v         TVar
	patterns  []Type
	committed bool
}

func (c *shapeLimit) String() string {
	parts := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s matches one of {%s}", c.v, strings.Join(parts, ", "))
}

func (c *shapeLimit) Rename(ren func(TVar) TVar) Constraint {
	patterns := make([]Type, len(c.patterns))
	for i, p := range c.patterns {
		patterns[i] = RenameType(p, ren)
	}
	return &shapeLimit{v: ren(c.v), patterns: patterns}
}

func (c *shapeLimit) clone() Constraint {
	cc := *c
	return &cc
}

func (c *shapeLimit) check(s *Solver) (Verdict, error) {
	t, _ := s.subst.Walk(c.v)
	if _, open := t.(TVar); open {
		return Pending, nil
	}
	if _, fn := t.(TFunc); fn {
		return Violated, NewConstraintViolation(c, s.Apply(t))
	}
	var viable []Type
	distinct := make(map[string]bool)
	for _, pat := range c.patterns {
		if s.scratch().UnifyAccept(pat, t) == nil {
			viable = append(viable, pat)
			distinct[s.Apply(pat).String()] = true
		}
	}
	if len(viable) == 0 {
		return Violated, NewConstraintViolation(c, s.Apply(t))
	}
	// A single surviving shape (the patterns may coincide once their
	// shared variables bind) commits its bindings into the signature.
	if len(distinct) == 1 && !c.committed {
		c.committed = true
		if err := s.UnifyAccept(viable[0], t); err != nil {
			return Violated, NewConstraintViolation(c, s.Apply(t))
		}
	}
	if !FreeVars(t, s.subst).Empty() {
		return Pending, nil
	}
	return Satisfied, nil
}
