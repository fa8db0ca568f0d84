package typesystem

import (
	"testing"
)

func TestSubtypeBoundVerdicts(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	c := NewSubtypeBound(v, ops["Val"])
	s.Constrain(c)

	if verdict, _ := c.check(s); verdict != Pending {
		t.Fatalf("unbound variable: verdict %v, want Pending", verdict)
	}
	if err := s.UnifyAccept(v, Oper(ops["Count"])); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatalf("Count <= Val should settle: %v", err)
	}
}

func TestSubtypeBoundViolation(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	s.Constrain(NewSubtypeBound(v, ops["Qlt"]))
	if err := s.UnifyAccept(v, Oper(ops["Reg"])); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("Reg under Qlt bound: got %v, want ConstraintViolation", err)
	}
}

func TestSubtypeBoundRejectsParametricBinding(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	s.Constrain(NewSubtypeBound(v, ops["Val"]))
	if err := s.UnifyAccept(v, Oper(ops["R1"], Oper(ops["Obj"]))); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("relation under value bound: got %v, want ConstraintViolation", err)
	}
}

func TestMemberOfVerdicts(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	alts := []Type{
		Oper(ops["R1"], Oper(ops["Obj"])),
		Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Ratio"])),
	}
	s.Constrain(NewMemberOf(v, alts...))

	if err := s.Settle(); err != nil {
		t.Fatalf("unbound member variable must stay pending: %v", err)
	}
	if err := s.UnifyAccept(v, Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Count"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatalf("R(Obj, Count) is accepted by R(Obj, Ratio): %v", err)
	}
}

func TestMemberOfViolation(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	s.Constrain(NewMemberOf(v, Oper(ops["R1"], Oper(ops["Obj"])), Oper(ops["R1"], Oper(ops["Loc"]))))
	if err := s.UnifyAccept(v, Oper(ops["R1"], Oper(ops["Reg"]))); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("R(Reg) not in member set: got %v, want ConstraintViolation", err)
	}
}

func TestMemberOfCommitsSingleViableAlternative(t *testing.T) {
	s, ops := newTestSolver(t)
	v := s.Fresh().Fresh()
	slot := s.Fresh().Fresh()
	s.Constrain(NewMemberOf(v,
		Oper(ops["R1"], Oper(ops["Obj"])),
		Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Ratio"]))))
	// Binding to a binary relation with an open slot leaves only the
	// binary alternative viable, which pins the slot.
	if err := s.UnifyAccept(v, Oper(ops["R2"], Oper(ops["Obj"]), slot)); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := s.Apply(slot).String(); got != "Ratio" {
		t.Errorf("slot = %s, want Ratio committed from the single alternative", got)
	}
}

func TestHasParamAtPositionBindsParameter(t *testing.T) {
	// pi1 : rel ** R(x) with rel.has_param(R, x, at=1).
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	x := s.Fresh().Fresh()
	s.Constrain(NewHasParam(rel, "R", x, 1))

	if err := s.Settle(); err != nil {
		t.Fatalf("unbound container must stay pending: %v", err)
	}
	if err := s.UnifyAccept(rel, Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Reg"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := s.Apply(x).String(); got != "Obj" {
		t.Errorf("x = %s, want Obj from position 1", got)
	}
}

func TestHasParamAnyPosition(t *testing.T) {
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	s.Constrain(NewHasParam(rel, "R", Oper(ops["Ord"]), 0))
	if err := s.UnifyAccept(rel, Oper(ops["R2"], Oper(ops["Loc"]), Oper(ops["Ratio"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatalf("Ratio <= Ord in second position: %v", err)
	}
}

func TestHasParamAnyPositionViolation(t *testing.T) {
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	s.Constrain(NewHasParam(rel, "R", Oper(ops["Ord"]), 0))
	if err := s.UnifyAccept(rel, Oper(ops["R2"], Oper(ops["Loc"]), Oper(ops["Nom"]))); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("no ordered slot: got %v, want ConstraintViolation", err)
	}
}

func TestHasParamWrongFamily(t *testing.T) {
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	s.Constrain(NewHasParam(rel, "R", Oper(ops["Val"]), 0))
	if err := s.UnifyAccept(rel, Oper(ops["Obj"])); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("nullary Obj has no parameters: got %v, want ConstraintViolation", err)
	}
}

func TestHasParamForcesSingleOperatorFamily(t *testing.T) {
	lat := NewLattice()
	val, err := lat.Declare("Val", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lat.Declare("Set", 1, nil); err != nil {
		t.Fatal(err)
	}
	s := NewSolver(lat, NewVarSource())
	container := s.Fresh().Fresh()
	s.Constrain(NewHasParam(container, "Set", Oper(val), 1))
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := s.Apply(container).String(); got != "Set(Val)" {
		t.Errorf("container forced to %s, want Set(Val)", got)
	}
}

func TestShapeLimitVerdicts(t *testing.T) {
	// join_key's rel.limit(R(x, q), R(y, q)): a unary relation is ruled
	// out, binary relations pass.
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	px := s.Fresh().Fresh()
	pq := s.Fresh().Fresh()
	s.Constrain(NewShapeLimit(rel,
		Oper(ops["R2"], px, pq),
		Oper(ops["R1"], px)))

	if err := s.Settle(); err != nil {
		t.Fatalf("unbound shape variable must stay pending: %v", err)
	}
	if err := s.UnifyAccept(rel, Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Count"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatalf("binary relation matches binary pattern: %v", err)
	}
}

func TestShapeLimitViolation(t *testing.T) {
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	q := s.Fresh().Fresh()
	s.Constrain(NewShapeLimit(rel, Oper(ops["R2"], Oper(ops["Loc"]), q)))
	if err := s.UnifyAccept(rel, Oper(ops["R3"],
		Oper(ops["Obj"]), Oper(ops["Nom"]), Oper(ops["Obj"]))); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("ternary relation vs binary pattern: got %v, want ConstraintViolation", err)
	}
}

func TestShapeLimitCommitsConcretePatternParts(t *testing.T) {
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	slot := s.Fresh().Fresh()
	q := s.Fresh().Fresh()
	s.Constrain(NewShapeLimit(rel,
		Oper(ops["R2"], Oper(ops["Loc"]), q),
		Oper(ops["R1"], q)))
	if err := s.UnifyAccept(rel, Oper(ops["R2"], slot, Oper(ops["Ratio"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := s.Apply(slot).String(); got != "Loc" {
		t.Errorf("slot = %s, want Loc committed from the only viable pattern", got)
	}
	if got := s.Apply(q).String(); got != "Ratio" {
		t.Errorf("q = %s, want Ratio committed through the shared pattern variable", got)
	}
}

func TestShapeLimitPinsSharedVariable(t *testing.T) {
	// join_key's rel.limit(R(x, q), R(y, q)) shares q with the result
	// skeleton: once both keys coincide the two patterns collapse into
	// one shape and binding the relation pins q.
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	x := s.Fresh().Fresh()
	y := s.Fresh().Fresh()
	q := s.Fresh().Fresh()
	s.Constrain(
		NewSubtypeBound(q, ops["Qlt"]),
		NewShapeLimit(rel,
			Oper(ops["R2"], x, q),
			Oper(ops["R2"], y, q)))

	obj := Oper(ops["Obj"])
	if err := s.UnifyAccept(x, obj); err != nil {
		t.Fatal(err)
	}
	if err := s.UnifyAccept(y, obj); err != nil {
		t.Fatal(err)
	}
	if err := s.UnifyAccept(rel, Oper(ops["R2"], obj, Oper(ops["Ratio"]))); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	if got := s.Apply(q).String(); got != "Ratio" {
		t.Errorf("q = %s, want Ratio pinned by the relation binding", got)
	}
}

func TestShapeLimitCommitEnforcesSharedBound(t *testing.T) {
	// Committing a pattern must surface bound violations on its shared
	// variables: a Reg attribute cannot stand in for a quality.
	s, ops := newTestSolver(t)
	rel := s.Fresh().Fresh()
	q := s.Fresh().Fresh()
	s.Constrain(
		NewSubtypeBound(q, ops["Qlt"]),
		NewShapeLimit(rel, Oper(ops["R2"], Oper(ops["Obj"]), q)))

	if err := s.UnifyAccept(rel, Oper(ops["R2"], Oper(ops["Obj"]), Oper(ops["Reg"]))); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("Reg quality: got %v, want ConstraintViolation", err)
	}
}

// loopConstraint binds a fresh variable on every check and never
// settles; it exists to prove the fixpoint bound trips.
type loopConstraint struct{}

func (c *loopConstraint) String() string                    { return "loop" }
func (c *loopConstraint) Rename(func(TVar) TVar) Constraint { return c }
func (c *loopConstraint) clone() Constraint                 { return c }

func (c *loopConstraint) check(s *Solver) (Verdict, error) {
	v := s.fresh.Fresh()
	s.subst.Bind(v.ID, TOper{Op: &Operator{Name: "X"}})
	return Pending, nil
}

func TestSettleDetectsDeadlock(t *testing.T) {
	s, _ := newTestSolver(t)
	s.Constrain(&loopConstraint{})
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintDeadlock {
		t.Fatalf("non-convergent constraint: got %v, want ConstraintDeadlock", err)
	}
}

func TestBindRecheckCascades(t *testing.T) {
	// Binding one variable must re-check constraints on others: tying
	// a to b and then binding b has to validate a's bound.
	s, ops := newTestSolver(t)
	a := s.Fresh().Fresh()
	b := s.Fresh().Fresh()
	s.Constrain(NewSubtypeBound(a, ops["Qlt"]))
	if err := s.UnifyAccept(a, b); err != nil {
		t.Fatal(err)
	}
	if err := s.UnifyAccept(b, Oper(ops["Reg"])); err != nil {
		t.Fatal(err)
	}
	err := s.Settle()
	if kind, _ := KindOf(err); kind != KindConstraintViolation {
		t.Fatalf("cascaded violation: got %v, want ConstraintViolation", err)
	}
}
