package typesystem

import (
	"errors"
	"testing"
)

// testLattice builds the value hierarchy the geographic algebra uses;
// it doubles as a realistic fixture for solver tests.
func testLattice(t *testing.T) (*Lattice, map[string]*Operator) {
	t.Helper()
	lat := NewLattice()
	ops := make(map[string]*Operator)
	declare := func(name string, super string) {
		var sup *Operator
		if super != "" {
			sup = ops[super]
		}
		op, err := lat.Declare(name, 0, sup)
		if err != nil {
			t.Fatalf("declare %s: %v", name, err)
		}
		ops[name] = op
	}
	declare("Val", "")
	declare("Obj", "Val")
	declare("Reg", "Val")
	declare("Loc", "Val")
	declare("Qlt", "Val")
	declare("Nom", "Qlt")
	declare("Bool", "Nom")
	declare("Ord", "Nom")
	declare("Itv", "Ord")
	declare("Ratio", "Itv")
	declare("Count", "Ratio")
	for arity := 1; arity <= 3; arity++ {
		op, err := lat.Declare("R", arity, nil)
		if err != nil {
			t.Fatalf("declare R/%d: %v", arity, err)
		}
		ops["R"+string(rune('0'+arity))] = op
	}
	return lat, ops
}

func TestSubtypeReflexive(t *testing.T) {
	lat, ops := testLattice(t)
	for name, op := range ops {
		if !lat.IsSubtype(op, op) {
			t.Errorf("isSubtype(%s, %s) = false, want true", name, name)
		}
	}
}

func TestSubtypeTransitive(t *testing.T) {
	lat, ops := testLattice(t)
	for _, a := range ops {
		for _, b := range ops {
			for _, c := range ops {
				if lat.IsSubtype(a, b) && lat.IsSubtype(b, c) && !lat.IsSubtype(a, c) {
					t.Errorf("transitivity broken: %s <= %s <= %s but not %s <= %s",
						a, b, c, a, c)
				}
			}
		}
	}
}

func TestSubtypeChains(t *testing.T) {
	lat, ops := testLattice(t)
	testCases := []struct {
		sub, sup string
		want     bool
	}{
		{"Count", "Val", true},
		{"Ratio", "Ord", true},
		{"Itv", "Nom", true},
		{"Obj", "Val", true},
		{"Nom", "Ord", false},
		{"Obj", "Reg", false},
		{"Val", "Count", false},
		{"Loc", "Qlt", false},
	}
	for _, tc := range testCases {
		if got := lat.IsSubtype(ops[tc.sub], ops[tc.sup]); got != tc.want {
			t.Errorf("isSubtype(%s, %s) = %v, want %v", tc.sub, tc.sup, got, tc.want)
		}
	}
}

func TestMeetIsEmpty(t *testing.T) {
	lat, ops := testLattice(t)
	if !lat.MeetIsEmpty(ops["Obj"], ops["Reg"]) {
		t.Error("Obj and Reg are unrelated, meet should be empty")
	}
	if lat.MeetIsEmpty(ops["Ratio"], ops["Ord"]) {
		t.Error("Ratio <= Ord, meet should not be empty")
	}
}

func TestDeclareRejectsRedefinition(t *testing.T) {
	lat, _ := testLattice(t)
	_, err := lat.Declare("Obj", 0, nil)
	if kind, _ := KindOf(err); kind != KindCyclicHierarchy {
		t.Fatalf("redeclaring Obj: got %v, want CyclicHierarchy", err)
	}
	// Same name at a new arity is a different operator and stays legal.
	if _, err := lat.Declare("R", 4, nil); err != nil {
		t.Fatalf("declaring R/4: %v", err)
	}
}

func TestDeclareRejectsParametricSupertype(t *testing.T) {
	lat, ops := testLattice(t)
	_, err := lat.Declare("Grid", 1, ops["Val"])
	if kind, _ := KindOf(err); kind != KindCyclicHierarchy {
		t.Fatalf("parametric operator with supertype: got %v, want CyclicHierarchy", err)
	}
}

func TestDeclareRejectsForeignSupertype(t *testing.T) {
	lat, _ := testLattice(t)
	other := NewLattice()
	foreign, err := other.Declare("Alien", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lat.Declare("Orphan", 0, foreign); err == nil {
		t.Fatal("expected declaring under a foreign supertype to fail")
	}
}

func TestLeastUpperBoundBelow(t *testing.T) {
	lat, ops := testLattice(t)
	testCases := []struct {
		name       string
		a, b       string
		ceiling    string
		want       string
		wantErrAny bool
	}{
		{name: "ratio_nominal_under_qlt", a: "Ratio", b: "Nom", ceiling: "Qlt", want: "Nom"},
		{name: "count_interval", a: "Count", b: "Itv", ceiling: "", want: "Itv"},
		{name: "siblings_meet_at_val", a: "Obj", b: "Loc", ceiling: "", want: "Val"},
		{name: "same_operator", a: "Ord", b: "Ord", ceiling: "Qlt", want: "Ord"},
		{name: "ceiling_excludes_ancestor", a: "Obj", b: "Qlt", ceiling: "Qlt", wantErrAny: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ceiling *Operator
			if tc.ceiling != "" {
				ceiling = ops[tc.ceiling]
			}
			got, err := lat.LeastUpperBoundBelow(ops[tc.a], ops[tc.b], ceiling)
			if tc.wantErrAny {
				var te *Error
				if !errors.As(err, &te) || te.Kind != KindNoCommonSupertype {
					t.Fatalf("got (%v, %v), want NoCommonSupertype", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != ops[tc.want] {
				t.Errorf("lub(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
