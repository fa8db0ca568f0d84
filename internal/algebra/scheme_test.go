package algebra

import (
	"testing"

	ts "github.com/quangis/cct/internal/typesystem"
)

func testLattice(t *testing.T) (*ts.Lattice, map[string]*ts.Operator) {
	t.Helper()
	lat := ts.NewLattice()
	ops := make(map[string]*ts.Operator)
	declare := func(name, super string) {
		var sup *ts.Operator
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
	declare("Ord", "Nom")
	declare("Itv", "Ord")
	declare("Ratio", "Itv")
	declare("Count", "Ratio")
	r2, err := lat.Declare("R", 2, nil)
	if err != nil {
		t.Fatalf("declare R/2: %v", err)
	}
	ops["R2"] = r2
	return lat, ops
}

func TestInstantiateRenamesApart(t *testing.T) {
	lat, ops := testLattice(t)
	b := NewBuilder(lat)
	x := b.Var()
	b.Declare("id", ts.Arrow(x, x), ts.NewSubtypeBound(x, ops["Qlt"]))
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	sch := table.Lookup("id")[0]
	fresh := ts.NewVarSource()
	t1, cs1 := sch.Instantiate(fresh)
	t2, cs2 := sch.Instantiate(fresh)

	f1, f2 := t1.(ts.TFunc), t2.(ts.TFunc)
	if f1.Domain.(ts.TVar).ID == f2.Domain.(ts.TVar).ID {
		t.Errorf("two instantiations share variable %s", f1.Domain)
	}
	if f1.Domain.(ts.TVar).ID != f1.Codomain.(ts.TVar).ID {
		t.Errorf("one instantiation split a shared variable: %s vs %s", f1.Domain, f1.Codomain)
	}
	if len(cs1) != 1 || len(cs2) != 1 {
		t.Fatalf("constraints not carried: %v / %v", cs1, cs2)
	}
	if cs1[0].String() == cs2[0].String() && f1.Domain.String() != f2.Domain.String() {
		t.Errorf("constraint %s not renamed along with its variable", cs1[0])
	}
}

func TestInstantiateSkeletonUnchanged(t *testing.T) {
	lat, _ := testLattice(t)
	b := NewBuilder(lat)
	x := b.Var()
	b.Declare("id", ts.Arrow(x, x))
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	sch := table.Lookup("id")[0]
	before := sch.Skeleton().String()
	sch.Instantiate(ts.NewVarSource())
	if got := sch.Skeleton().String(); got != before {
		t.Errorf("instantiation mutated the stored skeleton: %s -> %s", before, got)
	}
}

func TestDeclareInputPrependsDomains(t *testing.T) {
	lat, ops := testLattice(t)
	b := NewBuilder(lat)
	b.DeclareInput("region", ts.Oper(ops["Reg"]), 1)
	b.DeclareInput("one", ts.Oper(ops["Count"]), 0)
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	fresh := ts.NewVarSource()
	rt, _ := table.Lookup("region")[0].Instantiate(fresh)
	fn, ok := rt.(ts.TFunc)
	if !ok {
		t.Fatalf("region with one input should instantiate to a function, got %s", rt)
	}
	if _, ok := fn.Domain.(ts.TVar); !ok {
		t.Errorf("prepended domain should be a fresh variable, got %s", fn.Domain)
	}
	if fn.Codomain.String() != "Reg" {
		t.Errorf("codomain = %s, want Reg", fn.Codomain)
	}

	ot, _ := table.Lookup("one")[0].Instantiate(fresh)
	if ot.String() != "Count" {
		t.Errorf("zero-input data should stay a bare type, got %s", ot)
	}
}

func TestBuilderRejectsBadDeclarations(t *testing.T) {
	lat, ops := testLattice(t)

	b := NewBuilder(lat)
	x := b.Var()
	b.DeclareArity("broken", ts.Arrow(x, x), 5)
	if _, err := b.Build(); err == nil {
		t.Error("arity beyond the signature's spine should fail the build")
	} else if kind, _ := ts.KindOf(err); kind != ts.KindUndefinedOperatorArity {
		t.Errorf("got %v, want UndefinedOperatorArity", err)
	}

	b = NewBuilder(lat)
	b.DeclareInput("arrowdata", ts.Arrow(ts.Oper(ops["Reg"]), ts.Oper(ops["Reg"])), 1)
	if _, err := b.Build(); err == nil {
		t.Error("data input with an arrow type should fail the build")
	}
}

func TestTableNamesSorted(t *testing.T) {
	lat, ops := testLattice(t)
	b := NewBuilder(lat)
	b.DeclareInput("zeta", ts.Oper(ops["Reg"]), 0)
	b.DeclareInput("alpha", ts.Oper(ops["Reg"]), 0)
	b.DeclareInput("mid", ts.Oper(ops["Reg"]), 0)
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	names := table.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}
