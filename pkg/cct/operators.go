package cct

import (
	"github.com/quangis/cct/internal/algebra"
	ts "github.com/quangis/cct/internal/typesystem"
)

// newTable declares the operator catalog. The quantified relations
// carry both their camelCase names and the lowercase spellings used by
// tool descriptions in the wild.
func newTable(lat *ts.Lattice, v *vocabulary) (*algebra.Table, error) {
	b := algebra.NewBuilder(lat)

	val := ts.Oper(v.val)
	obj := ts.Oper(v.obj)
	reg := ts.Oper(v.reg)
	loc := ts.Oper(v.loc)
	qlt := ts.Oper(v.qlt)
	nom := ts.Oper(v.nom)
	boolean := ts.Oper(v.boolean)
	ord := ts.Oper(v.ord)
	itv := ts.Oper(v.itv)
	ratio := ts.Oper(v.ratio)
	count := ts.Oper(v.count)
	r1 := func(a ts.Type) ts.Type { return ts.Oper(v.r1, a) }
	r2 := func(a, b ts.Type) ts.Type { return ts.Oper(v.r2, a, b) }
	r3 := func(a, b, c ts.Type) ts.Type { return ts.Oper(v.r3, a, b, c) }

	// Data inputs: source concepts taking opaque provenance arguments.
	b.DeclareInput("pointmeasures", r2(reg, itv), 1)
	b.DeclareInput("amountpatches", r2(reg, nom), 1)
	b.DeclareInput("contour", r2(ord, reg), 1)
	b.DeclareInput("contourline", r2(itv, reg), 1)
	b.DeclareInput("objects", r2(obj, ratio), 1)
	b.DeclareInput("objectratios", r2(obj, ratio), 1)
	b.DeclareInput("objectregions", r2(obj, reg), 1)
	b.DeclareInput("objectcounts", r2(obj, count), 1)
	b.DeclareInput("nomcoverages", r2(reg, nom), 1)
	b.DeclareInput("field", r2(loc, ratio), 1)
	b.DeclareInput("object", obj, 1)
	b.DeclareInput("region", reg, 1)
	b.DeclareInput("in", nom, 0)
	b.DeclareInput("countV", count, 1)
	b.DeclareInput("ratioV", ratio, 1)
	b.DeclareInput("interval", itv, 1)
	b.DeclareInput("ordinal", ord, 1)
	b.DeclareInput("nominal", nom, 1)

	// Function composition.
	{
		x, y, z := b.Var(), b.Var(), b.Var()
		b.Declare("compose", ts.Arrow(ts.Func(y, z), ts.Func(x, y), ts.Func(x, z)))
	}

	// Derivations.
	b.Declare("ratio", ts.Arrow(ratio, ratio, ratio))
	b.Declare("leq", ts.Arrow(ord, ord, boolean))
	b.Declare("eq", ts.Arrow(val, val, boolean))

	// Aggregations of collections.
	b.Declare("count", ts.Arrow(r1(obj), ratio))
	b.Declare("size", ts.Arrow(r1(loc), ratio))
	b.Declare("merge", ts.Arrow(r1(reg), reg))
	b.Declare("centroid", ts.Arrow(r1(loc), loc))

	// Statistical summaries over keyed relations.
	b.Declare("avg", ts.Arrow(r2(val, itv), itv))
	b.Declare("min", ts.Arrow(r2(val, ord), ord))
	b.Declare("max", ts.Arrow(r2(val, ord), ord))
	b.Declare("sum", ts.Arrow(r2(val, count), count))

	// Conversions between fields, regions and coverages.
	b.Declare("reify", ts.Arrow(r1(loc), reg))
	b.Declare("deify", ts.Arrow(reg, r1(loc)))
	{
		x := b.Var()
		b.Declare("get", ts.Arrow(r1(x), x), ts.NewSubtypeBound(x, v.val))
	}
	b.Declare("invert", ts.Arrow(r2(loc, ord), r2(ord, reg)))
	b.Declare("invert", ts.Arrow(r2(loc, nom), r2(reg, nom)))
	b.Declare("revert", ts.Arrow(r2(ord, reg), r2(loc, ord)))
	b.Declare("revert", ts.Arrow(r2(reg, nom), r2(loc, nom)))

	// Quantified spatial relations.
	declareEach(b, []string{"oDist", "odist"},
		ts.Arrow(r2(obj, reg), r2(obj, reg), r3(obj, ratio, obj)))
	declareEach(b, []string{"lDist", "ldist"},
		ts.Arrow(r1(loc), r1(loc), r3(loc, ratio, loc)))
	declareEach(b, []string{"loDist", "lodist"},
		ts.Arrow(r1(loc), r2(obj, reg), r3(loc, ratio, obj)))
	declareEach(b, []string{"oTopo", "otopo"},
		ts.Arrow(r2(obj, reg), r2(obj, reg), r3(obj, nom, obj)))
	declareEach(b, []string{"loTopo", "lotopo"},
		ts.Arrow(r1(loc), r2(obj, reg), r3(loc, nom, obj)))
	declareEach(b, []string{"nDist", "ndist"},
		ts.Arrow(r1(obj), r1(obj), r3(obj, ratio, obj), r3(obj, ratio, obj)))
	declareEach(b, []string{"lVis", "lvis"},
		ts.Arrow(r1(loc), r1(loc), r2(loc, itv), r3(loc, boolean, loc)))
	b.Declare("interpol", ts.Arrow(r2(reg, itv), r1(loc), r2(loc, itv)))

	// Amount operations.
	b.Declare("fcont", ts.Arrow(r2(loc, itv), ratio))
	b.Declare("ocont", ts.Arrow(r2(obj, ratio), ratio))

	// Projection: extract one attribute of a relation as a collection.
	for pos := 1; pos <= 3; pos++ {
		rel, x := b.Var(), b.Var()
		name := []string{"pi1", "pi2", "pi3"}[pos-1]
		b.Declare(name, ts.Arrow(rel, r1(x)), ts.NewHasParam(rel, "R", x, pos))
	}

	// Selection: subset a relation by comparing one of its attributes.
	{
		x, rel := b.Var(), b.Var()
		b.Declare("select", ts.Arrow(ts.Arrow(x, x, boolean), rel, x, rel),
			ts.NewSubtypeBound(x, v.val),
			ts.NewHasParam(rel, "R", x, 0))
	}

	// Join: subset a relation to tuples whose attribute value occurs in
	// a collection.
	{
		rel, x := b.Var(), b.Var()
		b.Declare("join_subset", ts.Arrow(rel, r1(x), rel),
			ts.NewSubtypeBound(x, v.val),
			ts.NewHasParam(rel, "R", x, 0))
	}

	// Key join: substitute the quality of a quantified relation by a
	// quality keyed on either of its keys.
	{
		x, y, q, rel := b.Var(), b.Var(), b.Var(), b.Var()
		b.Declare("join_key", ts.Arrow(r3(x, qlt, y), rel, r3(x, q, y)),
			ts.NewSubtypeBound(x, v.val),
			ts.NewSubtypeBound(y, v.val),
			ts.NewSubtypeBound(q, v.qlt),
			ts.NewShapeLimit(rel, r2(x, q), r2(y, q)))
	}

	// Pairwise combination of two unary concepts of the same quality.
	for _, name := range []string{"join_with", "apply2"} {
		q1, q2, x := b.Var(), b.Var(), b.Var()
		b.Declare(name, ts.Arrow(ts.Arrow(q1, q1, q2), r2(x, q1), r2(x, q1), r2(x, q2)),
			ts.NewSubtypeBound(q1, v.qlt),
			ts.NewSubtypeBound(q2, v.qlt),
			ts.NewSubtypeBound(x, v.val))
	}

	// Grouping: summarize a quantified relation per left or right key.
	{
		rel, q, q1, x, y := b.Var(), b.Var(), b.Var(), b.Var(), b.Var()
		b.Declare("groupbyL", ts.Arrow(ts.Func(rel, q), r3(x, q, y), r2(x, q)),
			ts.NewSubtypeBound(x, v.val),
			ts.NewSubtypeBound(y, v.val),
			ts.NewSubtypeBound(q, v.qlt),
			ts.NewShapeLimit(rel, r1(x), r2(x, q1)))
	}
	{
		rel, q, q1, x, y := b.Var(), b.Var(), b.Var(), b.Var(), b.Var()
		b.Declare("groupbyR", ts.Arrow(ts.Func(rel, q), r3(x, q, y), r2(y, q)),
			ts.NewSubtypeBound(x, v.val),
			ts.NewSubtypeBound(y, v.val),
			ts.NewSubtypeBound(q, v.qlt),
			ts.NewShapeLimit(rel, r1(y), r2(y, q1)))
	}

	return b.Build()
}

func declareEach(b *algebra.Builder, names []string, skeleton ts.Type) {
	for _, name := range names {
		b.Declare(name, skeleton)
	}
}
