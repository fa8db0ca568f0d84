// Package cct provides the core concept transformation algebra for
// geographic information: the value hierarchy (objects, regions,
// locations and quality scales), the relation constructor R at arities
// one to three, and the full operator catalog. Usage:
//
//	alg, err := cct.New()
//	if err != nil { ... }
//	t, err := alg.Check("pi1 (objectregions data)")
//	// t renders as "R(Obj)"
//
// An Algebra is immutable after New and safe for concurrent checks.
package cct

import (
	"fmt"

	"github.com/quangis/cct/internal/algebra"
	ts "github.com/quangis/cct/internal/typesystem"
)

// Algebra bundles the value lattice, the signature table and a
// ready-made checker.
type Algebra struct {
	lattice *ts.Lattice
	table   *algebra.Table
	checker *algebra.Checker
}

// New builds the transformation algebra.
func New() (*Algebra, error) {
	lat, v, err := newVocabulary()
	if err != nil {
		return nil, fmt.Errorf("cct: %w", err)
	}
	table, err := newTable(lat, v)
	if err != nil {
		return nil, fmt.Errorf("cct: %w", err)
	}
	return &Algebra{
		lattice: lat,
		table:   table,
		checker: algebra.NewChecker(lat, table),
	}, nil
}

// Check types one expression, requiring a fully concrete result.
func (a *Algebra) Check(expression string) (ts.Type, error) {
	return a.checker.Check(expression)
}

// Checker builds a checker with caller options (e.g. AllowOpen) over
// the shared table.
func (a *Algebra) Checker(opts ...algebra.Option) *algebra.Checker {
	return algebra.NewChecker(a.lattice, a.table, opts...)
}

func (a *Algebra) Lattice() *ts.Lattice  { return a.lattice }
func (a *Algebra) Table() *algebra.Table { return a.table }

// vocabulary holds the declared operators newTable builds signatures
// from.
type vocabulary struct {
	val, obj, reg, loc     *ts.Operator
	qlt, nom, boolean, ord *ts.Operator
	itv, ratio, count      *ts.Operator
	r1, r2, r3             *ts.Operator
}

// newVocabulary declares the value hierarchy:
//
//	Val > Obj, Reg, Loc, Qlt
//	Qlt > Nom > Bool, Ord
//	Ord > Itv > Ratio > Count
//
// and the relation family R/1..R/3.
func newVocabulary() (*ts.Lattice, *vocabulary, error) {
	lat := ts.NewLattice()
	v := &vocabulary{}
	var err error
	declare := func(out **ts.Operator, name string, super *ts.Operator) {
		if err != nil {
			return
		}
		*out, err = lat.Declare(name, 0, super)
	}
	declare(&v.val, "Val", nil)
	declare(&v.obj, "Obj", v.val)
	declare(&v.reg, "Reg", v.val)
	declare(&v.loc, "Loc", v.val)
	declare(&v.qlt, "Qlt", v.val)
	declare(&v.nom, "Nom", v.qlt)
	declare(&v.boolean, "Bool", v.nom)
	declare(&v.ord, "Ord", v.nom)
	declare(&v.itv, "Itv", v.ord)
	declare(&v.ratio, "Ratio", v.itv)
	declare(&v.count, "Count", v.ratio)
	if err != nil {
		return nil, nil, err
	}
	if v.r1, err = lat.Declare("R", 1, nil); err != nil {
		return nil, nil, err
	}
	if v.r2, err = lat.Declare("R", 2, nil); err != nil {
		return nil, nil, err
	}
	if v.r3, err = lat.Declare("R", 3, nil); err != nil {
		return nil, nil, err
	}
	return lat, v, nil
}
