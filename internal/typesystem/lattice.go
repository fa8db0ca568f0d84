package typesystem

import (
	"fmt"
	"sort"

	set "github.com/hashicorp/go-set/v3"
)

// Lattice holds the declared type operators and their supertype edges.
// Each operator has at most one direct supertype, so the hierarchy is
// a forest; subtyping is its reflexive-transitive closure.
//
// A Lattice is built once at startup and is read-only afterwards, so
// it may be shared freely across concurrent checks.
type Lattice struct {
	families map[string][]*Operator
}

func NewLattice() *Lattice {
	return &Lattice{families: make(map[string][]*Operator)}
}

// Declare registers an operator. Redeclaring a name at the same arity
// or introducing a cycle fails with CyclicHierarchy. Only nullary
// operators may take part in the subtype hierarchy: a parametric
// operator can neither have nor be a supertype.
func (l *Lattice) Declare(name string, arity int, super *Operator) (*Operator, error) {
	if _, ok := l.Operator(name, arity); ok {
		return nil, NewCyclicHierarchy(fmt.Sprintf("operator %s/%d is already declared", name, arity))
	}
	if super != nil {
		if arity != 0 || super.Arity != 0 {
			return nil, NewCyclicHierarchy(fmt.Sprintf(
				"parametric operator %s cannot take part in the subtype hierarchy", name))
		}
		if _, ok := l.Operator(super.Name, 0); !ok {
			return nil, NewCyclicHierarchy(fmt.Sprintf(
				"supertype %s of %s is not declared in this lattice", super.Name, name))
		}
		// A fresh operator cannot be on an existing chain, but a walk
		// catches corrupted hand-built hierarchies all the same.
		seen := set.New[*Operator](4)
		for o := super; o != nil; o = o.super {
			if o.Name == name && o.Arity == arity || !seen.Insert(o) {
				return nil, NewCyclicHierarchy(fmt.Sprintf(
					"declaring %s under %s would create a cycle", name, super.Name))
			}
		}
	}
	op := &Operator{Name: name, Arity: arity, super: super}
	l.families[name] = append(l.families[name], op)
	return op, nil
}

// Operator looks up the operator with the given display name and
// arity.
func (l *Lattice) Operator(name string, arity int) (*Operator, bool) {
	for _, op := range l.families[name] {
		if op.Arity == arity {
			return op, true
		}
	}
	return nil, false
}

// Family returns every operator sharing a display name, e.g. the
// relation constructors R/1, R/2 and R/3.
func (l *Lattice) Family(name string) []*Operator {
	return l.families[name]
}

// Names returns all declared display names, sorted.
func (l *Lattice) Names() []string {
	names := make([]string, 0, len(l.families))
	for name := range l.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSubtype reports whether a is b or a's supertype chain reaches b.
func (l *Lattice) IsSubtype(a, b *Operator) bool {
	for o := a; o != nil; o = o.super {
		if o == b {
			return true
		}
	}
	return false
}

// MeetIsEmpty reports that neither operator subsumes the other, which
// is what makes two concrete types un-unifiable.
func (l *Lattice) MeetIsEmpty(a, b *Operator) bool {
	return !l.IsSubtype(a, b) && !l.IsSubtype(b, a)
}

// LeastUpperBoundBelow returns the most specific common ancestor of a
// and b that is itself a subtype of ceiling. A nil ceiling leaves the
// search unrestricted. It fails with NoCommonSupertype when the
// ancestor does not exist or sits above the ceiling.
func (l *Lattice) LeastUpperBoundBelow(a, b, ceiling *Operator) (*Operator, error) {
	ancestors := set.New[*Operator](4)
	for o := a; o != nil; o = o.super {
		ancestors.Insert(o)
	}
	for o := b; o != nil; o = o.super {
		if !ancestors.Contains(o) {
			continue
		}
		// First common ancestor on the way up is the most specific
		// one; anything above it cannot be below the ceiling if this
		// one is not.
		if ceiling != nil && !l.IsSubtype(o, ceiling) {
			break
		}
		return o, nil
	}
	return nil, NewNoCommonSupertype(a, b, ceiling)
}
