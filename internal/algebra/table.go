package algebra

import (
	"errors"
	"sort"

	"github.com/quangis/cct/internal/typesystem"
)

// Table is the immutable signature registry: operator name to its
// alternative schemes. It is built once through a Builder and is then
// safe to share across concurrent checks.
type Table struct {
	entries map[string][]*Scheme
}

// Lookup returns the alternative schemes registered under name, in
// declaration order, or nil for an unknown name.
func (t *Table) Lookup(name string) []*Scheme {
	return t.entries[name]
}

// Names returns every registered operator name, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of registered names.
func (t *Table) Len() int { return len(t.entries) }

// Builder accumulates schemes and produces an immutable Table. It is
// the only way to construct schemes: declaration is explicit and
// side-effect-free, and validation problems surface together at Build.
type Builder struct {
	lattice *typesystem.Lattice
	vars    *typesystem.VarSource
	entries map[string][]*Scheme
	errs    []error
}

func NewBuilder(lattice *typesystem.Lattice) *Builder {
	return &Builder{
		lattice: lattice,
		vars:    typesystem.NewVarSource(),
		entries: make(map[string][]*Scheme),
	}
}

// Var allocates a scheme-bound variable. Variables may be shared
// between the skeleton and constraints of one declaration; sharing
// across declarations is harmless because instantiation renames per
// scheme.
func (b *Builder) Var() typesystem.TVar {
	return b.vars.Fresh()
}

// Vars allocates n scheme-bound variables.
func (b *Builder) Vars(n int) []typesystem.TVar {
	out := make([]typesystem.TVar, n)
	for i := range out {
		out[i] = b.vars.Fresh()
	}
	return out
}

// Declare registers a transformation signature under name, inferring
// the arity from the skeleton's curried unfolding. Repeated
// declarations under one name become overload alternatives.
func (b *Builder) Declare(name string, skeleton typesystem.Type, cs ...typesystem.Constraint) {
	b.add(name, skeleton, typesystem.CurriedArity(skeleton), cs...)
}

// DeclareArity registers a signature with an explicit arity claim; a
// claim the skeleton cannot support is an UndefinedOperatorArity error
// at Build time.
func (b *Builder) DeclareArity(name string, skeleton typesystem.Type, arity int, cs ...typesystem.Constraint) {
	if max := typesystem.CurriedArity(skeleton); arity < 0 || arity > max {
		b.errs = append(b.errs, typesystem.NewUndefinedOperatorArity(name, arity, max))
		return
	}
	b.add(name, skeleton, arity, cs...)
}

// DeclareInput registers a data input: a non-arrow result type plus
// the number of synthetic source arguments it consumes.
func (b *Builder) DeclareInput(name string, result typesystem.Type, inputs int) {
	if _, arrow := result.(typesystem.TFunc); arrow || inputs < 0 {
		b.errs = append(b.errs, typesystem.NewUndefinedOperatorArity(name, inputs, 0))
		return
	}
	b.add(name, result, inputs)
}

func (b *Builder) add(name string, skeleton typesystem.Type, arity int, cs ...typesystem.Constraint) {
	b.entries[name] = append(b.entries[name], &Scheme{
		name:        name,
		skeleton:    skeleton,
		arity:       arity,
		constraints: cs,
	})
}

// Build freezes the accumulated declarations into a Table. Builders
// are single-use; the returned table shares no mutable state with the
// builder.
func (b *Builder) Build() (*Table, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	entries := make(map[string][]*Scheme, len(b.entries))
	for name, schemes := range b.entries {
		entries[name] = append([]*Scheme(nil), schemes...)
	}
	return &Table{entries: entries}, nil
}
