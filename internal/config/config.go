// Package config loads algebra definitions from YAML.
//
// A signature file declares the operator lattice and the signature
// table as data, so a deployment can check expressions against a
// vocabulary without recompiling:
//
//	types:
//	  - name: Val
//	  - name: Obj
//	    super: Val
//	  - name: R
//	    arity: 2
//	signatures:
//	  - name: size
//	    type: Reg ** Ratio
//	  - name: objects
//	    type: R(Obj, Reg)
//	    inputs: 1
//	  - name: project
//	    type: rel ** R(x, y)
//	    constraints:
//	      - param: {var: rel, family: R, param: x, at: 1}
//
// Types are resolved with the same notation the checker renders, and
// variable names are scoped per signature: "x" in a signature's type
// and in its constraints is one variable.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quangis/cct/internal/algebra"
	ts "github.com/quangis/cct/internal/typesystem"
)

// File is the top-level YAML document.
type File struct {
	// Types declares the operator lattice, supertypes before subtypes.
	Types []TypeDecl `yaml:"types"`

	// Signatures declares the operators of the algebra.
	Signatures []SignatureDecl `yaml:"signatures"`
}

// TypeDecl declares one operator of the lattice.
type TypeDecl struct {
	Name string `yaml:"name"`

	// Arity makes the operator parametric. Parametric operators take
	// no supertype; operators sharing a name at different arities form
	// a family.
	Arity int `yaml:"arity,omitempty"`

	// Super names the direct supertype. It must be declared earlier in
	// the file and be nullary.
	Super string `yaml:"super,omitempty"`
}

// SignatureDecl declares one operator signature.
type SignatureDecl struct {
	Name string `yaml:"name"`

	// Type is the signature in checker notation, e.g. "Reg ** Ratio".
	Type string `yaml:"type"`

	// Arity caps how many of the arrow's domains count as proper
	// arguments. Defaults to the full curried spine.
	Arity *int `yaml:"arity,omitempty"`

	// Inputs marks a data source taking this many opaque inputs. The
	// type must not be an arrow.
	Inputs *int `yaml:"inputs,omitempty"`

	Constraints []ConstraintDecl `yaml:"constraints,omitempty"`
}

// ConstraintDecl is a tagged union: exactly one field is set.
type ConstraintDecl struct {
	Subtype *SubtypeDecl `yaml:"subtype,omitempty"`
	Member  *MemberDecl  `yaml:"member,omitempty"`
	Param   *ParamDecl   `yaml:"param,omitempty"`
	Shape   *ShapeDecl   `yaml:"shape,omitempty"`
}

// SubtypeDecl bounds a signature variable by a nullary operator.
type SubtypeDecl struct {
	Var   string `yaml:"var"`
	Bound string `yaml:"bound"`
}

// MemberDecl restricts a signature variable to enumerated types.
type MemberDecl struct {
	Var string   `yaml:"var"`
	Of  []string `yaml:"of"`
}

// ParamDecl links a container variable to a parameter of an operator
// family. At is 1-based; 0 (or omitted) means any position.
type ParamDecl struct {
	Var    string `yaml:"var"`
	Family string `yaml:"family"`
	Param  string `yaml:"param"`
	At     int    `yaml:"at,omitempty"`
}

// ShapeDecl restricts a signature variable to structural patterns.
// Pattern variables are placeholders local to each pattern, not the
// signature's variables.
type ShapeDecl struct {
	Var   string   `yaml:"var"`
	OneOf []string `yaml:"oneof"`
}

// Load reads and builds a signature file.
func Load(path string) (*ts.Lattice, *algebra.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	lat, table, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}
	slog.Info("loaded algebra configuration",
		"path", path, "types", len(lat.Names()), "signatures", table.Len())
	return lat, table, nil
}

// Parse builds the lattice and signature table from YAML bytes.
func Parse(data []byte) (*ts.Lattice, *algebra.Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse yaml: %w", err)
	}
	return f.Build()
}

// Build materializes the declarations.
func (f *File) Build() (*ts.Lattice, *algebra.Table, error) {
	lat, err := f.buildLattice()
	if err != nil {
		return nil, nil, err
	}
	table, err := f.buildTable(lat)
	if err != nil {
		return nil, nil, err
	}
	return lat, table, nil
}

func (f *File) buildLattice() (*ts.Lattice, error) {
	lat := ts.NewLattice()
	declared := make(map[string]*ts.Operator)
	for _, d := range f.Types {
		if d.Name == "" {
			return nil, fmt.Errorf("type declaration without a name")
		}
		var super *ts.Operator
		if d.Super != "" {
			s, ok := declared[d.Super]
			if !ok {
				return nil, fmt.Errorf("type %s: supertype %s not declared before it", d.Name, d.Super)
			}
			super = s
		}
		op, err := lat.Declare(d.Name, d.Arity, super)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", d.Name, err)
		}
		if d.Arity == 0 {
			declared[d.Name] = op
		}
	}
	return lat, nil
}

func (f *File) buildTable(lat *ts.Lattice) (*algebra.Table, error) {
	b := algebra.NewBuilder(lat)
	for _, d := range f.Signatures {
		if err := declareSignature(b, lat, d); err != nil {
			return nil, fmt.Errorf("signature %s: %w", d.Name, err)
		}
	}
	table, err := b.Build()
	if err != nil {
		return nil, err
	}
	return table, nil
}

func declareSignature(b *algebra.Builder, lat *ts.Lattice, d SignatureDecl) error {
	if d.Name == "" {
		return fmt.Errorf("signature without a name")
	}
	vars := ts.NewVarNames(b.Var)
	skeleton, err := ts.ParseTypeNotation(d.Type, lat, vars)
	if err != nil {
		return err
	}

	if d.Inputs != nil {
		if d.Arity != nil {
			return fmt.Errorf("inputs and arity are mutually exclusive")
		}
		if len(d.Constraints) > 0 {
			return fmt.Errorf("data inputs take no constraints")
		}
		b.DeclareInput(d.Name, skeleton, *d.Inputs)
		return nil
	}

	cs := make([]ts.Constraint, 0, len(d.Constraints))
	for i, cd := range d.Constraints {
		c, err := buildConstraint(b, lat, vars, cd)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", i+1, err)
		}
		cs = append(cs, c)
	}

	if d.Arity != nil {
		b.DeclareArity(d.Name, skeleton, *d.Arity, cs...)
	} else {
		b.Declare(d.Name, skeleton, cs...)
	}
	return nil
}

func buildConstraint(b *algebra.Builder, lat *ts.Lattice, vars *ts.VarNames, cd ConstraintDecl) (ts.Constraint, error) {
	set := 0
	for _, on := range []bool{cd.Subtype != nil, cd.Member != nil, cd.Param != nil, cd.Shape != nil} {
		if on {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of subtype/member/param/shape must be set")
	}

	switch {
	case cd.Subtype != nil:
		v, err := signatureVar(vars, cd.Subtype.Var)
		if err != nil {
			return nil, err
		}
		bound, ok := lat.Operator(cd.Subtype.Bound, 0)
		if !ok {
			return nil, fmt.Errorf("subtype bound %s is not a declared nullary type", cd.Subtype.Bound)
		}
		return ts.NewSubtypeBound(v, bound), nil

	case cd.Member != nil:
		v, err := signatureVar(vars, cd.Member.Var)
		if err != nil {
			return nil, err
		}
		if len(cd.Member.Of) == 0 {
			return nil, fmt.Errorf("member constraint needs at least one alternative")
		}
		alts := make([]ts.Type, len(cd.Member.Of))
		for i, src := range cd.Member.Of {
			t, err := ts.ParseTypeNotation(src, lat, vars)
			if err != nil {
				return nil, err
			}
			alts[i] = t
		}
		return ts.NewMemberOf(v, alts...), nil

	case cd.Param != nil:
		v, err := signatureVar(vars, cd.Param.Var)
		if err != nil {
			return nil, err
		}
		if len(lat.Family(cd.Param.Family)) == 0 {
			return nil, fmt.Errorf("family %s is not declared", cd.Param.Family)
		}
		param, err := ts.ParseTypeNotation(cd.Param.Param, lat, vars)
		if err != nil {
			return nil, err
		}
		if cd.Param.At < 0 {
			return nil, fmt.Errorf("param position %d is negative", cd.Param.At)
		}
		return ts.NewHasParam(v, cd.Param.Family, param, cd.Param.At), nil

	default:
		v, err := signatureVar(vars, cd.Shape.Var)
		if err != nil {
			return nil, err
		}
		if len(cd.Shape.OneOf) == 0 {
			return nil, fmt.Errorf("shape constraint needs at least one pattern")
		}
		patterns := make([]ts.Type, len(cd.Shape.OneOf))
		for i, src := range cd.Shape.OneOf {
			// Patterns resolve in the signature's scope: a variable
			// named in the signature type links the pattern to it, a
			// name introduced here stays a local placeholder.
			t, err := ts.ParseTypeNotation(src, lat, vars)
			if err != nil {
				return nil, err
			}
			patterns[i] = t
		}
		return ts.NewShapeLimit(v, patterns...), nil
	}
}

// signatureVar resolves a constraint's variable against the
// signature's scope; naming a variable the type never mentions is a
// mistake worth rejecting early.
func signatureVar(vars *ts.VarNames, name string) (ts.TVar, error) {
	if name == "" {
		return ts.TVar{}, fmt.Errorf("constraint without a variable name")
	}
	if !vars.Has(name) {
		return ts.TVar{}, fmt.Errorf("variable %s does not occur in the signature type", name)
	}
	return vars.Get(name), nil
}
