package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangis/cct/internal/algebra"
	ts "github.com/quangis/cct/internal/typesystem"
)

func TestLoadBuildsWorkingAlgebra(t *testing.T) {
	lat, table, err := Load(filepath.Join("testdata", "measures.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8, table.Len())

	c := algebra.NewChecker(lat, table)
	testCases := []struct {
		expr string
		want string
	}{
		{"size x", "Ratio"},
		{"pick (objects o)", "Reg"},
		{"combine one one", "Count"},
		{"content (objects o)", "R(Obj, Reg)"},
		{"origin site", "Loc"},
	}
	for _, tc := range testCases {
		got, err := c.Check(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got.String(), tc.expr)
	}

	_, err = c.Check("size one")
	require.Error(t, err)
	kind, ok := ts.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ts.KindSubtypeMismatch, kind)
}

func TestParseRejectsMalformedFiles(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{
			name: "undeclared supertype",
			yaml: `
types:
  - name: Obj
    super: Val
`,
		},
		{
			name: "cyclic redefinition",
			yaml: `
types:
  - name: Val
  - name: Val
`,
		},
		{
			name: "constraint variable not in type",
			yaml: `
types:
  - name: Val
signatures:
  - name: f
    type: Val ** Val
    constraints:
      - subtype: {var: q, bound: Val}
`,
		},
		{
			name: "two constraint kinds in one entry",
			yaml: `
types:
  - name: Val
signatures:
  - name: f
    type: q ** q
    constraints:
      - subtype: {var: q, bound: Val}
        member: {var: q, of: [Val]}
`,
		},
		{
			name: "unknown operator in type",
			yaml: `
types:
  - name: Val
signatures:
  - name: f
    type: Val ** Missing
`,
		},
		{
			name: "arity beyond signature",
			yaml: `
types:
  - name: Val
signatures:
  - name: f
    type: Val ** Val
    arity: 3
`,
		},
		{
			name: "data input with arrow type",
			yaml: `
types:
  - name: Val
signatures:
  - name: f
    type: Val ** Val
    inputs: 1
`,
		},
		{
			name: "not yaml",
			yaml: `{{{`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestShapePatternsShareSignatureScope(t *testing.T) {
	src := `
types:
  - name: Val
  - name: Qty
    super: Val
  - name: R
    arity: 2
signatures:
  - name: source
    type: R(Val, Qty)
    inputs: 0
  - name: quality
    type: rel ** q
    constraints:
      - subtype: {var: q, bound: Val}
      - shape: {var: rel, oneof: ["R(k, q)"]}
`
	lat, table, err := Parse([]byte(src))
	require.NoError(t, err)

	sch := table.Lookup("quality")[0]
	require.Len(t, sch.Constraints(), 2)

	// The pattern's q is the signature's q, so matching the relation
	// pins the result; k is a local placeholder and must not leak.
	c := algebra.NewChecker(lat, table)
	got, err := c.Check("quality source")
	require.NoError(t, err)
	assert.Equal(t, "Qty", got.String())
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join("testdata", "no-such-file.yaml"))
	require.Error(t, err)
}
