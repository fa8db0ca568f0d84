package parser_test

import (
	"strings"
	"testing"

	"github.com/quangis/cct/internal/ast"
	"github.com/quangis/cct/internal/parser"
)

func TestParseShapes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		// want is the canonical String() rendering of the AST, which
		// parenthesizes exactly the argument applications.
		want string
	}{
		{"single_atom", "xs", "xs"},
		{"application", "pi1 xs", "pi1 xs"},
		{"left_associative", "select leq rel x", "select leq rel x"},
		{"nested_argument", "pi1 (objectregions xs)", "pi1 (objectregions xs)"},
		{"redundant_parens", "((pi1) ((objectregions xs)))", "pi1 (objectregions xs)"},
		{"parenthesized_function", "(compose deify) reify", "compose deify reify"},
		{"deep", "a (b (c (d e)))", "a (b (c (d e)))"},
		{"whitespace", "  pi1\n\t(field   x)  ", "pi1 (field x)"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := parser.Parse(tc.input)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.input, err)
			}
			if got := expr.String(); got != tc.want {
				t.Errorf("parse %q = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseAssociativity(t *testing.T) {
	expr, err := parser.Parse("f x y")
	if err != nil {
		t.Fatal(err)
	}
	outer, ok := expr.(*ast.Application)
	if !ok {
		t.Fatalf("expected application, got %T", expr)
	}
	inner, ok := outer.Function.(*ast.Application)
	if !ok {
		t.Fatalf("f x y must parse as (f x) y, function is %T", outer.Function)
	}
	if inner.Function.String() != "f" || inner.Argument.String() != "x" {
		t.Errorf("inner application is %q, want f x", inner.String())
	}
	if outer.Argument.String() != "y" {
		t.Errorf("outer argument is %q, want y", outer.Argument.String())
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unclosed", "pi1 (objectregions xs"},
		{"stray_close", "pi1 xs)"},
		{"empty_group", "pi1 ()"},
		{"only_parens", "(())"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parser.Parse(tc.input); err == nil {
				t.Errorf("parse %q: expected error", tc.input)
			}
		})
	}
}

func TestParseDepthGuard(t *testing.T) {
	deep := strings.Repeat("(", 600) + "x" + strings.Repeat(")", 600)
	if _, err := parser.Parse(deep); err == nil {
		t.Fatal("expected depth guard to reject 600 nesting levels")
	}
}
