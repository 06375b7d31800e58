package expr

import (
	"testing"
)

func TestVarSetAllocation(t *testing.T) {
	s := NewVarSet()

	b := s.NewBool("running[0]")
	r := s.NewReal("cpu_cost[0]")
	i := s.NewInt("mem_cost[0]")

	if b.ID() != 0 || r.ID() != 1 || i.ID() != 2 {
		t.Errorf("expected dense ids 0,1,2, got %d,%d,%d", b.ID(), r.ID(), i.ID())
	}
	if b.Kind() != BoolKind {
		t.Errorf("expected BoolKind, got %v", b.Kind())
	}
	if r.Kind() != RealKind {
		t.Errorf("expected RealKind, got %v", r.Kind())
	}
	if i.Kind() != IntKind {
		t.Errorf("expected IntKind, got %v", i.Kind())
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 variables, got %d", s.Len())
	}
	if s.Var(1) != r {
		t.Error("Var(1) did not return the allocated variable")
	}
	if s.Var(3) != nil || s.Var(-1) != nil {
		t.Error("out-of-range Var lookup should return nil")
	}
}

func TestExprString(t *testing.T) {
	s := NewVarSet()
	b := s.NewBool("b")
	x := s.NewReal("x")

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{name: "literal", expr: Lit(2.5), want: "2.5"},
		{name: "variable", expr: x, want: "x"},
		{name: "equality", expr: Eq(x, Lit(4)), want: "(x == 4)"},
		{name: "less or equal", expr: LE(x, Lit(8)), want: "(x <= 8)"},
		{name: "greater or equal flips", expr: GE(x, Lit(0)), want: "(0 <= x)"},
		{name: "conditional", expr: If(b, x), want: "(if b then x else 0)"},
		{name: "sum", expr: SumOf(x, Lit(1)), want: "(sum x 1)"},
		{name: "conjunction", expr: And(Eq(x, Lit(4)), b), want: "(and (x == 4) b)"},
		{name: "disjunction", expr: Or(b), want: "(or b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructorsCopyTerms(t *testing.T) {
	s := NewVarSet()
	terms := []Expr{s.NewBool("a"), s.NewBool("b")}

	conj := And(terms...)
	terms[0] = Lit(0)

	if conj.Terms[0] == terms[0] {
		t.Error("And must copy its term slice")
	}
}
