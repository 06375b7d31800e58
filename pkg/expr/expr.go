package expr

import (
	"fmt"
	"strings"
)

// VarKind identifies the domain of a decision variable.
type VarKind int

const (
	// BoolKind is a boolean decision variable.
	BoolKind VarKind = iota
	// RealKind is a continuous (floating point) decision variable.
	RealKind
	// IntKind is an integer decision variable.
	IntKind
)

// String returns a short human-readable name for the kind.
func (k VarKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case RealKind:
		return "real"
	case IntKind:
		return "int"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Var is a single decision variable. Variables are created through a VarSet
// and are identified by a dense id; the name is informational only.
type Var struct {
	id   int
	kind VarKind
	name string
}

// ID returns the variable's dense id within its VarSet.
func (v *Var) ID() int { return v.id }

// Kind returns the variable's domain.
func (v *Var) Kind() VarKind { return v.kind }

// Name returns the informational name given at allocation time.
func (v *Var) Name() string { return v.name }

func (v *Var) String() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("%s#%d", v.kind, v.id)
}

func (v *Var) isExpr() {}

// VarSet allocates and tracks decision variables. A VarSet is owned by one
// problem; variables from different sets must never be mixed in one
// expression tree.
type VarSet struct {
	vars []*Var
}

// NewVarSet returns an empty variable set.
func NewVarSet() *VarSet {
	return &VarSet{}
}

func (s *VarSet) alloc(kind VarKind, name string) *Var {
	v := &Var{id: len(s.vars), kind: kind, name: name}
	s.vars = append(s.vars, v)
	return v
}

// NewBool allocates a boolean variable.
func (s *VarSet) NewBool(name string) *Var { return s.alloc(BoolKind, name) }

// NewReal allocates a real-valued variable.
func (s *VarSet) NewReal(name string) *Var { return s.alloc(RealKind, name) }

// NewInt allocates an integer variable.
func (s *VarSet) NewInt(name string) *Var { return s.alloc(IntKind, name) }

// Len returns the number of variables allocated so far.
func (s *VarSet) Len() int { return len(s.vars) }

// Var returns the variable with the given id, or nil if out of range.
func (s *VarSet) Var(id int) *Var {
	if id < 0 || id >= len(s.vars) {
		return nil
	}
	return s.vars[id]
}

// Expr is a node in an immutable expression tree. The concrete node types
// are exported so the solver can normalize trees, but they must be treated
// as read-only once constructed.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Literal is a numeric constant. Boolean truth is expressed by comparing a
// boolean variable against Lit(1).
type Literal struct {
	Value float64
}

// Lit returns a numeric constant expression.
func Lit(v float64) Literal { return Literal{Value: v} }

func (l Literal) isExpr() {}

func (l Literal) String() string { return fmt.Sprintf("%g", l.Value) }

// Conjunction is the n-ary logical AND of its terms.
type Conjunction struct {
	Terms []Expr
}

// And returns the conjunction of the given terms.
func And(terms ...Expr) *Conjunction {
	return &Conjunction{Terms: append([]Expr(nil), terms...)}
}

func (c *Conjunction) isExpr() {}

func (c *Conjunction) String() string { return nary("and", c.Terms) }

// Disjunction is the n-ary logical OR of its terms. An empty disjunction is
// unsatisfiable.
type Disjunction struct {
	Terms []Expr
}

// Or returns the disjunction of the given terms.
func Or(terms ...Expr) *Disjunction {
	return &Disjunction{Terms: append([]Expr(nil), terms...)}
}

func (d *Disjunction) isExpr() {}

func (d *Disjunction) String() string { return nary("or", d.Terms) }

// Equality requires its two sides to take the same value.
type Equality struct {
	Left, Right Expr
}

// Eq returns the constraint left == right.
func Eq(left, right Expr) *Equality {
	return &Equality{Left: left, Right: right}
}

func (e *Equality) isExpr() {}

func (e *Equality) String() string { return fmt.Sprintf("(%s == %s)", e.Left, e.Right) }

// LessOrEqual requires its left side to be at most its right side.
type LessOrEqual struct {
	Left, Right Expr
}

// LE returns the constraint left <= right.
func LE(left, right Expr) *LessOrEqual {
	return &LessOrEqual{Left: left, Right: right}
}

// GE returns the constraint left >= right, expressed as right <= left.
func GE(left, right Expr) *LessOrEqual {
	return &LessOrEqual{Left: right, Right: left}
}

func (le *LessOrEqual) isExpr() {}

func (le *LessOrEqual) String() string { return fmt.Sprintf("(%s <= %s)", le.Left, le.Right) }

// Sum is the arithmetic sum of its terms. An empty sum is zero.
type Sum struct {
	Terms []Expr
}

// SumOf returns the sum of the given terms.
func SumOf(terms ...Expr) *Sum {
	return &Sum{Terms: append([]Expr(nil), terms...)}
}

func (s *Sum) isExpr() {}

func (s *Sum) String() string { return nary("sum", s.Terms) }

// Conditional selects Value when the boolean variable is true and zero
// otherwise.
type Conditional struct {
	If   *Var
	Then Expr
}

// If returns an expression contributing then when cond is true, else zero.
func If(cond *Var, then Expr) *Conditional {
	return &Conditional{If: cond, Then: then}
}

func (c *Conditional) isExpr() {}

func (c *Conditional) String() string { return fmt.Sprintf("(if %s then %s else 0)", c.If, c.Then) }

func nary(op string, terms []Expr) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("(%s %s)", op, strings.Join(parts, " "))
}
