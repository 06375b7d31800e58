package solver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/placekit/bladealloc/pkg/expr"
)

// weightRef is one conditional term of a capacity row: when the boolean
// variable is true the row consumes the referenced numeric variable's value
// (or a literal amount).
type weightRef struct {
	boolID int
	numID  int // -1 when the contribution is a literal
	lit    float64
}

// row is a normalized capacity constraint: the sum of the active terms'
// weights must not exceed bound.
type row struct {
	bound float64
	terms map[int]weightRef // keyed by boolID
	class string            // resource class key, see classKey
}

// option is one way to satisfy a task's placement disjunction: all listed
// booleans set true.
type option struct {
	bools []int
}

// taskNode is a normalized soft task constraint.
type taskNode struct {
	index   int // position in the task constraint input slice
	options []option
	viable  bool
}

// problem is the fully normalized constraint system handed to the search.
type problem struct {
	vars *expr.VarSet

	lower      []float64
	hasLower   []bool
	upper      []float64
	hasUpper   []bool
	binding    []float64
	hasBinding []bool

	rows  []*row
	tasks []*taskNode
}

// normalize translates the two constraint collections into the problem
// form. Resource constraints are hard; task constraints are soft. Shapes
// outside the supported grammar fail with ErrUnsupported.
func normalize(vars *expr.VarSet, resource, task []expr.Expr) (*problem, error) {
	n := vars.Len()
	p := &problem{
		vars:       vars,
		lower:      make([]float64, n),
		hasLower:   make([]bool, n),
		upper:      make([]float64, n),
		hasUpper:   make([]bool, n),
		binding:    make([]float64, n),
		hasBinding: make([]bool, n),
	}

	for _, e := range resource {
		for _, leaf := range flatten(e) {
			if err := p.addResource(leaf); err != nil {
				return nil, err
			}
		}
	}

	for i, e := range task {
		node, err := p.addTask(i, e)
		if err != nil {
			return nil, err
		}
		p.tasks = append(p.tasks, node)
	}

	if err := p.check(); err != nil {
		return nil, err
	}
	p.assignClasses()
	return p, nil
}

// flatten recursively expands conjunctions into their leaves.
func flatten(e expr.Expr) []expr.Expr {
	conj, ok := e.(*expr.Conjunction)
	if !ok {
		return []expr.Expr{e}
	}
	var out []expr.Expr
	for _, t := range conj.Terms {
		out = append(out, flatten(t)...)
	}
	return out
}

// addResource normalizes one hard constraint leaf.
func (p *problem) addResource(e expr.Expr) error {
	switch c := e.(type) {
	case *expr.LessOrEqual:
		switch left := c.Left.(type) {
		case expr.Literal:
			v, ok := c.Right.(*expr.Var)
			if !ok {
				return fmt.Errorf("lower bound on non-variable %s: %w", c, ErrUnsupported)
			}
			p.setLower(v.ID(), left.Value)
			return nil
		case *expr.Var:
			lit, ok := c.Right.(expr.Literal)
			if !ok {
				return fmt.Errorf("upper bound with non-literal limit %s: %w", c, ErrUnsupported)
			}
			p.setUpper(left.ID(), lit.Value)
			return nil
		case *expr.Sum:
			lit, ok := c.Right.(expr.Literal)
			if !ok {
				return fmt.Errorf("capacity row with non-literal limit %s: %w", c, ErrUnsupported)
			}
			return p.addRow(left, lit.Value)
		default:
			return fmt.Errorf("cannot normalize %s: %w", c, ErrUnsupported)
		}
	case *expr.Equality:
		v, lit, err := varLit(c)
		if err != nil {
			return err
		}
		p.setLower(v.ID(), lit)
		p.setUpper(v.ID(), lit)
		return nil
	default:
		return fmt.Errorf("cannot normalize resource constraint %s: %w", e, ErrUnsupported)
	}
}

// addRow normalizes sum(if b then w else 0, ...) <= bound.
func (p *problem) addRow(sum *expr.Sum, bound float64) error {
	r := &row{bound: bound, terms: make(map[int]weightRef, len(sum.Terms))}
	for _, t := range sum.Terms {
		switch term := t.(type) {
		case expr.Literal:
			// Constant load folds into the bound.
			r.bound -= term.Value
		case *expr.Conditional:
			if term.If.Kind() != expr.BoolKind {
				return fmt.Errorf("conditional on non-boolean %s: %w", term, ErrUnsupported)
			}
			ref := weightRef{boolID: term.If.ID(), numID: -1}
			switch then := term.Then.(type) {
			case *expr.Var:
				ref.numID = then.ID()
			case expr.Literal:
				ref.lit = then.Value
			default:
				return fmt.Errorf("conditional value %s is neither variable nor literal: %w", term, ErrUnsupported)
			}
			if _, dup := r.terms[ref.boolID]; dup {
				return fmt.Errorf("duplicate conditional term for %s in one capacity row: %w", term.If, ErrUnsupported)
			}
			r.terms[ref.boolID] = ref
		default:
			return fmt.Errorf("capacity row term %s: %w", t, ErrUnsupported)
		}
	}
	p.rows = append(p.rows, r)
	return nil
}

// addTask normalizes one soft task constraint into cost bindings plus a
// list of placement options.
func (p *problem) addTask(index int, e expr.Expr) (*taskNode, error) {
	node := &taskNode{index: index, viable: true}

	var mandatory []int
	var disj *expr.Disjunction
	type bind struct {
		id    int
		value float64
	}
	var binds []bind

	for _, leaf := range flatten(e) {
		switch c := leaf.(type) {
		case *expr.Equality:
			v, lit, err := varLit(c)
			if err != nil {
				return nil, err
			}
			if v.Kind() == expr.BoolKind {
				if lit != 1 {
					return nil, fmt.Errorf("boolean equality %s must compare against 1: %w", c, ErrUnsupported)
				}
				mandatory = append(mandatory, v.ID())
				continue
			}
			binds = append(binds, bind{id: v.ID(), value: lit})
		case *expr.Disjunction:
			if disj != nil {
				return nil, fmt.Errorf("task constraint %d has more than one placement disjunction: %w", index, ErrUnsupported)
			}
			disj = c
		case *expr.Var:
			if c.Kind() != expr.BoolKind {
				return nil, fmt.Errorf("bare non-boolean variable %s in task constraint: %w", c, ErrUnsupported)
			}
			mandatory = append(mandatory, c.ID())
		default:
			return nil, fmt.Errorf("cannot normalize task constraint leaf %s: %w", leaf, ErrUnsupported)
		}
	}

	// Apply cost bindings. A binding that contradicts an earlier one or a
	// hard variable bound makes this task permanently unplaceable; it does
	// not make the system infeasible because the constraint is soft.
	for _, b := range binds {
		if p.hasBinding[b.id] && p.binding[b.id] != b.value {
			node.viable = false
			continue
		}
		if p.hasLower[b.id] && b.value < p.lower[b.id] {
			node.viable = false
			continue
		}
		if p.hasUpper[b.id] && b.value > p.upper[b.id] {
			node.viable = false
			continue
		}
		p.binding[b.id] = b.value
		p.hasBinding[b.id] = true
	}

	if disj == nil {
		if len(mandatory) == 0 {
			return nil, fmt.Errorf("task constraint %d has no placement disjunction: %w", index, ErrUnsupported)
		}
		node.options = []option{{bools: mandatory}}
		return node, nil
	}

	if len(disj.Terms) == 0 {
		// Vacuously false placement. The builder is expected to reject
		// empty candidate sets before reaching the solver.
		node.viable = false
		return node, nil
	}

	for _, term := range disj.Terms {
		bools, err := booleans(term)
		if err != nil {
			return nil, err
		}
		opt := option{bools: append(append([]int(nil), mandatory...), bools...)}
		node.options = append(node.options, opt)
	}
	return node, nil
}

// booleans extracts the boolean variables that a disjunction term requires
// to be true.
func booleans(e expr.Expr) ([]int, error) {
	switch c := e.(type) {
	case *expr.Var:
		if c.Kind() != expr.BoolKind {
			return nil, fmt.Errorf("placement option on non-boolean %s: %w", c, ErrUnsupported)
		}
		return []int{c.ID()}, nil
	case *expr.Equality:
		v, lit, err := varLit(c)
		if err != nil {
			return nil, err
		}
		if v.Kind() != expr.BoolKind || lit != 1 {
			return nil, fmt.Errorf("placement option %s must assert a boolean: %w", c, ErrUnsupported)
		}
		return []int{v.ID()}, nil
	case *expr.Conjunction:
		var out []int
		for _, t := range flatten(c) {
			ids, err := booleans(t)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("placement option %s: %w", e, ErrUnsupported)
	}
}

// varLit destructures var == literal, accepting either operand order.
func varLit(e *expr.Equality) (*expr.Var, float64, error) {
	if v, ok := e.Left.(*expr.Var); ok {
		if lit, ok := e.Right.(expr.Literal); ok {
			return v, lit.Value, nil
		}
	}
	if v, ok := e.Right.(*expr.Var); ok {
		if lit, ok := e.Left.(expr.Literal); ok {
			return v, lit.Value, nil
		}
	}
	return nil, 0, fmt.Errorf("equality %s is not variable == literal: %w", e, ErrUnsupported)
}

// weight resolves the amount a row term consumes when active: the bound
// value of its cost variable, the variable's lower bound when unbound, or
// the literal amount.
func (p *problem) weight(ref weightRef) float64 {
	if ref.numID < 0 {
		return ref.lit
	}
	if p.hasBinding[ref.numID] {
		return p.binding[ref.numID]
	}
	if p.hasLower[ref.numID] {
		return p.lower[ref.numID]
	}
	return 0
}

// check validates the hard side of the system with every task dropped.
// Failures here are construction bugs, surfaced as ErrInfeasible.
func (p *problem) check() error {
	for id := 0; id < p.vars.Len(); id++ {
		if p.hasLower[id] && p.hasUpper[id] && p.lower[id] > p.upper[id] {
			return fmt.Errorf("variable %s has lower bound %g above upper bound %g: %w",
				p.vars.Var(id), p.lower[id], p.upper[id], ErrInfeasible)
		}
	}
	for _, r := range p.rows {
		if r.bound < 0 {
			return fmt.Errorf("capacity row bound %g is negative: %w", r.bound, ErrInfeasible)
		}
		for _, ref := range r.terms {
			if w := p.weight(ref); w < 0 || math.IsNaN(w) {
				return fmt.Errorf("negative conditional contribution %g: %w", w, ErrUnsupported)
			}
		}
	}
	return nil
}

// setLower tightens a variable's lower bound.
func (p *problem) setLower(id int, v float64) {
	if !p.hasLower[id] || v > p.lower[id] {
		p.lower[id] = v
		p.hasLower[id] = true
	}
}

// setUpper tightens a variable's upper bound.
func (p *problem) setUpper(id int, v float64) {
	if !p.hasUpper[id] || v < p.upper[id] {
		p.upper[id] = v
		p.hasUpper[id] = true
	}
}

// assignClasses groups rows that draw from the same set of cost variables
// into one resource class. Rows of one class are interchangeable pools of
// the same resource (e.g. every blade's CPU row); the search's relaxation
// bound aggregates remaining capacity per class.
func (p *problem) assignClasses() {
	for _, r := range p.rows {
		ids := make([]int, 0, len(r.terms))
		for _, ref := range r.terms {
			if ref.numID >= 0 {
				ids = append(ids, ref.numID)
			}
		}
		sort.Ints(ids)
		var b strings.Builder
		for _, id := range ids {
			fmt.Fprintf(&b, "%d,", id)
		}
		r.class = b.String()
	}
}
