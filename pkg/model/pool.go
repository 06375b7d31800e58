package model

import (
	"fmt"

	"github.com/placekit/bladealloc/pkg/expr"
)

// Pool is a blade pool configuration sized for a fixed number of task
// slots. It owns the variable set for the whole problem and the slot cost
// table: the shared per-slot CPU and memory cost variables that every blade
// of the pool refers to.
type Pool struct {
	numTasks int
	vars     *expr.VarSet

	// Shared slot cost variables. cpuCost[i] and memCost[i] hold the cost
	// declared by the task occupying slot i, wherever it ends up running.
	cpuCost []*expr.Var
	memCost []*expr.Var
}

// NewPool creates a pool configuration supporting numTasks concurrent task
// slots across all of its blades.
func NewPool(numTasks int) (*Pool, error) {
	if numTasks <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d: %w", numTasks, ErrConfiguration)
	}

	p := &Pool{
		numTasks: numTasks,
		vars:     expr.NewVarSet(),
		cpuCost:  make([]*expr.Var, numTasks),
		memCost:  make([]*expr.Var, numTasks),
	}
	for i := 0; i < numTasks; i++ {
		p.cpuCost[i] = p.vars.NewReal(fmt.Sprintf("cpu_cost[%d]", i))
		p.memCost[i] = p.vars.NewInt(fmt.Sprintf("mem_cost[%d]", i))
	}
	return p, nil
}

// NumTasks returns the number of task slots the pool supports.
func (p *Pool) NumTasks() int { return p.numTasks }

// Vars returns the variable set owning every variable of the pool and its
// blades.
func (p *Pool) Vars() *expr.VarSet { return p.vars }

// CPUCost returns the shared CPU cost variable for the given slot.
func (p *Pool) CPUCost(slot int) *expr.Var { return p.cpuCost[slot] }

// MemCost returns the shared memory cost variable for the given slot.
func (p *Pool) MemCost(slot int) *expr.Var { return p.memCost[slot] }

// GlobalConstraints returns the pool-wide sanity bounds on the shared slot
// cost variables. Evaluated once per pool, not per blade: every slot cost
// is non-negative.
func (p *Pool) GlobalConstraints() expr.Expr {
	terms := make([]expr.Expr, 0, 2*p.numTasks)
	for i := 0; i < p.numTasks; i++ {
		terms = append(terms, expr.GE(p.cpuCost[i], expr.Lit(0)))
	}
	for i := 0; i < p.numTasks; i++ {
		terms = append(terms, expr.GE(p.memCost[i], expr.Lit(0)))
	}
	return expr.And(terms...)
}
