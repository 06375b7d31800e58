package model

import (
	"fmt"

	"github.com/placekit/bladealloc/pkg/expr"
)

// Task is a single unit of work to be executed on one blade of a pool. Its
// id is dense and zero-indexed and doubles as the task's slot index in every
// blade's variable arrays: task i can only ever be expressed through slot i.
type Task struct {
	id      int
	cpuCost float64
	memCost int
}

// NewTask creates a task with its fixed resource demand.
func NewTask(id int, cpuCost float64, memCost int) (*Task, error) {
	if id < 0 {
		return nil, fmt.Errorf("task id must be non-negative, got %d: %w", id, ErrConfiguration)
	}
	if cpuCost < 0 {
		return nil, fmt.Errorf("task %d: cpu cost must be non-negative, got %g: %w", id, cpuCost, ErrConfiguration)
	}
	if memCost < 0 {
		return nil, fmt.Errorf("task %d: memory cost must be non-negative, got %d: %w", id, memCost, ErrConfiguration)
	}
	return &Task{id: id, cpuCost: cpuCost, memCost: memCost}, nil
}

// ID returns the task's id, which is also its slot index.
func (t *Task) ID() int { return t.id }

// CPUCost returns the task's declared CPU demand in cores.
func (t *Task) CPUCost() float64 { return t.cpuCost }

// MemCost returns the task's declared memory demand.
func (t *Task) MemCost() int { return t.memCost }

// assignBlade is the condition that the task executes on the given blade.
func (t *Task) assignBlade(b *Blade) expr.Expr {
	return expr.Eq(b.Running(t.id), expr.Lit(1))
}

// Constraints returns the constraints necessary for the task to be
// executed: the shared slot cost variables are bound to the task's declared
// costs, and the task runs on at least one of its candidate blades. The
// placement disjunction is soft from the solver's point of view; leaving it
// unsatisfied drops the task rather than making the system infeasible.
//
// An empty candidate set would make the disjunction vacuously false and the
// task permanently unplaceable, so it is rejected as a configuration error.
func (t *Task) Constraints(pool *Pool, candidates []*Blade) (expr.Expr, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("task %d: candidate blade set is empty: %w", t.id, ErrConfiguration)
	}
	if t.id >= pool.NumTasks() {
		return nil, fmt.Errorf("task id %d out of range for pool of %d slots: %w", t.id, pool.NumTasks(), ErrConfiguration)
	}
	for _, b := range candidates {
		if b.pool != pool {
			return nil, fmt.Errorf("task %d: candidate blade %q belongs to a different pool: %w", t.id, b.Name(), ErrConfiguration)
		}
	}

	placement := make([]expr.Expr, len(candidates))
	for i, b := range candidates {
		placement[i] = t.assignBlade(b)
	}
	return expr.And(
		expr.Eq(pool.CPUCost(t.id), expr.Lit(t.cpuCost)),
		expr.Eq(pool.MemCost(t.id), expr.Lit(float64(t.memCost))),
		expr.Or(placement...),
	), nil
}
