package model

import (
	"fmt"

	"github.com/placekit/bladealloc/pkg/expr"
)

// Blade is a single resource-bearing execution unit out of a pool. It has a
// fixed CPU and memory capacity and one boolean running variable per task
// slot indicating whether that slot is scheduled on this blade.
type Blade struct {
	pool    *Pool
	name    string
	cpuCap  float64
	memCap  int
	running []*expr.Var
}

// NewBlade creates a blade instance belonging to the pool.
func (p *Pool) NewBlade(name string, cpuCapacity float64, memCapacity int) (*Blade, error) {
	if cpuCapacity <= 0 {
		return nil, fmt.Errorf("blade %q: cpu capacity must be positive, got %g: %w", name, cpuCapacity, ErrConfiguration)
	}
	if memCapacity <= 0 {
		return nil, fmt.Errorf("blade %q: memory capacity must be positive, got %d: %w", name, memCapacity, ErrConfiguration)
	}

	b := &Blade{
		pool:    p,
		name:    name,
		cpuCap:  cpuCapacity,
		memCap:  memCapacity,
		running: make([]*expr.Var, p.numTasks),
	}
	for i := 0; i < p.numTasks; i++ {
		b.running[i] = p.vars.NewBool(fmt.Sprintf("%s.running[%d]", name, i))
	}
	return b, nil
}

// Name returns the blade's name.
func (b *Blade) Name() string { return b.name }

// CPUCapacity returns the blade's CPU capacity in cores.
func (b *Blade) CPUCapacity() float64 { return b.cpuCap }

// MemCapacity returns the blade's total memory capacity.
func (b *Blade) MemCapacity() int { return b.memCap }

// Running returns the boolean variable for slot i on this blade.
func (b *Blade) Running(slot int) *expr.Var { return b.running[slot] }

// condCPU is the CPU contribution of slot i: cpu_cost[i] when the slot runs
// here, zero otherwise.
func (b *Blade) condCPU(i int) expr.Expr {
	return expr.If(b.running[i], b.pool.cpuCost[i])
}

// condMem is the memory contribution of slot i.
func (b *Blade) condMem(i int) expr.Expr {
	return expr.If(b.running[i], b.pool.memCost[i])
}

// Constraints returns the aggregate capacity constraints intrinsic to this
// blade instance: the conditional CPU contributions of all slots sum to at
// most the CPU capacity, and likewise for memory.
func (b *Blade) Constraints() expr.Expr {
	cpu := make([]expr.Expr, b.pool.numTasks)
	mem := make([]expr.Expr, b.pool.numTasks)
	for i := 0; i < b.pool.numTasks; i++ {
		cpu[i] = b.condCPU(i)
		mem[i] = b.condMem(i)
	}
	return expr.And(
		expr.LE(expr.SumOf(cpu...), expr.Lit(b.cpuCap)),
		expr.LE(expr.SumOf(mem...), expr.Lit(float64(b.memCap))),
	)
}
