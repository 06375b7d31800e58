package solver

import (
	"math"
	"time"

	"github.com/placekit/bladealloc/pkg/expr"
)

// Assignment is a complete read-only valuation of every decision variable,
// produced by a single solve call.
type Assignment struct {
	values []float64
	stats  Stats
}

// Stats describes the work the search performed.
type Stats struct {
	// Nodes is the number of search nodes explored.
	Nodes int64

	// Duration is the wall-clock time spent solving.
	Duration time.Duration

	// Optimal reports whether the search proved optimality. It is false
	// only for heuristic strategies; the exact strategy either proves its
	// result or fails with ErrTimeout.
	Optimal bool
}

// Bool returns the chosen value of a boolean variable.
func (a *Assignment) Bool(v *expr.Var) bool {
	return a.values[v.ID()] != 0
}

// Real returns the chosen value of a real variable.
func (a *Assignment) Real(v *expr.Var) float64 {
	return a.values[v.ID()]
}

// Int returns the chosen value of an integer variable.
func (a *Assignment) Int(v *expr.Var) int {
	return int(math.Round(a.values[v.ID()]))
}

// Stats returns search statistics for the solve that produced this
// assignment.
func (a *Assignment) Stats() Stats { return a.stats }
