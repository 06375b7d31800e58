package solver

import (
	"context"
	"time"

	"github.com/placekit/bladealloc/pkg/expr"
)

// Options holds the tunables of a solve call.
type Options struct {
	// Timeout bounds the search. Zero means no budget beyond the caller's
	// context.
	Timeout time.Duration

	// Strategy selects the search strategy.
	Strategy Strategy
}

// Option mutates Options.
type Option func(*Options)

// WithTimeout bounds the search to the given wall-clock budget.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithStrategy selects the search strategy.
func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// Solve submits the combined constraint system and returns a satisfying
// assignment together with the achieved worked count: the number of task
// constraints satisfied, which the search maximizes.
//
// Resource constraints are hard; an unsatisfiable resource side fails with
// ErrInfeasible. Task constraints are soft; an unplaceable task lowers the
// worked count instead of failing the solve. A search that exceeds its
// budget fails with ErrTimeout.
func Solve(ctx context.Context, vars *expr.VarSet, resource, task []expr.Expr, opts ...Option) (*Assignment, int, error) {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	p, err := normalize(vars, resource, task)
	if err != nil {
		return nil, 0, err
	}
	pr := prepare(p)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	srch, err := newSearch(options.Strategy)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	sol, err := srch.run(ctx, pr)
	if err != nil {
		return nil, 0, err
	}

	asg := buildAssignment(p, pr, sol)
	asg.stats = Stats{
		Nodes:    sol.nodes,
		Duration: time.Since(start),
		Optimal:  sol.optimal,
	}
	return asg, sol.worked, nil
}

// buildAssignment valuates every variable from the chosen solution.
// Booleans of chosen placement options are true, all others false. Numeric
// variables take their bound value, falling back to their lower bound.
func buildAssignment(p *problem, pr *prepared, sol *solution) *Assignment {
	values := make([]float64, p.vars.Len())
	for id := 0; id < p.vars.Len(); id++ {
		if p.vars.Var(id).Kind() == expr.BoolKind {
			continue
		}
		switch {
		case p.hasBinding[id]:
			values[id] = p.binding[id]
		case p.hasLower[id]:
			values[id] = p.lower[id]
		}
	}
	for i, optIdx := range sol.choice {
		if optIdx < 0 {
			continue
		}
		for _, boolID := range pr.tasks[i].opts[optIdx].bools {
			values[boolID] = 1
		}
	}
	return &Assignment{values: values}
}
