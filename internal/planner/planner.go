package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/placekit/bladealloc/api/v1alpha1"
	"github.com/placekit/bladealloc/internal/logging"
	"github.com/placekit/bladealloc/internal/metrics"
	"github.com/placekit/bladealloc/pkg/expr"
	"github.com/placekit/bladealloc/pkg/model"
	"github.com/placekit/bladealloc/pkg/solver"
)

// Problem is a complete placement problem over one pool.
type Problem struct {
	Pool   *model.Pool
	Blades []*model.Blade
	Tasks  []*model.Task

	// Candidates restricts placement per task id to a subset of Blades
	// (by index). Tasks absent from the map may run on any blade. A nil
	// map means no restriction at all.
	Candidates map[int][]int
}

// Placement is the interpreted solve result.
type Placement struct {
	// Worked is the number of tasks placed.
	Worked int

	// Blades holds, for each blade in problem order, the ordered task ids
	// placed on it.
	Blades [][]int
}

// Planner turns problems into placements.
type Planner struct {
	log      logr.Logger
	timeout  time.Duration
	strategy solver.Strategy
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner's logger.
func WithLogger(log logr.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// WithTimeout bounds each solve call.
func WithTimeout(d time.Duration) Option {
	return func(p *Planner) { p.timeout = d }
}

// WithStrategy selects the solver search strategy.
func WithStrategy(s solver.Strategy) Option {
	return func(p *Planner) { p.strategy = s }
}

// New creates a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{
		log:      logging.Log,
		strategy: solver.StrategyBranchAndBound,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan solves the problem and interprets the assignment into a per-blade
// placement report.
func (p *Planner) Plan(ctx context.Context, prob Problem) (*Placement, error) {
	if err := validate(prob); err != nil {
		return nil, err
	}

	resource := make([]expr.Expr, 0, len(prob.Blades)+1)
	resource = append(resource, prob.Pool.GlobalConstraints())
	for _, b := range prob.Blades {
		resource = append(resource, b.Constraints())
	}

	taskCons := make([]expr.Expr, 0, len(prob.Tasks))
	for _, t := range prob.Tasks {
		cons, err := t.Constraints(prob.Pool, candidatesFor(prob, t))
		if err != nil {
			return nil, err
		}
		taskCons = append(taskCons, cons)
	}

	opts := []solver.Option{solver.WithStrategy(p.strategy)}
	if p.timeout > 0 {
		opts = append(opts, solver.WithTimeout(p.timeout))
	}

	start := time.Now()
	asg, worked, err := solver.Solve(ctx, prob.Pool.Vars(), resource, taskCons, opts...)
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SolvesTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.SolvesTotal.WithLabelValues("ok").Inc()
	metrics.SearchNodes.Add(float64(asg.Stats().Nodes))
	metrics.TasksPlaced.Set(float64(worked))

	p.log.V(logging.DEBUG).Info("solve finished",
		"worked", worked,
		"tasks", len(prob.Tasks),
		"nodes", asg.Stats().Nodes,
		"duration", asg.Stats().Duration,
		"optimal", asg.Stats().Optimal)

	return interpret(prob, asg, worked)
}

// candidatesFor resolves the candidate blade list for a task.
func candidatesFor(prob Problem, t *model.Task) []*model.Blade {
	if prob.Candidates == nil {
		return prob.Blades
	}
	idxs, ok := prob.Candidates[t.ID()]
	if !ok {
		return prob.Blades
	}
	out := make([]*model.Blade, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, prob.Blades[i])
	}
	return out
}

// validate fails fast on malformed problems before any constraint exists.
func validate(prob Problem) error {
	if prob.Pool == nil {
		return fmt.Errorf("problem has no pool: %w", model.ErrConfiguration)
	}
	if len(prob.Blades) == 0 {
		return fmt.Errorf("problem has no blades: %w", model.ErrConfiguration)
	}
	if len(prob.Tasks) > prob.Pool.NumTasks() {
		return fmt.Errorf("%d tasks exceed pool size %d: %w",
			len(prob.Tasks), prob.Pool.NumTasks(), model.ErrConfiguration)
	}
	seen := make(map[int]struct{}, len(prob.Tasks))
	for _, t := range prob.Tasks {
		if t.ID() >= prob.Pool.NumTasks() {
			return fmt.Errorf("task id %d out of range for pool of %d slots: %w",
				t.ID(), prob.Pool.NumTasks(), model.ErrConfiguration)
		}
		if _, dup := seen[t.ID()]; dup {
			return fmt.Errorf("duplicate task id %d: %w", t.ID(), model.ErrConfiguration)
		}
		seen[t.ID()] = struct{}{}
	}
	for id, idxs := range prob.Candidates {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("candidate restriction for unknown task id %d: %w", id, model.ErrConfiguration)
		}
		for _, i := range idxs {
			if i < 0 || i >= len(prob.Blades) {
				return fmt.Errorf("task %d: candidate blade index %d out of range: %w",
					id, i, model.ErrConfiguration)
			}
		}
	}
	return nil
}

// interpret maps the raw assignment back into per-blade task lists and
// asserts the consistency guarantees of correct constraint construction.
func interpret(prob Problem, asg *solver.Assignment, worked int) (*Placement, error) {
	placement := &Placement{
		Worked: worked,
		Blades: make([][]int, len(prob.Blades)),
	}

	placedOn := make(map[int]int) // task id -> blade index
	for bi, b := range prob.Blades {
		placement.Blades[bi] = []int{}
		for _, t := range prob.Tasks {
			if !asg.Bool(b.Running(t.ID())) {
				continue
			}
			if prev, dup := placedOn[t.ID()]; dup {
				return nil, fmt.Errorf("inconsistent assignment: task %d running on blades %q and %q",
					t.ID(), prob.Blades[prev].Name(), b.Name())
			}
			placedOn[t.ID()] = bi
			placement.Blades[bi] = append(placement.Blades[bi], t.ID())
		}
	}
	if len(placedOn) != worked {
		return nil, fmt.Errorf("inconsistent assignment: %d distinct tasks placed but worked count is %d",
			len(placedOn), worked)
	}
	return placement, nil
}

// outcome maps a solve error to a metrics label.
func outcome(err error) string {
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, solver.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// FromScenario builds a Problem from a validated scenario.
func FromScenario(s v1alpha1.Scenario) (Problem, error) {
	pool, err := model.NewPool(len(s.Tasks))
	if err != nil {
		return Problem{}, err
	}

	prob := Problem{Pool: pool}
	bladeIdx := make(map[string]int, len(s.Blades))
	for i, spec := range s.Blades {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("blade-%d", i)
		}
		b, err := pool.NewBlade(name, spec.CPU, spec.Memory)
		if err != nil {
			return Problem{}, err
		}
		bladeIdx[name] = i
		prob.Blades = append(prob.Blades, b)
	}

	for i, spec := range s.Tasks {
		t, err := model.NewTask(i, spec.CPU, spec.Memory)
		if err != nil {
			return Problem{}, err
		}
		prob.Tasks = append(prob.Tasks, t)

		if len(spec.Blades) == 0 {
			continue
		}
		if prob.Candidates == nil {
			prob.Candidates = make(map[int][]int)
		}
		for _, name := range spec.Blades {
			idx, ok := bladeIdx[name]
			if !ok {
				return Problem{}, fmt.Errorf("task %d: candidate blade %q is not defined: %w",
					i, name, model.ErrConfiguration)
			}
			prob.Candidates[i] = append(prob.Candidates[i], idx)
		}
	}
	return prob, nil
}
