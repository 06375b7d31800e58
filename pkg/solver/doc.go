// Package solver turns a placement constraint system into a concrete
// variable assignment that maximizes the number of tasks placed.
//
// The solver accepts two constraint collections built with the expr
// package:
//
//   - resource constraints: hard. Pool-wide variable bounds and per-blade
//     capacity rows of the form sum(if running then cost else 0) <= cap.
//   - task constraints: soft. Per-task cost bindings plus a placement
//     disjunction. Leaving a task constraint unsatisfied drops the task;
//     it never makes the system infeasible.
//
// The objective is explicit: maximize the count of satisfied task
// constraints (the "worked" count).
//
// Example usage:
//
//	asg, worked, err := solver.Solve(ctx, pool.Vars(), resource, tasks,
//		solver.WithTimeout(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	for _, b := range blades {
//	    for s := 0; s < pool.NumTasks(); s++ {
//	        if asg.Bool(b.Running(s)) {
//	            // task s runs on blade b
//	        }
//	    }
//	}
//
// Internally the solver normalizes the expression trees into linear
// capacity rows and per-task placement options, then runs a deterministic
// branch-and-bound search seeded by a greedy first-fit incumbent and
// pruned with a per-resource k-cheapest relaxation bound. Expression
// shapes outside the supported forms fail with ErrUnsupported; searches
// that exhaust their budget fail with ErrTimeout, which is distinct from
// ErrInfeasible.
package solver
