// Package planner orchestrates the placement pipeline.
//
// The planner sits between the domain model and the solver:
//
//	Scenario -> Problem -> constraints (model) -> Solve (solver) -> Placement
//
// Plan flow:
//
//  1. Validate the problem (fail fast, before any constraint is built).
//  2. Build the resource-side constraints: the pool's global cost bounds
//     plus every blade's capacity constraints.
//  3. Build the task-side constraints: cost bindings and placement
//     disjunctions over each task's candidate blades.
//  4. Solve with the configured strategy and budget.
//  5. Interpret the assignment into a per-blade task report, asserting
//     mutual exclusion of placement and worked-count consistency instead
//     of trusting the backend.
//
// The planner emits structured logs and Prometheus metrics around the
// solve; it performs no retries, leaving relaxation policy to callers.
package planner
