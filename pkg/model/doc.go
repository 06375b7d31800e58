// Package model provides the domain entities of the placement problem and
// turns them into solver constraints.
//
// A Pool is sized for a fixed number of task slots and owns the shared slot
// cost variables: slot i carries one CPU cost variable and one memory cost
// variable, shared by every blade of the pool. Each Blade owns its own
// boolean running variables, one per slot. A Task's id doubles as its slot
// index; the constraint that binds a task's declared costs to the slot
// variables only makes sense because each slot is used by exactly one task.
//
// Entities are immutable once constructed. Constraint construction is pure:
// Blade.Constraints, Pool.GlobalConstraints, and Task.Constraints return
// composable expression trees and never mutate the entities.
package model
