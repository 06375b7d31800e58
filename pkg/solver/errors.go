package solver

import "errors"

var (
	// ErrInfeasible is returned when the hard resource constraints admit no
	// assignment even with every task dropped. With valid non-negative
	// capacities this indicates a constraint construction bug, not an
	// expected runtime condition.
	ErrInfeasible = errors.New("constraint system is infeasible")

	// ErrTimeout is returned when the search exhausts its budget before
	// proving an optimal assignment. Distinct from infeasibility.
	ErrTimeout = errors.New("solve budget exceeded")

	// ErrUnsupported is returned when a constraint expression does not
	// match any shape the solver can normalize.
	ErrUnsupported = errors.New("unsupported constraint form")
)
