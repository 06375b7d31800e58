package model

import "errors"

// ErrConfiguration marks a problem definition error: a non-positive pool
// size, an invalid capacity or cost, or a task with no candidate blades.
// Configuration errors are raised at construction time, before any solve
// is attempted.
var ErrConfiguration = errors.New("invalid configuration")
