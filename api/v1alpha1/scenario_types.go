// Package v1alpha1 defines the versioned scenario schema consumed by the
// bladealloc command line harness and test fixtures.
package v1alpha1

import (
	"fmt"
)

// BladeSpec describes one blade of the pool.
type BladeSpec struct {
	// Name identifies the blade. Optional; the loader assigns blade-<index>
	// when empty. Names must be unique within a scenario.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// CPU is the blade's CPU capacity in cores. Must be positive.
	CPU float64 `yaml:"cpu" json:"cpu"`

	// Memory is the blade's total memory capacity in memory units. Must be
	// positive.
	Memory int `yaml:"memory" json:"memory"`
}

// TaskSpec describes one task to place. The task's id is its index in the
// scenario's task list.
type TaskSpec struct {
	// CPU is the task's processing cost in cores. Must be non-negative.
	CPU float64 `yaml:"cpu" json:"cpu"`

	// Memory is the task's memory cost in memory units. Must be
	// non-negative.
	Memory int `yaml:"memory" json:"memory"`

	// Blades restricts the candidate blades the task may be placed on, by
	// name. Empty means every blade is a candidate.
	Blades []string `yaml:"blades,omitempty" json:"blades,omitempty"`
}

// Scenario is a complete placement problem: the blade pool and the tasks to
// place on it.
type Scenario struct {
	Blades []BladeSpec `yaml:"blades" json:"blades"`
	Tasks  []TaskSpec  `yaml:"tasks" json:"tasks"`
}

// Normalize assigns default blade-<index> names to unnamed blades. Call it
// before Validate so candidate references can resolve against defaults.
func (s *Scenario) Normalize() {
	for i := range s.Blades {
		if s.Blades[i].Name == "" {
			s.Blades[i].Name = fmt.Sprintf("blade-%d", i)
		}
	}
}

// Validate checks for invalid scenario values.
func (s *Scenario) Validate() error {
	if len(s.Blades) == 0 {
		return fmt.Errorf("scenario must define at least one blade")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("scenario must define at least one task")
	}

	names := make(map[string]struct{}, len(s.Blades))
	for i, b := range s.Blades {
		if b.CPU <= 0 {
			return fmt.Errorf("blade %d: cpu must be positive, got %g", i, b.CPU)
		}
		if b.Memory <= 0 {
			return fmt.Errorf("blade %d: memory must be positive, got %d", i, b.Memory)
		}
		if b.Name == "" {
			continue
		}
		if _, dup := names[b.Name]; dup {
			return fmt.Errorf("duplicate blade name %q", b.Name)
		}
		names[b.Name] = struct{}{}
	}

	for i, t := range s.Tasks {
		if t.CPU < 0 {
			return fmt.Errorf("task %d: cpu must be non-negative, got %g", i, t.CPU)
		}
		if t.Memory < 0 {
			return fmt.Errorf("task %d: memory must be non-negative, got %d", i, t.Memory)
		}
		for _, name := range t.Blades {
			if _, ok := names[name]; !ok {
				return fmt.Errorf("task %d: candidate blade %q is not defined", i, name)
			}
		}
	}
	return nil
}

// DefaultScenario returns the built-in demonstration scenario: four blades
// of 8 cores and 128 memory units, and twenty tasks with costs cycling
// through five patterns.
func DefaultScenario() Scenario {
	const (
		numBlades = 4
		repeats   = 4
	)
	cpuPattern := []float64{0.4, 2, 3, 5, 7}
	memPattern := []int{1, 12, 48, 64, 96}

	s := Scenario{}
	for i := 0; i < numBlades; i++ {
		s.Blades = append(s.Blades, BladeSpec{
			Name:   fmt.Sprintf("blade-%d", i),
			CPU:    8,
			Memory: 128,
		})
	}
	for r := 0; r < repeats; r++ {
		for i := range cpuPattern {
			s.Tasks = append(s.Tasks, TaskSpec{
				CPU:    cpuPattern[i],
				Memory: memPattern[i],
			})
		}
	}
	return s
}
