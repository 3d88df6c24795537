// Package wizard implements the multi-step form engine shared by every onboarding
// and job-posting flow: step registry, form state merging, schema validation,
// step projections, navigation and progress tracking.
package wizard

import (
	"errors"
	"fmt"
)

var ErrStepNotFound = errors.New("step not found")

// StepDefinition is one entry of a flow's static step table.
type StepDefinition struct {
	ID       int    `json:"id"`
	Path     string `json:"path"`
	Required bool   `json:"required"`
}

// Registry is an immutable, ordered list of steps numbered 1..N.
type Registry struct {
	steps []StepDefinition
}

// NewRegistry builds a registry. Step IDs must be contiguous starting at 1.
func NewRegistry(steps ...StepDefinition) (*Registry, error) {
	if len(steps) == 0 {
		return nil, errors.New("registry needs at least one step")
	}
	out := make([]StepDefinition, len(steps))
	for i, s := range steps {
		if s.ID != i+1 {
			return nil, fmt.Errorf("step %q has id %d, want %d", s.Path, s.ID, i+1)
		}
		out[i] = s
	}
	return &Registry{steps: out}, nil
}

// MustRegistry is NewRegistry for package-level flow tables.
func MustRegistry(steps ...StepDefinition) *Registry {
	r, err := NewRegistry(steps...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Step(id int) (StepDefinition, error) {
	if id < 1 || id > len(r.steps) {
		return StepDefinition{}, fmt.Errorf("%w: %d", ErrStepNotFound, id)
	}
	return r.steps[id-1], nil
}

// IsOptional reports whether a step may be skipped. Unknown steps are not optional.
func (r *Registry) IsOptional(id int) bool {
	s, err := r.Step(id)
	if err != nil {
		return false
	}
	return !s.Required
}

func (r *Registry) TotalSteps() int { return len(r.steps) }

// Valid reports whether id is inside 1..N.
func (r *Registry) Valid(id int) bool { return id >= 1 && id <= len(r.steps) }

// Clamp forces id into 1..N.
func (r *Registry) Clamp(id int) int {
	if id < 1 {
		return 1
	}
	if id > len(r.steps) {
		return len(r.steps)
	}
	return id
}

// Steps returns a copy of the step table.
func (r *Registry) Steps() []StepDefinition {
	out := make([]StepDefinition, len(r.steps))
	copy(out, r.steps)
	return out
}
