package wizard

import (
	"math"
	"slices"
)

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// StepProgress is where the user stands in a wizard.
type StepProgress struct {
	CurrentStep    int    `json:"currentStep"`
	CompletedSteps []int  `json:"completedSteps"`
	Status         Status `json:"status"`
}

// NewProgress is the progress of a wizard nobody has touched yet.
func NewProgress() StepProgress {
	return StepProgress{CurrentStep: 1, CompletedSteps: []int{}, Status: StatusNotStarted}
}

// Reached is the furthest step the user may jump to: the current step or the
// step right after the highest completed one.
func (p StepProgress) Reached(total int) int {
	reached := p.CurrentStep
	for _, s := range p.CompletedSteps {
		if s+1 > reached {
			reached = s + 1
		}
	}
	return min(max(reached, 1), total)
}

// IsCompleted reports whether step is in the completed set.
func (p StepProgress) IsCompleted(step int) bool {
	return slices.Contains(p.CompletedSteps, step)
}

// UnionSteps merges step sets into one sorted, duplicate free list.
func UnionSteps(sets ...[]int) []int {
	out := []int{}
	for _, s := range sets {
		out = append(out, s...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// stepsBefore returns 1..current-1.
func stepsBefore(current int) []int {
	out := make([]int, 0, max(current-1, 0))
	for i := 1; i < current; i++ {
		out = append(out, i)
	}
	return out
}

// CompletedSet computes every step that counts as done: the persisted list, each
// step before the current one, each step whose predicate holds, and the terminal
// step once the wizard is completed. Steps outside 1..N are dropped.
func CompletedSet(p StepProgress, f *Flow, state FormState) []int {
	n := f.TotalSteps()
	var derived []int
	for id := 1; id <= n; id++ {
		if f.IsStepComplete(id, state) {
			derived = append(derived, id)
		}
	}
	if p.Status == StatusCompleted {
		derived = append(derived, n)
	}
	all := UnionSteps(p.CompletedSteps, stepsBefore(p.CurrentStep), derived)
	return slices.DeleteFunc(all, func(id int) bool { return id < 1 || id > n })
}

// CompletionPercentage returns the share of completed steps in [0, 100].
func CompletionPercentage(p StepProgress, f *Flow, state FormState) float64 {
	n := f.TotalSteps()
	if n == 0 {
		return 0
	}
	pct := float64(len(CompletedSet(p, f, state))) / float64(n) * 100
	return math.Min(math.Round(pct*100)/100, 100)
}
