package wizard

import "fmt"

// Projection extracts the part of the form state one step persists.
type Projection func(FormState) FormState

// Fields projects the listed top-level keys.
func Fields(keys ...string) Projection {
	return func(s FormState) FormState { return s.Pick(keys...) }
}

// Validator checks one step's data and returns the failing fields.
type Validator func(FormState) ValidationErrors

// Predicate reports whether a step's data counts as complete.
type Predicate func(FormState) bool

// NavigationGuard decides whether the user may move to target. A refusal carries
// the notice shown to the user.
type NavigationGuard func(p StepProgress, target int) (allowed bool, notice string)

// Flow configures the engine for one wizard type. Each flow owns its registry,
// projection table and validators; flows never share step tables.
type Flow struct {
	Name     string
	Registry *Registry

	Projections map[int]Projection
	Validators  map[int]Validator
	// Completion overrides the default completion predicate per step.
	Completion map[int]Predicate

	// NumericFields are dot paths coerced from strings to numbers on update.
	NumericFields []string
	// PhoneFields are dot paths normalized with NormalizePhone on update.
	PhoneFields []string

	Guard NavigationGuard
}

func (f *Flow) TotalSteps() int { return f.Registry.TotalSteps() }

// Project returns the step's slice of state, or an empty state for steps with
// nothing to persist.
func (f *Flow) Project(step int, state FormState) FormState {
	p, ok := f.Projections[step]
	if !ok || state == nil {
		return FormState{}
	}
	return p(state)
}

// Prepare returns a copy of partial with numeric strings coerced and phone
// numbers normalized.
func (f *Flow) Prepare(partial FormState) FormState {
	out := partial.Clone()
	for _, path := range f.NumericFields {
		out.Transform(path, CoerceNumber)
	}
	for _, path := range f.PhoneFields {
		out.Transform(path, normalizePhoneValue)
	}
	return out
}

// Accept filters incoming step data to the step's projection and prepares it.
// Keys that belong to other steps are dropped.
func (f *Flow) Accept(step int, data FormState) FormState {
	return f.Prepare(f.Project(step, data))
}

// ValidateStep returns the validation errors of step against state. Optional
// steps always validate.
func (f *Flow) ValidateStep(step int, state FormState) ValidationErrors {
	if !f.Registry.Valid(step) {
		return ValidationErrors{"step": fmt.Sprintf("step %d does not exist", step)}
	}
	if f.Registry.IsOptional(step) {
		return ValidationErrors{}
	}
	v, ok := f.Validators[step]
	if !ok {
		return ValidationErrors{}
	}
	if state == nil {
		state = FormState{}
	}
	errs := v(state)
	if errs == nil {
		errs = ValidationErrors{}
	}
	return errs
}

// IsStepComplete applies the step's completion predicate. The terminal step is
// never complete on its own; it completes with the wizard.
func (f *Flow) IsStepComplete(step int, state FormState) bool {
	if !f.Registry.Valid(step) || step == f.TotalSteps() {
		return false
	}
	if p, ok := f.Completion[step]; ok {
		return p(state)
	}
	if f.Registry.IsOptional(step) {
		return !IsBlank(map[string]any(f.Project(step, state)))
	}
	return len(f.ValidateStep(step, state)) == 0
}

// FirstIncompleteRequired returns the lowest required step before the terminal
// one whose data is incomplete, or 0.
func (f *Flow) FirstIncompleteRequired(state FormState) int {
	for id := 1; id < f.TotalSteps(); id++ {
		if f.Registry.IsOptional(id) {
			continue
		}
		if !f.IsStepComplete(id, state) {
			return id
		}
	}
	return 0
}

// ResolveNext is the authoritative step that follows a save of step, given the
// progress persisted before the save. It skips steps already satisfied by
// earlier partial saves and optional steps the user already passed. Landing on
// the terminal step with a required step unfinished sends the user back to that
// step instead. A completed wizard stays on the terminal step as long as every
// required step still holds.
func (f *Flow) ResolveNext(prior StepProgress, step int, state FormState) int {
	n := f.TotalSteps()
	missing := f.FirstIncompleteRequired(state)
	if prior.Status == StatusCompleted && missing == 0 {
		return n
	}
	next := step + 1
	for next < n && f.satisfied(prior, next, state) {
		next++
	}
	if next >= n {
		if missing != 0 {
			return missing
		}
		return n
	}
	return next
}

// satisfied reports whether skip-ahead may pass over step.
func (f *Flow) satisfied(prior StepProgress, step int, state FormState) bool {
	if f.IsStepComplete(step, state) {
		return true
	}
	return f.Registry.IsOptional(step) && prior.IsCompleted(step)
}

// StatusAt derives the wizard status for a confirmed current step.
func (f *Flow) StatusAt(current int, state FormState) Status {
	if current == f.TotalSteps() && f.FirstIncompleteRequired(state) == 0 {
		return StatusCompleted
	}
	return StatusInProgress
}

// CanNavigateToStep checks a direct jump to target. Targets beyond the furthest
// reached step, and targets the flow's guard rejects, are refused.
func (f *Flow) CanNavigateToStep(p StepProgress, target int) error {
	if !f.Registry.Valid(target) {
		return &NavigationRefused{From: p.CurrentStep, To: target, Notice: "that step does not exist"}
	}
	if target > p.Reached(f.TotalSteps()) {
		return &NavigationRefused{From: p.CurrentStep, To: target, Notice: "finish the current step first"}
	}
	if f.Guard != nil {
		if ok, notice := f.Guard(p, target); !ok {
			return &NavigationRefused{From: p.CurrentStep, To: target, Notice: notice}
		}
	}
	return nil
}
