package wizard

type TransitionKind string

const (
	TransitionNext     TransitionKind = "next"
	TransitionSkip     TransitionKind = "skip"
	TransitionPrevious TransitionKind = "previous"
	TransitionJump     TransitionKind = "jump"
)

// Transition is a requested move. Forward transitions stay pending until the
// remote confirms the save behind them.
type Transition struct {
	Kind TransitionKind `json:"kind"`
	From int            `json:"from"`
	To   int            `json:"to"`
}

// forward builds the provisional forward transition from the current step.
func forward(reg *Registry, kind TransitionKind, from int) Transition {
	return Transition{Kind: kind, From: from, To: reg.Clamp(from + 1)}
}

// backward builds the transition to the previous step, floored at 1.
func backward(from int) Transition {
	return Transition{Kind: TransitionPrevious, From: from, To: max(from-1, 1)}
}

// commit applies a confirmed save to p. The remote's current step overrides the
// provisional target; completed steps only ever grow here.
func commit(reg *Registry, p StepProgress, t Transition, res SaveResult) StepProgress {
	target := t.To
	if reg.Valid(res.CurrentStep) {
		target = res.CurrentStep
	}
	status := res.Status
	if !status.Valid() || status == StatusNotStarted {
		status = StatusInProgress
	}
	completed := UnionSteps(p.CompletedSteps, res.CompletedSteps, stepsBefore(target))
	return StepProgress{CurrentStep: target, CompletedSteps: completed, Status: status}
}

// move applies a local, save-free transition such as going back.
func move(p StepProgress, t Transition) StepProgress {
	p.CompletedSteps = UnionSteps(p.CompletedSteps)
	p.CurrentStep = t.To
	return p
}
