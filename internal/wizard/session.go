package wizard

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// DefaultSaveTimeout bounds every save and load round trip.
const DefaultSaveTimeout = 15 * time.Second

// Session is the state container of one running wizard: the collected form
// values, the confirmed progress and any transition waiting on the remote.
// Create one when the wizard mounts and Reset it on unmount or completion.
type Session struct {
	flow    *Flow
	remote  Remote
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	state    FormState
	progress StepProgress
	version  int
	pending  *Transition
	uploads  map[string]struct{}
	errors   ValidationErrors
	notice   string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSaveTimeout overrides DefaultSaveTimeout.
func WithSaveTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

func NewSession(flow *Flow, remote Remote, opts ...SessionOption) *Session {
	s := &Session{
		flow:    flow,
		remote:  remote,
		timeout: DefaultSaveTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

func (s *Session) Flow() *Flow { return s.flow }

// State returns a copy of the collected form values.
func (s *Session) State() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Progress() StepProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Errors returns the validation errors of the last attempt to leave a step,
// including field errors the remote sent back.
func (s *Session) Errors() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.errors)
}

// Notice is the last navigation refusal message, cleared by the next successful move.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Pending returns the transition waiting on the remote, if any. Navigation
// controls should be disabled while it is set.
func (s *Session) Pending() (Transition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Transition{}, false
	}
	return *s.pending, true
}

// Percentage is the completion percentage of the current progress and state.
func (s *Session) Percentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CompletionPercentage(s.progress, s.flow, s.state)
}

// Update merges partial into the form state. It never persists anything.
func (s *Session) Update(partial FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Merge(s.flow.Prepare(partial))
}

// Hydrate replaces local state with the remote's last saved snapshot.
func (s *Session) Hydrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.remote.Load(ctx, s.flow.Name)
	if err != nil {
		return asNetworkError("load", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap.Data.Clone()
	p := snap.StepProgress
	p.CurrentStep = s.flow.Registry.Clamp(p.CurrentStep)
	p.CompletedSteps = UnionSteps(p.CompletedSteps)
	if !p.Status.Valid() {
		p.Status = StatusNotStarted
	}
	s.progress = p
	s.version = snap.Version
	s.errors = ValidationErrors{}
	s.notice = ""
	return nil
}

// ValidateCurrent validates the current step without moving.
func (s *Session) ValidateCurrent() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = s.flow.ValidateStep(s.progress.CurrentStep, s.state)
	return maps.Clone(s.errors)
}

// Next validates the current step, saves its projection and moves to the step
// the remote confirms. Nothing moves if validation or the save fails.
func (s *Session) Next(ctx context.Context) (StepProgress, error) {
	s.mu.Lock()
	if err := s.busyLocked(); err != nil {
		p := s.progressLocked()
		s.mu.Unlock()
		return p, err
	}
	from := s.progress.CurrentStep
	if errs := s.flow.ValidateStep(from, s.state); len(errs) > 0 {
		s.errors = errs
		p := s.progressLocked()
		s.mu.Unlock()
		return p, &ValidationError{Step: from, Errors: maps.Clone(errs)}
	}
	s.errors = ValidationErrors{}
	return s.submit(ctx, forward(s.flow.Registry, TransitionNext, from))
}

// Skip leaves an optional step without validation. Whatever partial data the
// step holds is still saved.
func (s *Session) Skip(ctx context.Context) (StepProgress, error) {
	s.mu.Lock()
	if err := s.busyLocked(); err != nil {
		p := s.progressLocked()
		s.mu.Unlock()
		return p, err
	}
	from := s.progress.CurrentStep
	if !s.flow.Registry.IsOptional(from) {
		p := s.progressLocked()
		s.mu.Unlock()
		return p, ErrStepNotOptional
	}
	s.errors = ValidationErrors{}
	return s.submit(ctx, forward(s.flow.Registry, TransitionSkip, from))
}

// Previous moves one step back when the flow's guard allows it. A refusal
// leaves progress untouched and sets Notice.
func (s *Session) Previous() (StepProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.busyLocked(); err != nil {
		return s.progressLocked(), err
	}
	from := s.progress.CurrentStep
	if from <= 1 {
		return s.progressLocked(), nil
	}
	return s.moveLocked(backward(from))
}

// GoTo jumps to target, e.g. from a step indicator.
func (s *Session) GoTo(target int) (StepProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.busyLocked(); err != nil {
		return s.progressLocked(), err
	}
	from := s.progress.CurrentStep
	if target == from {
		return s.progressLocked(), nil
	}
	return s.moveLocked(Transition{Kind: TransitionJump, From: from, To: target})
}

// AttachUpload runs upload and stores the returned URL under field. Saves are
// refused until it returns, so a file always lands before the save that
// references it.
func (s *Session) AttachUpload(ctx context.Context, field string, upload func(context.Context) (string, error)) error {
	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if _, running := s.uploads[field]; running {
		s.mu.Unlock()
		return ErrUploadInFlight
	}
	s.uploads[field] = struct{}{}
	s.mu.Unlock()

	url, err := upload(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, field)
	if err != nil {
		s.logger.Warn("Upload failed.", "flow", s.flow.Name, "field", field, "err", err)
		return err
	}
	s.state.Merge(FormState{field: url})
	return nil
}

// Reset tears the session down to an empty, unstarted wizard.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = FormState{}
	s.progress = NewProgress()
	s.version = 0
	s.pending = nil
	s.uploads = map[string]struct{}{}
	s.errors = ValidationErrors{}
	s.notice = ""
}

func (s *Session) busyLocked() error {
	if s.pending != nil {
		return ErrSaveInFlight
	}
	if len(s.uploads) > 0 {
		return ErrUploadInFlight
	}
	return nil
}

func (s *Session) progressLocked() StepProgress {
	p := s.progress
	p.CompletedSteps = slices.Clone(p.CompletedSteps)
	return p
}

func (s *Session) moveLocked(t Transition) (StepProgress, error) {
	if err := s.flow.CanNavigateToStep(s.progress, t.To); err != nil {
		var refused *NavigationRefused
		if errors.As(err, &refused) {
			s.notice = refused.Notice
		}
		return s.progressLocked(), err
	}
	s.progress = move(s.progress, t)
	s.errors = ValidationErrors{}
	s.notice = ""
	return s.progressLocked(), nil
}

// submit sends the projection of t.From and commits t once the remote confirms.
// It is entered with s.mu held and returns with it released.
func (s *Session) submit(ctx context.Context, t Transition) (StepProgress, error) {
	s.pending = &t
	version := s.version
	req := SaveRequest{
		Step:    t.From,
		Data:    s.flow.Project(t.From, s.state),
		Version: &version,
	}
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	res, err := s.remote.SaveStep(saveCtx, s.flow.Name, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	if err == nil && !res.Success {
		err = &RemoteRejection{Message: "save was not confirmed"}
	}
	if err != nil {
		err = asNetworkError("save", err)
		var rej *RemoteRejection
		if errors.As(err, &rej) && len(rej.Fields) > 0 {
			s.errors = maps.Clone(rej.Fields)
		}
		s.logger.Warn("Step save failed.", "flow", s.flow.Name, "step", t.From, "err", err)
		return s.progressLocked(), err
	}

	s.progress = commit(s.flow.Registry, s.progress, t, res)
	s.version = res.Version
	s.notice = ""
	if s.progress.Status == StatusCompleted {
		s.logger.Info("Wizard completed.", "flow", s.flow.Name)
	}
	return s.progressLocked(), nil
}

// asNetworkError classifies deadline and cancellation failures as network errors.
func asNetworkError(op string, err error) error {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &NetworkError{Op: op, Err: err}
	}
	return err
}
