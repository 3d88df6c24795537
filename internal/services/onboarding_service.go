package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
	"gorm.io/datatypes"
)

// PostingPublisher turns a completed job-posting wizard into a live posting.
// Discard undoes a publish whose progress record could not be written.
type PostingPublisher interface {
	Publish(ctx context.Context, employerID string, state wizard.FormState) (uint, error)
	Discard(ctx context.Context, id uint) error
}

// OnboardingService is the authoritative side of every wizard: it re-checks
// incoming step data, decides the next step and status, and persists progress.
type OnboardingService struct {
	Store     ProgressStore
	Publisher PostingPublisher
	Metrics   *metrics.Recorder
}

func NewOnboardingService(store ProgressStore, publisher PostingPublisher, rec *metrics.Recorder) *OnboardingService {
	return &OnboardingService{
		Store:     store,
		Publisher: publisher,
		Metrics:   rec,
	}
}

// SaveStep merges one step's data into the user's record and advances it.
func (s *OnboardingService) SaveStep(ctx context.Context, userID, flowName string, req wizard.SaveRequest) (wizard.SaveResult, error) {
	start := time.Now()
	flow, err := flows.Lookup(flowName)
	if err != nil {
		return wizard.SaveResult{}, err
	}
	res, outcome, err := s.saveStep(ctx, userID, flow, req)
	step := req.Step
	if !flow.Registry.Valid(step) {
		step = 0
	}
	s.Metrics.ObserveSave(flow.Name, step, outcome, time.Since(start))
	return res, err
}

func (s *OnboardingService) saveStep(ctx context.Context, userID string, flow *wizard.Flow, req wizard.SaveRequest) (wizard.SaveResult, string, error) {
	if !flow.Registry.Valid(req.Step) {
		return wizard.SaveResult{}, "rejected", &RejectionError{
			Message: "unknown step",
			Fields:  wizard.ValidationErrors{"step": fmt.Sprintf("step %d does not exist", req.Step)},
		}
	}

	rec, err := s.find(ctx, userID, flow.Name)
	if err != nil {
		return wizard.SaveResult{}, "error", err
	}
	if req.Version != nil && *req.Version != rec.Version {
		return wizard.SaveResult{}, "conflict", wizard.ErrVersionConflict
	}
	expected := rec.Version

	state := wizard.FormState(rec.Data).Clone()
	if state == nil {
		state = wizard.FormState{}
	}
	state.Merge(flow.Accept(req.Step, req.Data))

	if errs := flow.ValidateStep(req.Step, state); len(errs) > 0 {
		return wizard.SaveResult{}, "rejected", &RejectionError{Message: "validation failed", Fields: errs}
	}

	prior := wizard.StepProgress{
		CurrentStep:    rec.CurrentStep,
		CompletedSteps: rec.CompletedSteps,
		Status:         wizard.Status(rec.Status),
	}
	next := flow.ResolveNext(prior, req.Step, state)
	progress := wizard.StepProgress{
		CurrentStep:    next,
		CompletedSteps: wizard.UnionSteps(rec.CompletedSteps, []int{req.Step}),
		Status:         flow.StatusAt(next, state),
	}
	progress.CompletedSteps = wizard.CompletedSet(progress, flow, state)

	rec.Data = datatypes.JSONMap(state)
	rec.CurrentStep = progress.CurrentStep
	rec.CompletedSteps = progress.CompletedSteps
	rec.Status = string(progress.Status)
	rec.Version = expected + 1

	published := false
	if progress.Status == wizard.StatusCompleted && flow.Name == flows.JobPosting && rec.JobPostingID == nil && s.Publisher != nil {
		id, err := s.Publisher.Publish(ctx, userID, state)
		if err != nil {
			return wizard.SaveResult{}, "error", fmt.Errorf("publish job posting: %w", err)
		}
		rec.JobPostingID = &id
		published = true
	}

	if err := s.Store.Save(ctx, rec, expected); err != nil {
		if published {
			if derr := s.Publisher.Discard(ctx, *rec.JobPostingID); derr != nil {
				slog.Error("Could not discard orphaned job posting.", "posting", *rec.JobPostingID, "err", derr)
			}
		}
		if errors.Is(err, wizard.ErrVersionConflict) {
			return wizard.SaveResult{}, "conflict", err
		}
		return wizard.SaveResult{}, "error", err
	}

	slog.Info("Onboarding step saved.", "user", userID, "flow", flow.Name, "step", req.Step,
		"next", progress.CurrentStep, "status", progress.Status, "version", rec.Version)
	return wizard.SaveResult{
		Success:      true,
		StepProgress: progress,
		Version:      rec.Version,
		Percentage:   wizard.CompletionPercentage(progress, flow, state),
	}, "saved", nil
}

// Load returns the user's persisted wizard, or a fresh NOT_STARTED snapshot.
func (s *OnboardingService) Load(ctx context.Context, userID, flowName string) (wizard.Snapshot, error) {
	flow, err := flows.Lookup(flowName)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	rec, err := s.Store.Find(ctx, userID, flow.Name)
	if errors.Is(err, ErrNotFound) {
		return wizard.Snapshot{Data: wizard.FormState{}, StepProgress: wizard.NewProgress()}, nil
	}
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return snapshotOf(flow, rec), nil
}

func snapshotOf(flow *wizard.Flow, rec *models.OnboardingRecord) wizard.Snapshot {
	state := wizard.FormState(rec.Data).Clone()
	if state == nil {
		state = wizard.FormState{}
	}
	p := wizard.StepProgress{
		CurrentStep:    flow.Registry.Clamp(rec.CurrentStep),
		CompletedSteps: wizard.UnionSteps(rec.CompletedSteps),
		Status:         wizard.Status(rec.Status),
	}
	if !p.Status.Valid() {
		p.Status = wizard.StatusInProgress
	}
	return wizard.Snapshot{
		Data:         state,
		StepProgress: p,
		Version:      rec.Version,
		Percentage:   wizard.CompletionPercentage(p, flow, state),
	}
}

// Reset tears down the user's record for a flow. Published postings stay live.
func (s *OnboardingService) Reset(ctx context.Context, userID, flowName string) error {
	if _, err := flows.Lookup(flowName); err != nil {
		return err
	}
	slog.Info("Onboarding reset.", "user", userID, "flow", flowName)
	return s.Store.Delete(ctx, userID, flowName)
}

// RequireCompleted returns the user's data for a finished flow. An unfinished
// flow is a NotFoundError pointing at the step to continue from.
func (s *OnboardingService) RequireCompleted(ctx context.Context, userID, flowName string) (wizard.FormState, error) {
	flow, err := flows.Lookup(flowName)
	if err != nil {
		return nil, err
	}
	snap, err := s.Load(ctx, userID, flowName)
	if err != nil {
		return nil, err
	}
	if snap.Status != wizard.StatusCompleted {
		step, _ := flow.Registry.Step(snap.CurrentStep)
		return nil, &wizard.NotFoundError{Resource: "completed " + flowName + " profile", Redirect: step.Path}
	}
	return snap.Data, nil
}

// Prefill merges data into the user's draft without advancing it.
func (s *OnboardingService) Prefill(ctx context.Context, userID, flowName string, data wizard.FormState) (wizard.Snapshot, error) {
	flow, err := flows.Lookup(flowName)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	rec, err := s.find(ctx, userID, flow.Name)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	if rec.Status == string(wizard.StatusCompleted) {
		return wizard.Snapshot{}, wizard.ErrAlreadyCompleted
	}
	expected := rec.Version

	state := wizard.FormState(rec.Data).Clone()
	if state == nil {
		state = wizard.FormState{}
	}
	for id := 1; id <= flow.TotalSteps(); id++ {
		state.Merge(flow.Accept(id, data))
	}
	rec.Data = datatypes.JSONMap(state)
	if rec.Status == string(wizard.StatusNotStarted) {
		rec.Status = string(wizard.StatusInProgress)
	}
	rec.Version = expected + 1
	if err := s.Store.Save(ctx, rec, expected); err != nil {
		return wizard.Snapshot{}, err
	}
	return snapshotOf(flow, rec), nil
}

func (s *OnboardingService) find(ctx context.Context, userID, flowName string) (*models.OnboardingRecord, error) {
	rec, err := s.Store.Find(ctx, userID, flowName)
	if errors.Is(err, ErrNotFound) {
		return &models.OnboardingRecord{
			UserID:         userID,
			Flow:           flowName,
			CurrentStep:    1,
			CompletedSteps: []int{},
			Status:         string(wizard.StatusNotStarted),
			Data:           datatypes.JSONMap{},
		}, nil
	}
	return rec, err
}

// RemoteFor binds the service to one user so an in-process wizard.Session can
// save through it.
func (s *OnboardingService) RemoteFor(userID string) wizard.Remote {
	return &localRemote{svc: s, userID: userID}
}

type localRemote struct {
	svc    *OnboardingService
	userID string
}

func (r *localRemote) SaveStep(ctx context.Context, flow string, req wizard.SaveRequest) (wizard.SaveResult, error) {
	res, err := r.svc.SaveStep(ctx, r.userID, flow, req)
	return res, asRemoteError(err)
}

func (r *localRemote) Load(ctx context.Context, flow string) (wizard.Snapshot, error) {
	snap, err := r.svc.Load(ctx, r.userID, flow)
	return snap, asRemoteError(err)
}

// asRemoteError presents service failures the way an HTTP remote would.
func asRemoteError(err error) error {
	var rej *RejectionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rej):
		return &wizard.RemoteRejection{StatusCode: http.StatusBadRequest, Message: rej.Message, Fields: rej.Fields}
	case errors.Is(err, wizard.ErrVersionConflict):
		return &wizard.RemoteRejection{StatusCode: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.Is(err, flows.ErrUnknownFlow):
		return &wizard.NotFoundError{Resource: "flow"}
	}
	return err
}
