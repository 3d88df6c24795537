package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/models"
	"gorm.io/gorm"
)

const (
	AppApplied   = "APPLIED"
	AppReviewed  = "REVIEWED"
	AppInterview = "INTERVIEW"
	AppOffer     = "OFFER"
	AppRejected  = "REJECTED"
)

// applicationTransitions lists the statuses reachable from each status.
// OFFER and REJECTED are terminal.
var applicationTransitions = map[string][]string{
	AppApplied:   {AppReviewed, AppInterview, AppRejected},
	AppReviewed:  {AppInterview, AppOffer, AppRejected},
	AppInterview: {AppOffer, AppRejected},
}

type ApplicationService struct {
	DB         *gorm.DB
	Onboarding *OnboardingService
	Metrics    *metrics.Recorder
}

func NewApplicationService(db *gorm.DB, onboarding *OnboardingService, rec *metrics.Recorder) *ApplicationService {
	return &ApplicationService{DB: db, Onboarding: onboarding, Metrics: rec}
}

// Apply files a job seeker's application. The seeker must have finished
// onboarding; the CV on file at that moment is attached.
func (s *ApplicationService) Apply(ctx context.Context, seekerID string, jobID uint, req dtos.ApplyRequest) (*models.JobApplication, error) {
	profile, err := s.Onboarding.RequireCompleted(ctx, seekerID, flows.JobSeeker)
	if err != nil {
		s.Metrics.ObserveApplication("incomplete_profile")
		return nil, err
	}

	var job models.JobPosting
	err = s.DB.WithContext(ctx).Where("id = ? AND status = ?", jobID, JobOpen).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	app := &models.JobApplication{
		JobPostingID: job.ID,
		SeekerID:     seekerID,
		Status:       AppApplied,
		CoverLetter:  req.CoverLetter,
		CVFileURL:    profile.GetString("cvFileUrl"),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: app.ID,
			EventType:     AppApplied,
			Details:       "Applied to " + job.Title,
		}).Error
	})
	// The unique (job, seeker) index settles concurrent applies.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.Metrics.ObserveApplication("duplicate")
		return nil, fmt.Errorf("%w: already applied to job %d", ErrConflict, jobID)
	}
	if err != nil {
		return nil, err
	}
	app.JobPosting = job
	s.Metrics.ObserveApplication("submitted")
	slog.Info("Application submitted.", "application", app.ID, "job", job.ID, "seeker", seekerID)
	return app, nil
}

func (s *ApplicationService) ListForSeeker(ctx context.Context, seekerID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := s.DB.WithContext(ctx).Preload("JobPosting").
		Where("seeker_id = ?", seekerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// ListForJob returns the applications of a posting owned by employerID.
func (s *ApplicationService) ListForJob(ctx context.Context, employerID string, jobID uint) ([]models.JobApplication, error) {
	var job models.JobPosting
	err := s.DB.WithContext(ctx).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, ErrForbidden
	}

	var apps []models.JobApplication
	err = s.DB.WithContext(ctx).Where("job_posting_id = ?", jobID).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

// UpdateStatus moves an application along its status machine and records
// the change in the event log.
func (s *ApplicationService) UpdateStatus(ctx context.Context, employerID string, appID uint, req dtos.ApplicationStatusRequest) (*models.JobApplication, error) {
	var app models.JobApplication
	err := s.DB.WithContext(ctx).Preload("JobPosting").First(&app, appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if app.JobPosting.EmployerID != employerID {
		return nil, ErrForbidden
	}
	if !slices.Contains(applicationTransitions[app.Status], req.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, app.Status, req.Status)
	}

	details := fmt.Sprintf("Status changed from %s to %s.", app.Status, req.Status)
	if req.Note != "" {
		details += " Note: " + req.Note
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&app).Update("status", req.Status).Error; err != nil {
			return err
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: app.ID,
			EventType:     "STATUS_CHANGE",
			Details:       details,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	app.Status = req.Status
	return &app, nil
}

// Events returns the audit trail of an application, oldest first. Only the
// applicant and the posting's employer may read it.
func (s *ApplicationService) Events(ctx context.Context, userID string, appID uint) ([]models.ApplicationEvent, error) {
	var app models.JobApplication
	err := s.DB.WithContext(ctx).Preload("JobPosting").First(&app, appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if app.SeekerID != userID && app.JobPosting.EmployerID != userID {
		return nil, ErrForbidden
	}

	var events []models.ApplicationEvent
	err = s.DB.WithContext(ctx).Where("application_id = ?", appID).Order("id ASC").Find(&events).Error
	return events, err
}
