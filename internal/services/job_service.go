package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
	"gorm.io/gorm"
)

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

const (
	JobOpen   = "OPEN"
	JobClosed = "CLOSED"
)

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

// Publish creates a posting from a completed job-posting wizard. The company
// name is taken from the employer's own onboarding, when there is one.
func (s *JobService) Publish(ctx context.Context, employerID string, state wizard.FormState) (uint, error) {
	draft, err := flows.DecodePosting(state)
	if err != nil {
		return 0, fmt.Errorf("decode posting: %w", err)
	}

	var company models.OnboardingRecord
	companyName := ""
	err = s.DB.WithContext(ctx).Where("user_id = ? AND flow = ?", employerID, flows.Employer).First(&company).Error
	switch {
	case err == nil:
		companyName = wizard.FormState(company.Data).GetString("companyName")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, err
	}

	job := &models.JobPosting{
		EmployerID:         employerID,
		CompanyName:        companyName,
		Title:              draft.JobTitle,
		NumberOfPositions:  draft.NumberOfPositions,
		JobType:            draft.JobType,
		WorkLocation:       draft.WorkLocation,
		SalaryMin:          draft.SalaryMin,
		SalaryMax:          draft.SalaryMax,
		Gender:             draft.Gender,
		LastEducation:      draft.LastEducation,
		MinExperienceYears: draft.MinExperienceYears,
		AgeMin:             draft.AgeRange.Min,
		AgeMax:             draft.AgeRange.Max,
		ExpectedCharacter:  draft.ExpectedCharacter,
		AdditionalNotes:    draft.AdditionalNotes,
		ContactEmail:       draft.ContactEmail,
		ContactPhone:       draft.ContactPhone,
		Status:             JobOpen,
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return 0, err
	}
	slog.Info("Job posting published.", "posting", job.ID, "employer", employerID)
	return job.ID, nil
}

// Discard hard-deletes a posting that never became visible.
func (s *JobService) Discard(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Unscoped().Delete(&models.JobPosting{}, id).Error
}

// List returns postings matching the filter, newest first. Without an
// employer filter only open postings are listed.
func (s *JobService) List(ctx context.Context, f dtos.JobFilter) ([]models.JobPosting, error) {
	q := s.DB.WithContext(ctx).Model(&models.JobPosting{})
	if f.EmployerID != "" {
		q = q.Where("employer_id = ?", f.EmployerID)
	} else {
		q = q.Where("status = ?", JobOpen)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := containsPattern(term)
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(company_name) LIKE ? ESCAPE '\'`, like, like)
	}
	if f.JobType != "" {
		q = q.Where("job_type = ?", f.JobType)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(work_location) LIKE ? ESCAPE '\'`, containsPattern(f.Location))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var jobs []models.JobPosting
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(max(f.Offset, 0)).Find(&jobs).Error
	return jobs, err
}

func (s *JobService) Get(ctx context.Context, id uint) (*models.JobPosting, error) {
	var job models.JobPosting
	err := s.DB.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// owned loads a posting and checks it belongs to employerID.
func (s *JobService) owned(ctx context.Context, employerID string, id uint) (*models.JobPosting, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, ErrForbidden
	}
	return job, nil
}

// SetStatus closes or reopens a posting.
func (s *JobService) SetStatus(ctx context.Context, employerID string, id uint, status string) (*models.JobPosting, error) {
	if status != JobOpen && status != JobClosed {
		return nil, &RejectionError{
			Message: "invalid status",
			Fields:  wizard.ValidationErrors{"status": "must be one of OPEN CLOSED"},
		}
	}
	job, err := s.owned(ctx, employerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(job).Update("status", status).Error; err != nil {
		return nil, err
	}
	job.Status = status
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, employerID string, id uint) error {
	job, err := s.owned(ctx, employerID, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(job).Error
}
