package services

import (
	"context"

	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	DB         *gorm.DB
	Onboarding *OnboardingService
}

func NewDashboardService(db *gorm.DB, onboarding *OnboardingService) *DashboardService {
	return &DashboardService{DB: db, Onboarding: onboarding}
}

func (s *DashboardService) ForUser(ctx context.Context, userID, role string) (*dtos.Dashboard, error) {
	d := &dtos.Dashboard{Role: role}
	var err error
	switch role {
	case models.RoleJobSeeker:
		err = s.seeker(ctx, userID, d)
	case models.RoleEmployer:
		err = s.employer(ctx, userID, d)
	case models.RoleAdmin:
		err = s.admin(ctx, d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) summaries(ctx context.Context, userID string, names ...string) ([]dtos.OnboardingSummary, error) {
	out := make([]dtos.OnboardingSummary, 0, len(names))
	for _, name := range names {
		snap, err := s.Onboarding.Load(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		out = append(out, dtos.OnboardingSummary{
			Flow:        name,
			Status:      string(snap.Status),
			CurrentStep: snap.CurrentStep,
			Percentage:  snap.Percentage,
		})
	}
	return out, nil
}

type statusCount struct {
	Status string
	Total  int64
}

func (s *DashboardService) seeker(ctx context.Context, userID string, d *dtos.Dashboard) error {
	var err error
	if d.Onboarding, err = s.summaries(ctx, userID, flows.JobSeeker); err != nil {
		return err
	}

	var rows []statusCount
	err = s.DB.WithContext(ctx).Model(&models.JobApplication{}).
		Select("status, count(*) as total").
		Where("seeker_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	d.ApplicationsByStatus = map[string]int64{}
	for _, r := range rows {
		d.ApplicationsByStatus[r.Status] = r.Total
	}
	return nil
}

func (s *DashboardService) employer(ctx context.Context, userID string, d *dtos.Dashboard) error {
	var err error
	if d.Onboarding, err = s.summaries(ctx, userID, flows.Employer, flows.JobPosting); err != nil {
		return err
	}

	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.JobPosting{}).Where("employer_id = ? AND status = ?", userID, JobOpen).Count(&d.OpenPostings).Error; err != nil {
		return err
	}
	if err := db.Model(&models.JobPosting{}).Where("employer_id = ? AND status = ?", userID, JobClosed).Count(&d.ClosedPostings).Error; err != nil {
		return err
	}
	return db.Model(&models.JobApplication{}).
		Joins("JOIN job_postings ON job_postings.id = job_applications.job_posting_id").
		Where("job_postings.employer_id = ? AND job_postings.deleted_at IS NULL", userID).
		Count(&d.ApplicationsReceived).Error
}

func (s *DashboardService) admin(ctx context.Context, d *dtos.Dashboard) error {
	d.Totals = map[string]int64{}
	db := s.DB.WithContext(ctx)
	for name, model := range map[string]any{
		"users":        &models.User{},
		"job_postings": &models.JobPosting{},
		"applications": &models.JobApplication{},
		"onboardings":  &models.OnboardingRecord{},
	} {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			return err
		}
		d.Totals[name] = n
	}
	return nil
}
