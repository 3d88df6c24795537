package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
)

type board struct {
	db           *gorm.DB
	onboarding   *OnboardingService
	jobs         *JobService
	applications *ApplicationService
}

func newBoard(t *testing.T) *board {
	db := newTestDB(t)
	rec := metrics.New(prometheus.NewRegistry())
	jobs := NewJobService(db)
	onboarding := NewOnboardingService(NewGormProgressStore(db), jobs, rec)
	return &board{
		db:           db,
		onboarding:   onboarding,
		jobs:         jobs,
		applications: NewApplicationService(db, onboarding, rec),
	}
}

// postJob runs the employer and job posting wizards and returns the posting.
func (b *board) postJob(t *testing.T, employerID string) models.JobPosting {
	t.Helper()
	completeFlow(t, b.onboarding, employerID, flows.Employer, employerAnswers())
	completeFlow(t, b.onboarding, employerID, flows.JobPosting, postingAnswers())
	rec, err := b.onboarding.Store.Find(context.Background(), employerID, flows.JobPosting)
	require.NoError(t, err)
	require.NotNil(t, rec.JobPostingID)
	job, err := b.jobs.Get(context.Background(), *rec.JobPostingID)
	require.NoError(t, err)
	return *job
}

func TestCompletedPostingWizardPublishesJob(t *testing.T) {
	b := newBoard(t)

	job := b.postJob(t, "emp")

	assert.Equal(t, "Store Cashier", job.Title)
	assert.Equal(t, "PT Maju Jaya", job.CompanyName)
	assert.Equal(t, 3, job.NumberOfPositions)
	assert.Equal(t, 18, job.AgeMin)
	assert.Equal(t, 35, job.AgeMax)
	assert.Equal(t, []string{"honest", "friendly"}, job.ExpectedCharacter)
	assert.Equal(t, JobOpen, job.Status)
}

func TestApplyRequiresCompletedOnboarding(t *testing.T) {
	b := newBoard(t)
	job := b.postJob(t, "emp")

	_, err := b.applications.Apply(context.Background(), "seeker", job.ID, dtos.ApplyRequest{})

	var nf *wizard.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "/onboarding/job-seeker/basic-info", nf.Redirect)
}

func TestApplyAndDuplicate(t *testing.T) {
	b := newBoard(t)
	job := b.postJob(t, "emp")
	res := completeFlow(t, b.onboarding, "seeker", flows.JobSeeker, seekerAnswers())
	require.Equal(t, wizard.StatusCompleted, res.Status)

	app, err := b.applications.Apply(context.Background(), "seeker", job.ID, dtos.ApplyRequest{CoverLetter: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, AppApplied, app.Status)
	assert.Equal(t, "https://cdn.example/cv/u1/cv.pdf", app.CVFileURL)

	_, err = b.applications.Apply(context.Background(), "seeker", job.ID, dtos.ApplyRequest{})
	assert.ErrorIs(t, err, ErrConflict)

	mine, err := b.applications.ListForSeeker(context.Background(), "seeker")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Store Cashier", mine[0].JobPosting.Title)
}

func TestApplyToClosedJob(t *testing.T) {
	b := newBoard(t)
	job := b.postJob(t, "emp")
	completeFlow(t, b.onboarding, "seeker", flows.JobSeeker, seekerAnswers())
	_, err := b.jobs.SetStatus(context.Background(), "emp", job.ID, JobClosed)
	require.NoError(t, err)

	_, err = b.applications.Apply(context.Background(), "seeker", job.ID, dtos.ApplyRequest{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationStatusMachine(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()
	job := b.postJob(t, "emp")
	completeFlow(t, b.onboarding, "seeker", flows.JobSeeker, seekerAnswers())
	app, err := b.applications.Apply(ctx, "seeker", job.ID, dtos.ApplyRequest{})
	require.NoError(t, err)

	_, err = b.applications.UpdateStatus(ctx, "someone-else", app.ID, dtos.ApplicationStatusRequest{Status: AppReviewed})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = b.applications.UpdateStatus(ctx, "emp", app.ID, dtos.ApplicationStatusRequest{Status: AppOffer})
	require.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []string{AppReviewed, AppInterview, AppOffer} {
		updated, err := b.applications.UpdateStatus(ctx, "emp", app.ID, dtos.ApplicationStatusRequest{Status: status, Note: "ok"})
		require.NoError(t, err, status)
		assert.Equal(t, status, updated.Status)
	}

	_, err = b.applications.UpdateStatus(ctx, "emp", app.ID, dtos.ApplicationStatusRequest{Status: AppRejected})
	require.ErrorIs(t, err, ErrInvalidTransition)

	events, err := b.applications.Events(ctx, "seeker", app.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, AppApplied, events[0].EventType)
	assert.Equal(t, "Status changed from INTERVIEW to OFFER. Note: ok", events[3].Details)

	_, err = b.applications.Events(ctx, "stranger", app.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForJobChecksOwner(t *testing.T) {
	b := newBoard(t)
	job := b.postJob(t, "emp")

	_, err := b.applications.ListForJob(context.Background(), "other", job.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	apps, err := b.applications.ListForJob(context.Background(), "emp", job.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)
}
