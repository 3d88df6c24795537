package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/wizard"
)

func TestSaveStepAdvancesAndIsIdempotent(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	req := wizard.SaveRequest{Step: flows.EmployerCompanyInfo, Data: employerAnswers()[flows.EmployerCompanyInfo]}

	first, err := svc.SaveStep(ctx, "u1", flows.Employer, req)
	require.NoError(t, err)
	second, err := svc.SaveStep(ctx, "u1", flows.Employer, req)
	require.NoError(t, err)

	assert.True(t, first.Success)
	assert.Equal(t, 2, first.CurrentStep)
	assert.Equal(t, wizard.StatusInProgress, first.Status)
	assert.Equal(t, first.CurrentStep, second.CurrentStep)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.CompletedSteps, second.CompletedSteps)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, 25.0, second.Percentage)
}

func TestSaveStepRejectsMissingRequiredFields(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	_, err := svc.SaveStep(context.Background(), "u1", flows.Employer, wizard.SaveRequest{
		Step: flows.EmployerCompanyInfo,
		Data: wizard.FormState{"industry": "Retail"},
	})

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Fields, "companyName")
	assert.Contains(t, rej.Fields, "companySize")
	assert.NotContains(t, rej.Fields, "industry")

	snap, err := svc.Load(context.Background(), "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, wizard.StatusNotStarted, snap.Status)
}

func TestSaveStepAcceptsEmptyOptionalStep(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	res, err := svc.SaveStep(context.Background(), "u1", flows.JobSeeker, wizard.SaveRequest{
		Step: flows.SeekerSocialMedia,
		Data: wizard.FormState{},
	})

	require.NoError(t, err)
	assert.Equal(t, flows.SeekerPhoto, res.CurrentStep)
}

func TestSaveStepUnknownStepAndFlow(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	_, err := svc.SaveStep(context.Background(), "u1", flows.Employer, wizard.SaveRequest{Step: 9})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Fields, "step")

	_, err = svc.SaveStep(context.Background(), "u1", "recruiter", wizard.SaveRequest{Step: 1})
	assert.ErrorIs(t, err, flows.ErrUnknownFlow)
}

func TestUnknownStepsShareOneMetricSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewOnboardingService(newMemStore(), nil, metrics.New(reg))

	for step := 1000; step < 1050; step++ {
		_, err := svc.SaveStep(context.Background(), "u1", flows.Employer, wizard.SaveRequest{Step: step})
		require.Error(t, err)
	}

	n, err := testutil.GatherAndCount(reg, "wizard_step_saves_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveStepDropsKeysOfOtherSteps(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	data := employerAnswers()[flows.EmployerCompanyInfo].Clone()
	data["description"] = "smuggled into step one"

	_, err := svc.SaveStep(context.Background(), "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: data})
	require.NoError(t, err)

	snap, err := svc.Load(context.Background(), "u1", flows.Employer)
	require.NoError(t, err)
	assert.NotContains(t, snap.Data, "description")
	assert.Equal(t, "PT Maju Jaya", snap.Data["companyName"])
}

func TestSaveStepVersionConflict(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	data := employerAnswers()[flows.EmployerCompanyInfo]

	stale := 0
	_, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: data, Version: &stale})
	require.NoError(t, err)

	_, err = svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: data, Version: &stale})
	require.ErrorIs(t, err, wizard.ErrVersionConflict)

	current := 1
	res, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: data, Version: &current})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version)
}

func TestSaveStepSkipsAlreadySatisfiedSteps(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	answers := employerAnswers()

	_, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 2, Data: answers[2]})
	require.NoError(t, err)
	res, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: answers[1]})
	require.NoError(t, err)

	assert.Equal(t, flows.EmployerProfile, res.CurrentStep)
	assert.Equal(t, []int{1, 2}, res.CompletedSteps)
}

func TestSaveStepNeverReachesTerminalWithMissingRequired(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	answers := employerAnswers()

	_, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 1, Data: answers[1]})
	require.NoError(t, err)
	res, err := svc.SaveStep(ctx, "u1", flows.Employer, wizard.SaveRequest{Step: 3, Data: answers[3]})
	require.NoError(t, err)

	assert.Equal(t, flows.EmployerContact, res.CurrentStep)
	assert.Equal(t, wizard.StatusInProgress, res.Status)
}

func TestResavingCompletedProfileKeepsItCompleted(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	done := completeFlow(t, svc, "u1", flows.JobSeeker, seekerAnswers())
	require.Equal(t, wizard.StatusCompleted, done.Status)

	version := done.Version
	res, err := svc.SaveStep(ctx, "u1", flows.JobSeeker, wizard.SaveRequest{
		Step: flows.SeekerBasicInfo, Data: seekerAnswers()[flows.SeekerBasicInfo], Version: &version,
	})
	require.NoError(t, err)

	assert.Equal(t, flows.SeekerSummary, res.CurrentStep)
	assert.Equal(t, wizard.StatusCompleted, res.Status)
	assert.Equal(t, 100.0, res.Percentage)
	_, err = svc.RequireCompleted(ctx, "u1", flows.JobSeeker)
	assert.NoError(t, err)
}

func TestGoingBackDoesNotRevisitSkippedOptionalSteps(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	ctx := context.Background()
	answers := seekerAnswers()
	for _, step := range []int{flows.SeekerBasicInfo, flows.SeekerPersonal, flows.SeekerAddress, flows.SeekerSocialMedia, flows.SeekerPhoto} {
		data := answers[step]
		if data == nil {
			data = wizard.FormState{}
		}
		_, err := svc.SaveStep(ctx, "u1", flows.JobSeeker, wizard.SaveRequest{Step: step, Data: data})
		require.NoError(t, err)
	}

	res, err := svc.SaveStep(ctx, "u1", flows.JobSeeker, wizard.SaveRequest{Step: flows.SeekerAddress, Data: answers[flows.SeekerAddress]})
	require.NoError(t, err)

	assert.Equal(t, flows.SeekerEducation, res.CurrentStep)
	assert.Equal(t, wizard.StatusInProgress, res.Status)
}

func TestEmployerCompletes(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	res := completeFlow(t, svc, "u1", flows.Employer, employerAnswers())

	assert.Equal(t, flows.EmployerConfirmation, res.CurrentStep)
	assert.Equal(t, wizard.StatusCompleted, res.Status)
	assert.Equal(t, []int{1, 2, 3, 4}, res.CompletedSteps)
	assert.Equal(t, 100.0, res.Percentage)

	snap, err := svc.Load(context.Background(), "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, "081234567890", snap.Data["contactPhone"])
}

func TestJobPostingPublishesOnce(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewOnboardingService(newMemStore(), pub, nil)

	res := completeFlow(t, svc, "emp", flows.JobPosting, postingAnswers())
	require.Equal(t, wizard.StatusCompleted, res.Status)
	require.Len(t, pub.published, 1)
	assert.Equal(t, 3, pub.published[0]["numberOfPositions"])

	_, err := svc.SaveStep(context.Background(), "emp", flows.JobPosting, wizard.SaveRequest{Step: flows.PostingReview, Data: wizard.FormState{}})
	require.NoError(t, err)
	assert.Len(t, pub.published, 1)
}

func TestPublishIsDiscardedWhenSaveFails(t *testing.T) {
	pub := &fakePublisher{}
	store := newMemStore()
	svc := NewOnboardingService(store, pub, nil)
	answers := postingAnswers()
	ctx := context.Background()

	for step := 1; step <= 3; step++ {
		_, err := svc.SaveStep(ctx, "emp", flows.JobPosting, wizard.SaveRequest{Step: step, Data: answers[step]})
		require.NoError(t, err)
	}
	store.saveErr = errors.New("disk full")

	_, err := svc.SaveStep(ctx, "emp", flows.JobPosting, wizard.SaveRequest{Step: 4, Data: answers[4]})
	require.Error(t, err)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, []uint{1}, pub.discarded)
}

func TestLoadWithoutRecord(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	snap, err := svc.Load(context.Background(), "nobody", flows.JobSeeker)

	require.NoError(t, err)
	assert.Equal(t, wizard.NewProgress(), snap.StepProgress)
	assert.Empty(t, snap.Data)
	assert.Zero(t, snap.Percentage)
}

func TestResetRemovesProgress(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	completeFlow(t, svc, "u1", flows.Employer, employerAnswers())

	require.NoError(t, svc.Reset(context.Background(), "u1", flows.Employer))

	snap, err := svc.Load(context.Background(), "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, wizard.StatusNotStarted, snap.Status)
}

func TestRequireCompletedRedirectsToCurrentStep(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	_, err := svc.SaveStep(context.Background(), "u1", flows.JobSeeker, wizard.SaveRequest{
		Step: 1, Data: seekerAnswers()[1],
	})
	require.NoError(t, err)

	_, err = svc.RequireCompleted(context.Background(), "u1", flows.JobSeeker)

	var nf *wizard.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "/onboarding/job-seeker/personal", nf.Redirect)
}

func TestPrefillMergesWithoutAdvancing(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)

	snap, err := svc.Prefill(context.Background(), "emp", flows.JobPosting, wizard.FormState{
		"jobTitle":  "Barista",
		"salaryMin": "3000000",
		"unrelated": true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStep)
	assert.Equal(t, wizard.StatusInProgress, snap.Status)
	assert.Equal(t, "Barista", snap.Data["jobTitle"])
	assert.Equal(t, 3000000, snap.Data["salaryMin"])
	assert.NotContains(t, snap.Data, "unrelated")
}

func TestPrefillRefusedAfterCompletion(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), &fakePublisher{}, nil)
	completeFlow(t, svc, "emp", flows.JobPosting, postingAnswers())

	_, err := svc.Prefill(context.Background(), "emp", flows.JobPosting, wizard.FormState{"jobTitle": "Barista"})

	assert.ErrorIs(t, err, wizard.ErrAlreadyCompleted)
}

func TestRemoteForPresentsRejections(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	remote := svc.RemoteFor("u1")

	_, err := remote.SaveStep(context.Background(), flows.Employer, wizard.SaveRequest{Step: 1, Data: wizard.FormState{}})
	var rej *wizard.RemoteRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.StatusCode)
	assert.Contains(t, rej.Fields, "companyName")

	stale := 7
	_, err = remote.SaveStep(context.Background(), flows.Employer, wizard.SaveRequest{Step: 1, Data: employerAnswers()[1], Version: &stale})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusConflict, rej.StatusCode)
	assert.ErrorIs(t, err, wizard.ErrVersionConflict)
}

func TestSessionOverInProcessRemote(t *testing.T) {
	svc := NewOnboardingService(newMemStore(), nil, nil)
	answers := employerAnswers()

	s := wizard.NewSession(flows.EmployerFlow, svc.RemoteFor("u1"))
	for step := 1; step <= 3; step++ {
		s.Update(answers[step])
		_, err := s.Next(context.Background())
		require.NoError(t, err, "step %d", step)
	}
	p := s.Progress()
	assert.Equal(t, flows.EmployerConfirmation, p.CurrentStep)
	assert.Equal(t, wizard.StatusCompleted, p.Status)

	_, err := s.GoTo(flows.EmployerContact)
	var refused *wizard.NavigationRefused
	require.ErrorAs(t, err, &refused)

	reloaded := wizard.NewSession(flows.EmployerFlow, svc.RemoteFor("u1"))
	require.NoError(t, reloaded.Hydrate(context.Background()))
	assert.Equal(t, p.CurrentStep, reloaded.Progress().CurrentStep)
	assert.Equal(t, "PT Maju Jaya", reloaded.State()["companyName"])
}
