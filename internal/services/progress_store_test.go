package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
)

func newRecord(userID string, version int) *models.OnboardingRecord {
	return &models.OnboardingRecord{
		UserID:         userID,
		Flow:           flows.Employer,
		CurrentStep:    2,
		CompletedSteps: []int{1},
		Status:         string(wizard.StatusInProgress),
		Data:           datatypes.JSONMap{"companyName": "PT Maju Jaya"},
		Version:        version,
	}
}

func TestGormProgressStoreRoundTrip(t *testing.T) {
	store := NewGormProgressStore(newTestDB(t))
	ctx := context.Background()

	_, err := store.Find(ctx, "u1", flows.Employer)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, newRecord("u1", 1), 0))

	got, err := store.Find(ctx, "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStep)
	assert.Equal(t, []int{1}, got.CompletedSteps)
	assert.Equal(t, "PT Maju Jaya", got.Data["companyName"])
	assert.Equal(t, 1, got.Version)

	got.CurrentStep = 3
	got.CompletedSteps = []int{1, 2}
	got.Version = 2
	require.NoError(t, store.Save(ctx, got, 1))

	again, err := store.Find(ctx, "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, 3, again.CurrentStep)
	assert.Equal(t, []int{1, 2}, again.CompletedSteps)
	assert.Equal(t, 2, again.Version)
}

func TestGormProgressStoreVersionConflicts(t *testing.T) {
	store := NewGormProgressStore(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("u1", 1), 0))

	// a second first insert loses
	assert.ErrorIs(t, store.Save(ctx, newRecord("u1", 1), 0), wizard.ErrVersionConflict)

	got, err := store.Find(ctx, "u1", flows.Employer)
	require.NoError(t, err)
	got.Version = 3
	assert.ErrorIs(t, store.Save(ctx, got, 2), wizard.ErrVersionConflict)

	unchanged, err := store.Find(ctx, "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.Version)
}

func TestGormProgressStoreFallbackPath(t *testing.T) {
	store := NewGormProgressStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.selectThenWrite(ctx, newRecord("u1", 1), 0))

	rec := newRecord("u1", 2)
	rec.CurrentStep = 4
	require.NoError(t, store.selectThenWrite(ctx, rec, 1))

	got, err := store.Find(ctx, "u1", flows.Employer)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentStep)
	assert.Equal(t, 2, got.Version)

	assert.ErrorIs(t, store.selectThenWrite(ctx, newRecord("u1", 3), 1), wizard.ErrVersionConflict)
	assert.ErrorIs(t, store.selectThenWrite(ctx, newRecord("u2", 2), 1), wizard.ErrVersionConflict)
}

func TestGormProgressStoreDelete(t *testing.T) {
	store := NewGormProgressStore(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("u1", 1), 0))

	require.NoError(t, store.Delete(ctx, "u1", flows.Employer))

	_, err := store.Find(ctx, "u1", flows.Employer)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Save(ctx, newRecord("u1", 1), 0))
}

func TestOnboardingSurvivesReloadWithGormStore(t *testing.T) {
	db := newTestDB(t)
	svc := NewOnboardingService(NewGormProgressStore(db), nil, nil)
	answers := seekerAnswers()
	ctx := context.Background()

	for step := 1; step <= 3; step++ {
		_, err := svc.SaveStep(ctx, "seeker", flows.JobSeeker, wizard.SaveRequest{Step: step, Data: answers[step]})
		require.NoError(t, err)
	}

	// a fresh service over the same database stands in for a page reload
	fresh := NewOnboardingService(NewGormProgressStore(db), nil, nil)
	snap, err := fresh.Load(ctx, "seeker", flows.JobSeeker)
	require.NoError(t, err)

	assert.Equal(t, flows.SeekerSocialMedia, snap.CurrentStep)
	assert.Equal(t, []int{1, 2, 3}, snap.CompletedSteps)
	assert.Equal(t, "081234567890", snap.Data["phoneNumber"])
	assert.Equal(t, "Bandung", wizard.FormState(snap.Data).GetString("alamat.city"))
	assert.Equal(t, 3, snap.Version)
}
