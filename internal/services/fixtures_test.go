package services

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/justsurfingit/temu/internal/database"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// memStore is an in-memory ProgressStore with the same version rules as the
// gorm store.
type memStore struct {
	mu      sync.Mutex
	recs    map[string]models.OnboardingRecord
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]models.OnboardingRecord{}}
}

func copyRecord(r models.OnboardingRecord) models.OnboardingRecord {
	r.Data = datatypes.JSONMap(wizard.FormState(r.Data).Clone())
	r.CompletedSteps = slices.Clone(r.CompletedSteps)
	return r
}

func (m *memStore) Find(_ context.Context, userID, flow string) (*models.OnboardingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[userID+"/"+flow]
	if !ok {
		return nil, ErrNotFound
	}
	r = copyRecord(r)
	return &r, nil
}

func (m *memStore) Save(_ context.Context, rec *models.OnboardingRecord, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	key := rec.UserID + "/" + rec.Flow
	if m.recs[key].Version != expectedVersion {
		return wizard.ErrVersionConflict
	}
	m.recs[key] = copyRecord(*rec)
	return nil
}

func (m *memStore) Delete(_ context.Context, userID, flow string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, userID+"/"+flow)
	return nil
}

type fakePublisher struct {
	published []wizard.FormState
	discarded []uint
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, state wizard.FormState) (uint, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.published = append(p.published, state.Clone())
	return uint(len(p.published)), nil
}

func (p *fakePublisher) Discard(_ context.Context, id uint) error {
	p.discarded = append(p.discarded, id)
	return nil
}

func employerAnswers() map[int]wizard.FormState {
	return map[int]wizard.FormState{
		flows.EmployerCompanyInfo: {"companyName": "PT Maju Jaya", "industry": "Retail", "companySize": "11-50"},
		flows.EmployerContact: {
			"contactPerson": "Sari",
			"contactPhone":  "+62 812-3456-7890",
			"contactEmail":  "hr@majujaya.co.id",
			"alamat":        map[string]any{"province": "DKI Jakarta", "city": "Jakarta Selatan", "street": "Jl. Sudirman 1"},
		},
		flows.EmployerProfile: {"description": "We run a chain of grocery stores across Jakarta and are hiring for many roles."},
	}
}

func postingAnswers() map[int]wizard.FormState {
	return map[int]wizard.FormState{
		flows.PostingBasicInfo: {
			"jobTitle": "Store Cashier", "numberOfPositions": "3", "jobType": "full-time",
			"workLocation": "Jakarta Selatan", "salaryMin": "4500000", "salaryMax": "6000000",
		},
		flows.PostingRequirements: {"gender": "any", "lastEducation": "SMA", "minExperienceYears": "0"},
		flows.PostingExpectations: {
			"ageRange":          map[string]any{"min": "18", "max": "35"},
			"expectedCharacter": []any{"honest", "friendly"},
		},
		flows.PostingAdditionalInfo: {"contactEmail": "hr@majujaya.co.id", "contactPhone": "081234567890"},
	}
}

func seekerAnswers() map[int]wizard.FormState {
	return map[int]wizard.FormState{
		flows.SeekerBasicInfo: {"fullName": "Budi Santoso", "phoneNumber": "0812-3456-7890", "email": "budi@example.com"},
		flows.SeekerPersonal:  {"birthPlace": "Bandung", "birthDate": "1998-04-12", "gender": "male"},
		flows.SeekerAddress: {
			"alamat": map[string]any{"province": "Jawa Barat", "city": "Bandung", "street": "Jl. Braga 10"},
		},
		flows.SeekerEducation:      {"pendidikan": []any{map[string]any{"level": "S1", "institution": "ITB", "graduationYear": "2020"}}},
		flows.SeekerWorkExperience: {"freshGraduate": true},
		flows.SeekerSkills:         {"skills": []any{"Go", "SQL"}},
		flows.SeekerExpectations: {
			"ekspektasiKerja": map[string]any{
				"jobTypes": []any{"full-time"}, "preferredLocation": "Jakarta",
				"salaryMin": "5000000", "salaryMax": "8000000",
			},
		},
		flows.SeekerCV:        {"cvFileUrl": "https://cdn.example/cv/u1/cv.pdf"},
		flows.SeekerAgreement: {"agreeToTerms": true},
	}
}

// completeFlow saves every step of flow in order with the given answers.
func completeFlow(t *testing.T, svc *OnboardingService, userID, flowName string, answers map[int]wizard.FormState) wizard.SaveResult {
	t.Helper()
	flow, err := flows.Lookup(flowName)
	require.NoError(t, err)
	var res wizard.SaveResult
	for step := 1; step <= flow.TotalSteps(); step++ {
		data := answers[step]
		if data == nil {
			data = wizard.FormState{}
		}
		res, err = svc.SaveStep(context.Background(), userID, flowName, wizard.SaveRequest{Step: step, Data: data})
		require.NoError(t, err, "step %d", step)
	}
	return res
}
