package flows

import (
	"github.com/justsurfingit/temu/internal/wizard"
)

// Job posting steps.
const (
	PostingBasicInfo = iota + 1
	PostingRequirements
	PostingExpectations
	PostingAdditionalInfo
	PostingReview
)

type postingBasicInfo struct {
	JobTitle          string `json:"jobTitle" validate:"required,max=150"`
	NumberOfPositions int    `json:"numberOfPositions" validate:"gte=1"`
	JobType           string `json:"jobType" validate:"required,oneof=full-time part-time contract internship freelance"`
	WorkLocation      string `json:"workLocation" validate:"required"`
	SalaryMin         int    `json:"salaryMin" validate:"gte=0"`
	SalaryMax         int    `json:"salaryMax" validate:"gtefield=SalaryMin"`
}

type postingRequirements struct {
	Gender             string `json:"gender" validate:"required,oneof=male female any"`
	LastEducation      string `json:"lastEducation" validate:"required"`
	MinExperienceYears int    `json:"minExperienceYears" validate:"gte=0,lte=50"`
}

type ageRange struct {
	Min int `json:"min" validate:"gte=15"`
	Max int `json:"max" validate:"gtefield=Min"`
}

type postingExpectations struct {
	AgeRange          ageRange `json:"ageRange"`
	ExpectedCharacter []string `json:"expectedCharacter" validate:"min=1,dive,required"`
}

type postingAdditionalInfo struct {
	ContactEmail    string `json:"contactEmail" validate:"required,email"`
	ContactPhone    string `json:"contactPhone" validate:"required,idphone"`
	AdditionalNotes string `json:"additionalNotes" validate:"omitempty,min=50,max=2000"`
}

var postingRegistry = wizard.MustRegistry(
	wizard.StepDefinition{ID: PostingBasicInfo, Path: "/jobs/new/basic-info", Required: true},
	wizard.StepDefinition{ID: PostingRequirements, Path: "/jobs/new/requirements", Required: true},
	wizard.StepDefinition{ID: PostingExpectations, Path: "/jobs/new/expectations", Required: true},
	wizard.StepDefinition{ID: PostingAdditionalInfo, Path: "/jobs/new/additional-info", Required: true},
	wizard.StepDefinition{ID: PostingReview, Path: "/jobs/new/review", Required: true},
)

// JobPostingFlow is the 5-step job posting wizard. Completing it publishes a posting.
var JobPostingFlow = &wizard.Flow{
	Name:     JobPosting,
	Registry: postingRegistry,
	Projections: map[int]wizard.Projection{
		PostingBasicInfo:      wizard.Fields("jobTitle", "numberOfPositions", "jobType", "workLocation", "salaryMin", "salaryMax"),
		PostingRequirements:   wizard.Fields("gender", "lastEducation", "minExperienceYears"),
		PostingExpectations:   wizard.Fields("ageRange", "expectedCharacter"),
		PostingAdditionalInfo: wizard.Fields("contactEmail", "contactPhone", "additionalNotes"),
	},
	Validators: map[int]wizard.Validator{
		PostingBasicInfo:      wizard.Schema[postingBasicInfo](),
		PostingRequirements:   wizard.Schema[postingRequirements](),
		PostingExpectations:   wizard.Schema[postingExpectations](),
		PostingAdditionalInfo: wizard.Schema[postingAdditionalInfo](),
	},
	NumericFields: []string{
		"numberOfPositions",
		"salaryMin",
		"salaryMax",
		"minExperienceYears",
		"ageRange.min",
		"ageRange.max",
	},
	PhoneFields: []string{"contactPhone"},
}

// PostingDraft is the typed view of a completed job posting wizard.
type PostingDraft struct {
	JobTitle           string   `json:"jobTitle"`
	NumberOfPositions  int      `json:"numberOfPositions"`
	JobType            string   `json:"jobType"`
	WorkLocation       string   `json:"workLocation"`
	SalaryMin          int      `json:"salaryMin"`
	SalaryMax          int      `json:"salaryMax"`
	Gender             string   `json:"gender"`
	LastEducation      string   `json:"lastEducation"`
	MinExperienceYears int      `json:"minExperienceYears"`
	AgeRange           ageRange `json:"ageRange"`
	ExpectedCharacter  []string `json:"expectedCharacter"`
	ContactEmail       string   `json:"contactEmail"`
	ContactPhone       string   `json:"contactPhone"`
	AdditionalNotes    string   `json:"additionalNotes"`
}

// DecodePosting reads the posting fields out of wizard state.
func DecodePosting(state wizard.FormState) (PostingDraft, error) {
	var d PostingDraft
	err := wizard.Decode(state, &d)
	return d, err
}
