package flows

import (
	"github.com/justsurfingit/temu/internal/wizard"
)

// Job-seeker onboarding steps.
const (
	SeekerBasicInfo = iota + 1
	SeekerPersonal
	SeekerAddress
	SeekerSocialMedia
	SeekerPhoto
	SeekerEducation
	SeekerWorkExperience
	SeekerSkills
	SeekerExpectations
	SeekerCertifications
	SeekerLanguages
	SeekerCV
	SeekerAgreement
	SeekerSummary
)

type seekerBasicInfo struct {
	FullName    string `json:"fullName" validate:"required,min=3,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,idphone"`
	Email       string `json:"email" validate:"required,email"`
}

type seekerPersonal struct {
	BirthPlace    string `json:"birthPlace" validate:"required"`
	BirthDate     string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required,oneof=male female"`
	MaritalStatus string `json:"maritalStatus" validate:"omitempty,oneof=single married divorced widowed"`
}

// address is shared by job seekers and employers.
type address struct {
	Province   string `json:"province" validate:"required"`
	City       string `json:"city" validate:"required"`
	District   string `json:"district"`
	Street     string `json:"street" validate:"required"`
	PostalCode string `json:"postalCode" validate:"omitempty,numeric,len=5"`
}

type seekerAddress struct {
	Alamat address `json:"alamat"`
}

type education struct {
	Level          string `json:"level" validate:"required,oneof=SD SMP SMA SMK D1 D2 D3 D4 S1 S2 S3"`
	Institution    string `json:"institution" validate:"required"`
	Major          string `json:"major"`
	GraduationYear int    `json:"graduationYear" validate:"omitempty,gte=1950,lte=2100"`
}

type seekerEducation struct {
	Pendidikan []education `json:"pendidikan" validate:"min=1,dive"`
}

type workExperience struct {
	Company     string `json:"company" validate:"required"`
	Position    string `json:"position" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description" validate:"max=2000"`
}

type seekerWorkExperience struct {
	FreshGraduate   bool             `json:"freshGraduate"`
	PengalamanKerja []workExperience `json:"pengalamanKerja" validate:"dive"`
}

// validateWorkExperience requires at least one entry unless the seeker is a fresh graduate.
func validateWorkExperience(state wizard.FormState) wizard.ValidationErrors {
	var step seekerWorkExperience
	if err := wizard.Decode(state, &step); err != nil {
		return wizard.ValidationErrors{"pengalamanKerja": "pengalamanKerja contains values of the wrong type"}
	}
	if !step.FreshGraduate && len(step.PengalamanKerja) == 0 {
		return wizard.ValidationErrors{"pengalamanKerja": "pengalamanKerja is required unless you are a fresh graduate"}
	}
	return nil
}

type seekerSkills struct {
	Skills []string `json:"skills" validate:"min=1,dive,required"`
}

// JobExpectations is what a job seeker is looking for.
type JobExpectations struct {
	JobTypes          []string `json:"jobTypes" validate:"min=1,dive,oneof=full-time part-time contract internship freelance"`
	PreferredLocation string   `json:"preferredLocation" validate:"required"`
	SalaryMin         int      `json:"salaryMin" validate:"gte=0"`
	SalaryMax         int      `json:"salaryMax" validate:"gtefield=SalaryMin"`
}

type seekerExpectations struct {
	EkspektasiKerja JobExpectations `json:"ekspektasiKerja"`
}

type seekerAgreement struct {
	AgreeToTerms bool `json:"agreeToTerms" validate:"required"`
}

var seekerRegistry = wizard.MustRegistry(
	wizard.StepDefinition{ID: SeekerBasicInfo, Path: "/onboarding/job-seeker/basic-info", Required: true},
	wizard.StepDefinition{ID: SeekerPersonal, Path: "/onboarding/job-seeker/personal", Required: true},
	wizard.StepDefinition{ID: SeekerAddress, Path: "/onboarding/job-seeker/address", Required: true},
	wizard.StepDefinition{ID: SeekerSocialMedia, Path: "/onboarding/job-seeker/social-media"},
	wizard.StepDefinition{ID: SeekerPhoto, Path: "/onboarding/job-seeker/photo"},
	wizard.StepDefinition{ID: SeekerEducation, Path: "/onboarding/job-seeker/education", Required: true},
	wizard.StepDefinition{ID: SeekerWorkExperience, Path: "/onboarding/job-seeker/work-experience", Required: true},
	wizard.StepDefinition{ID: SeekerSkills, Path: "/onboarding/job-seeker/skills", Required: true},
	wizard.StepDefinition{ID: SeekerExpectations, Path: "/onboarding/job-seeker/expectations", Required: true},
	wizard.StepDefinition{ID: SeekerCertifications, Path: "/onboarding/job-seeker/certifications"},
	wizard.StepDefinition{ID: SeekerLanguages, Path: "/onboarding/job-seeker/languages"},
	wizard.StepDefinition{ID: SeekerCV, Path: "/onboarding/job-seeker/cv"},
	wizard.StepDefinition{ID: SeekerAgreement, Path: "/onboarding/job-seeker/agreement", Required: true},
	wizard.StepDefinition{ID: SeekerSummary, Path: "/onboarding/job-seeker/summary", Required: true},
)

// JobSeekerFlow is the 14-step job-seeker onboarding.
var JobSeekerFlow = &wizard.Flow{
	Name:     JobSeeker,
	Registry: seekerRegistry,
	Projections: map[int]wizard.Projection{
		SeekerBasicInfo:      wizard.Fields("fullName", "phoneNumber", "email"),
		SeekerPersonal:       wizard.Fields("birthPlace", "birthDate", "gender", "maritalStatus"),
		SeekerAddress:        wizard.Fields("alamat"),
		SeekerSocialMedia:    wizard.Fields("socialMedia"),
		SeekerPhoto:          wizard.Fields("profilePhotoUrl"),
		SeekerEducation:      wizard.Fields("pendidikan"),
		SeekerWorkExperience: wizard.Fields("freshGraduate", "pengalamanKerja"),
		SeekerSkills:         wizard.Fields("skills"),
		SeekerExpectations:   wizard.Fields("ekspektasiKerja"),
		SeekerCertifications: wizard.Fields("sertifikasi"),
		SeekerLanguages:      wizard.Fields("bahasa"),
		SeekerCV:             wizard.Fields("cvFileUrl"),
		SeekerAgreement:      wizard.Fields("agreeToTerms"),
	},
	Validators: map[int]wizard.Validator{
		SeekerBasicInfo:      wizard.Schema[seekerBasicInfo](),
		SeekerPersonal:       wizard.Schema[seekerPersonal](),
		SeekerAddress:        wizard.Schema[seekerAddress](),
		SeekerEducation:      wizard.Schema[seekerEducation](),
		SeekerWorkExperience: merge(validateWorkExperience, wizard.Schema[seekerWorkExperience]()),
		SeekerSkills:         wizard.Schema[seekerSkills](),
		SeekerExpectations:   wizard.Schema[seekerExpectations](),
		SeekerAgreement:      wizard.Schema[seekerAgreement](),
	},
	NumericFields: []string{
		"pendidikan[].graduationYear",
		"ekspektasiKerja.salaryMin",
		"ekspektasiKerja.salaryMax",
	},
	PhoneFields: []string{"phoneNumber"},
}

// DecodeExpectations reads the job expectations out of a job seeker's state.
func DecodeExpectations(state wizard.FormState) (JobExpectations, error) {
	var step seekerExpectations
	err := wizard.Decode(state, &step)
	return step.EkspektasiKerja, err
}
