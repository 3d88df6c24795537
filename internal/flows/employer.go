package flows

import (
	"github.com/justsurfingit/temu/internal/wizard"
)

// Employer onboarding steps.
const (
	EmployerCompanyInfo = iota + 1
	EmployerContact
	EmployerProfile
	EmployerConfirmation
)

type employerCompanyInfo struct {
	CompanyName string `json:"companyName" validate:"required,min=2,max=150"`
	Industry    string `json:"industry" validate:"required"`
	CompanySize string `json:"companySize" validate:"required,oneof=1-10 11-50 51-200 201-500 500+"`
	Website     string `json:"website" validate:"omitempty,url"`
}

type employerContact struct {
	ContactPerson string  `json:"contactPerson" validate:"required"`
	ContactPhone  string  `json:"contactPhone" validate:"required,idphone"`
	ContactEmail  string  `json:"contactEmail" validate:"required,email"`
	Alamat        address `json:"alamat"`
}

type employerProfile struct {
	Description string `json:"description" validate:"required,min=50,max=2000"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
}

var employerRegistry = wizard.MustRegistry(
	wizard.StepDefinition{ID: EmployerCompanyInfo, Path: "/onboarding/employer/company-info", Required: true},
	wizard.StepDefinition{ID: EmployerContact, Path: "/onboarding/employer/contact", Required: true},
	wizard.StepDefinition{ID: EmployerProfile, Path: "/onboarding/employer/profile", Required: true},
	wizard.StepDefinition{ID: EmployerConfirmation, Path: "/onboarding/employer/confirmation", Required: true},
)

// employerGuard locks the filled-in steps once the company profile has been
// confirmed; only the confirmation page stays reachable.
func employerGuard(p wizard.StepProgress, target int) (bool, string) {
	if p.Status == wizard.StatusCompleted && target < EmployerConfirmation {
		return false, "your company profile is already confirmed; earlier steps can no longer be changed here"
	}
	return true, ""
}

// EmployerFlow is the 4-step employer onboarding.
var EmployerFlow = &wizard.Flow{
	Name:     Employer,
	Registry: employerRegistry,
	Projections: map[int]wizard.Projection{
		EmployerCompanyInfo: wizard.Fields("companyName", "industry", "companySize", "website"),
		EmployerContact:     wizard.Fields("contactPerson", "contactPhone", "contactEmail", "alamat"),
		EmployerProfile:     wizard.Fields("description", "logoUrl"),
	},
	Validators: map[int]wizard.Validator{
		EmployerCompanyInfo: wizard.Schema[employerCompanyInfo](),
		EmployerContact:     wizard.Schema[employerContact](),
		EmployerProfile:     wizard.Schema[employerProfile](),
	},
	PhoneFields: []string{"contactPhone"},
	Guard:       employerGuard,
}
