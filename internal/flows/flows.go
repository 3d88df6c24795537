// Package flows defines the concrete wizards of the job board: job-seeker
// onboarding, employer onboarding and job posting.
package flows

import (
	"errors"
	"fmt"

	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
)

const (
	JobSeeker  = "job-seeker"
	Employer   = "employer"
	JobPosting = "job-posting"
)

var ErrUnknownFlow = errors.New("unknown flow")

var all = map[string]*wizard.Flow{
	JobSeeker:  JobSeekerFlow,
	Employer:   EmployerFlow,
	JobPosting: JobPostingFlow,
}

// Lookup returns the flow registered under name.
func Lookup(name string) (*wizard.Flow, error) {
	f, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	return f, nil
}

// Names lists the registered flows.
func Names() []string {
	return []string{JobSeeker, Employer, JobPosting}
}

// Role returns the user role allowed to run a flow.
func Role(name string) string {
	if name == JobSeeker {
		return models.RoleJobSeeker
	}
	return models.RoleEmployer
}

// merge combines several validators into one error set; the first message per field wins.
func merge(validators ...wizard.Validator) wizard.Validator {
	return func(state wizard.FormState) wizard.ValidationErrors {
		out := wizard.ValidationErrors{}
		for _, v := range validators {
			for field, msg := range v(state) {
				if _, ok := out[field]; !ok {
					out[field] = msg
				}
			}
		}
		return out
	}
}
