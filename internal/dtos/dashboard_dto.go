package dtos

type OnboardingSummary struct {
	Flow        string  `json:"flow"`
	Status      string  `json:"status"`
	CurrentStep int     `json:"current_step"`
	Percentage  float64 `json:"percentage"`
}

// Dashboard is the landing page data of a user. Only the sections that apply
// to the caller's role are set.
type Dashboard struct {
	Role       string              `json:"role"`
	Onboarding []OnboardingSummary `json:"onboarding,omitempty"`

	ApplicationsByStatus map[string]int64 `json:"applications_by_status,omitempty"`

	OpenPostings         int64 `json:"open_postings,omitempty"`
	ClosedPostings       int64 `json:"closed_postings,omitempty"`
	ApplicationsReceived int64 `json:"applications_received,omitempty"`

	Totals map[string]int64 `json:"totals,omitempty"`
}
