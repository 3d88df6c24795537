package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User mirrors an identity issued by the external auth provider.
type User struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email string `gorm:"index" json:"email"`
	Role  string `gorm:"size:20;not null;default:'JOB_SEEKER'" json:"role"`
}

// OnboardingRecord is the persisted progress of one wizard for one user.
// The pair (user_id, flow) is unique.
type OnboardingRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"size:64;not null;uniqueIndex:idx_onboarding_user_flow" json:"user_id"`
	Flow   string `gorm:"size:32;not null;uniqueIndex:idx_onboarding_user_flow" json:"flow"`

	CurrentStep    int               `gorm:"not null;default:1" json:"current_step"`
	CompletedSteps []int             `gorm:"type:text;serializer:json" json:"completed_steps"`
	Status         string            `gorm:"size:20;not null;default:'NOT_STARTED'" json:"status"`
	Data           datatypes.JSONMap `json:"data"`
	// Version increases with every save and guards against lost updates.
	Version int `gorm:"not null;default:0" json:"version"`

	// JobPostingID is set once a completed job-posting wizard has been published.
	JobPostingID *uint `json:"job_posting_id,omitempty"`
}

type JobPosting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EmployerID  string `gorm:"size:64;not null;index" json:"employer_id"`
	CompanyName string `json:"company_name"`

	Title              string   `gorm:"not null" json:"title"`
	NumberOfPositions  int      `json:"number_of_positions"`
	JobType            string   `gorm:"size:20;index" json:"job_type"`
	WorkLocation       string   `json:"work_location"`
	SalaryMin          int      `json:"salary_min"`
	SalaryMax          int      `json:"salary_max"`
	Gender             string   `gorm:"size:10" json:"gender"`
	LastEducation      string   `json:"last_education"`
	MinExperienceYears int      `json:"min_experience_years"`
	AgeMin             int      `json:"age_min"`
	AgeMax             int      `json:"age_max"`
	ExpectedCharacter  []string `gorm:"type:text;serializer:json" json:"expected_character"`
	AdditionalNotes    string   `gorm:"type:text" json:"additional_notes"`
	ContactEmail       string   `json:"contact_email"`
	ContactPhone       string   `json:"contact_phone"`
	Status             string   `gorm:"size:10;not null;default:'OPEN';index" json:"status"`
}

type JobApplication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobPostingID uint       `gorm:"not null;uniqueIndex:idx_application_job_seeker" json:"job_posting_id"`
	JobPosting   JobPosting `json:"job_posting,omitempty"`
	SeekerID     string     `gorm:"size:64;not null;uniqueIndex:idx_application_job_seeker" json:"seeker_id"`

	Status      string `gorm:"size:20;not null;default:'APPLIED'" json:"status"`
	CoverLetter string `gorm:"type:text" json:"cover_letter"`
	CVFileURL   string `json:"cv_file_url"`
}

// ApplicationEvent is the audit trail of an application's status changes.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ApplicationID uint      `gorm:"index" json:"application_id"`
	EventType     string    `json:"event_type"`
	Details       string    `gorm:"type:text" json:"details"`
}

// All lists every model for migrations.
func All() []any {
	return []any{&User{}, &OnboardingRecord{}, &JobPosting{}, &JobApplication{}, &ApplicationEvent{}}
}

// User roles issued by the auth provider.
const (
	RoleJobSeeker = "JOB_SEEKER"
	RoleEmployer  = "EMPLOYER"
	RoleAdmin     = "ADMIN"
)
