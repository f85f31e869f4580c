package models

import (
	"time"

	"gorm.io/gorm"
)

// JobStatus governs whether a posting accepts new applications.
type JobStatus string

const (
	JobDraft     JobStatus = "draft"
	JobOpen      JobStatus = "open"
	JobReserved  JobStatus = "reserved"
	JobFilled    JobStatus = "filled"
	JobClosed    JobStatus = "closed"
	JobReviewing JobStatus = "reviewing"
)

// ApplicationStatus tracks one applicant's position against a job.
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationWaitlisted  ApplicationStatus = "waitlisted"
	ApplicationNegotiating ApplicationStatus = "negotiating"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
	ApplicationCancelled   ApplicationStatus = "cancelled"
)

const (
	RoleSeeker   = "seeker"
	RoleProvider = "provider"
	RoleStaff    = "staff"
)

// DefaultCategory is what a posting without a category counts as when filtering.
const DefaultCategory = "other"

type Profile struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	DisplayName string     `json:"display_name"`
	Role        string     `gorm:"default:'seeker'" json:"role"`
	Birthdate   *time.Time `json:"birthdate,omitempty"`
	MarketID    *string    `gorm:"index" json:"market_id,omitempty"`

	// Advisory cache of the guardian link state. Eligibility checks always
	// query guardian_relationships directly; this field can drift.
	GuardianStatus string `json:"guardian_status"`
}

type Job struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PostedBy string  `gorm:"not null;index" json:"posted_by"`
	MarketID *string `gorm:"index" json:"market_id,omitempty"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      JobStatus `gorm:"default:'draft';index" json:"status"`

	WageHourly          *float64 `json:"wage_hourly,omitempty"`
	Category            *string  `json:"category,omitempty"`
	PublicLocationLabel *string  `json:"public_location_label,omitempty"`
}

type Application struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// One application per (job, user): enforced by a composite unique index
	// created in database.migrate with a per-table name, since the live and
	// demo tables each need their own copy.
	JobID  string `gorm:"not null;index" json:"job_id"`
	UserID string `gorm:"not null" json:"user_id"`

	Status          ApplicationStatus `gorm:"default:'submitted';index" json:"status"`
	Message         string            `gorm:"type:text" json:"message"`
	RejectionReason string            `gorm:"type:text" json:"rejection_reason,omitempty"`
	WithdrawReason  string            `gorm:"type:text" json:"withdraw_reason,omitempty"`
}

type GuardianRelationship struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ChildID    string `gorm:"not null;index" json:"child_id"`
	GuardianID string `gorm:"not null;index" json:"guardian_id"`
	Status     string `gorm:"default:'pending'" json:"status"`
}

type Notification struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RecipientID string `gorm:"not null;index" json:"recipient_id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Body        string `gorm:"type:text" json:"body"`
	Route       string `json:"route"`
	Read        bool   `gorm:"default:false" json:"read"`
}
