package services

import (
	"context"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
)

// Store is the persistence layer the services run against. The live and demo
// deployments provide separate instances backed by parallel table sets; the
// service code is identical for both.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	HasActiveGuardianRelationship(ctx context.Context, childID string) (bool, error)

	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	CreateJob(ctx context.Context, job *models.Job) error
	ListVisibleJobs(ctx context.Context, marketID *string) ([]models.Job, error)
	ListJobsByOwner(ctx context.Context, ownerID string) ([]models.Job, error)

	// CASJobStatus flips the job status only if it still matches expected at
	// write time. Returns false (no error) when the guard fails.
	CASJobStatus(ctx context.Context, jobID string, expected, next models.JobStatus) (bool, error)

	GetApplication(ctx context.Context, applicationID string) (*models.Application, error)
	InsertApplication(ctx context.Context, app *models.Application) error
	UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, reason string) error
	ListApplicationsForJob(ctx context.Context, jobID string) ([]models.Application, error)
	FindOldestWaitlisted(ctx context.Context, jobID string) (*models.Application, error)
}

// Caller is the pre-resolved identity of the requester. Resolving it (session,
// demo override, role precedence) happens upstream; the services trust it.
type Caller struct {
	ID   string
	Role string
}

// NotificationIntent is returned by the engine for the caller to dispatch.
// The engine never sends anything itself.
type NotificationIntent struct {
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Route       string `json:"route"`
}
