package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
)

// JobService manages provider postings.
type JobService struct {
	store Store
	now   func() time.Time
}

func NewJobService(store Store) *JobService {
	return &JobService{store: store, now: time.Now}
}

// NewJobParams is everything a provider supplies when posting.
type NewJobParams struct {
	Title               string
	Description         string
	Category            *string
	WageHourly          *float64
	MarketID            *string
	PublicLocationLabel *string
	Publish             bool
}

// Create inserts a posting owned by the caller. Providers and staff can post;
// publish=false leaves it in draft.
func (s *JobService) Create(ctx context.Context, caller Caller, p NewJobParams) (*models.Job, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}
	if caller.Role != models.RoleProvider && caller.Role != models.RoleStaff {
		return nil, ErrForbidden
	}

	status := models.JobDraft
	if p.Publish {
		status = models.JobOpen
	}
	job := &models.Job{
		ID:                  uuid.NewString(),
		PostedBy:            caller.ID,
		MarketID:            p.MarketID,
		Title:               strings.TrimSpace(p.Title),
		Description:         p.Description,
		Status:              status,
		WageHourly:          p.WageHourly,
		Category:            p.Category,
		PublicLocationLabel: p.PublicLocationLabel,
		CreatedAt:           s.now(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "create job")
	}
	return job, nil
}

// Browse loads the visible postings for a market as list items. Distance is
// derived upstream from the viewer's position, so it stays unset here.
func (s *JobService) Browse(ctx context.Context, marketID *string) ([]JobListItem, error) {
	jobs, err := s.store.ListVisibleJobs(ctx, marketID)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	items := make([]JobListItem, len(jobs))
	for i, j := range jobs {
		items[i] = JobListItem{Job: j}
	}
	return items, nil
}

// Applicants lists a posting's applications for its owner.
func (s *JobService) Applicants(ctx context.Context, callerID, jobID string) ([]models.Application, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != callerID {
		return nil, ErrForbidden
	}
	apps, err := s.store.ListApplicationsForJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "list applications")
	}
	return apps, nil
}

// Mine lists the caller's own postings, drafts included.
func (s *JobService) Mine(ctx context.Context, callerID string) ([]models.Job, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	jobs, err := s.store.ListJobsByOwner(ctx, callerID)
	if err != nil {
		return nil, errors.Wrap(err, "list own jobs")
	}
	return jobs, nil
}
