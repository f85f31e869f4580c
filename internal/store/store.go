package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

// Tables names the backing tables for one deployment flavor. Live and demo
// run against parallel sets so demo sessions can't touch real data.
type Tables struct {
	Profiles              string
	Jobs                  string
	Applications          string
	GuardianRelationships string
	Notifications         string
}

var Live = Tables{
	Profiles:              "profiles",
	Jobs:                  "jobs",
	Applications:          "applications",
	GuardianRelationships: "guardian_relationships",
	Notifications:         "notifications",
}

var Demo = Tables{
	Profiles:              "demo_profiles",
	Jobs:                  "demo_jobs",
	Applications:          "demo_applications",
	GuardianRelationships: "demo_guardian_relationships",
	Notifications:         "demo_notifications",
}

// Store implements services.Store on gorm/Postgres.
type Store struct {
	db *gorm.DB
	t  Tables
}

func New(db *gorm.DB, t Tables) *Store {
	return &Store{db: db, t: t}
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Table(s.t.Profiles).Where("id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &p, nil
}

func (s *Store) HasActiveGuardianRelationship(ctx context.Context, childID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Table(s.t.GuardianRelationships).
		Where("child_id = ? AND status = ?", childID, "active").
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "count guardian relationships")
	}
	return n > 0, nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var j models.Job
	err := s.db.WithContext(ctx).Table(s.t.Jobs).Where("id = ?", jobID).Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrJobNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get job")
	}
	return &j, nil
}

func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Table(s.t.Jobs).Create(job).Error
}

func (s *Store) ListVisibleJobs(ctx context.Context, marketID *string) ([]models.Job, error) {
	q := s.db.WithContext(ctx).Table(s.t.Jobs).
		Where("status IN ?", []models.JobStatus{models.JobOpen, models.JobReserved})
	if marketID != nil {
		q = q.Where("market_id = ?", *marketID)
	}
	var jobs []models.Job
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "list visible jobs")
	}
	return jobs, nil
}

func (s *Store) ListJobsByOwner(ctx context.Context, ownerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).Table(s.t.Jobs).
		Where("posted_by = ?", ownerID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list jobs by owner")
	}
	return jobs, nil
}

// CASJobStatus is the only way job status changes. The WHERE guard on the
// current status is what keeps two concurrent applicants from both taking
// the reservation.
func (s *Store) CASJobStatus(ctx context.Context, jobID string, expected, next models.JobStatus) (bool, error) {
	res := s.db.WithContext(ctx).Table(s.t.Jobs).
		Where("id = ? AND status = ?", jobID, expected).
		Updates(map[string]any{"status": next, "updated_at": time.Now()})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "cas job status")
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	var a models.Application
	err := s.db.WithContext(ctx).Table(s.t.Applications).Where("id = ?", applicationID).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrApplicationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get application")
	}
	return &a, nil
}

func (s *Store) InsertApplication(ctx context.Context, app *models.Application) error {
	err := s.db.WithContext(ctx).Table(s.t.Applications).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// (job_id, user_id) unique index
		return services.ErrDuplicateApplication
	}
	if err != nil {
		return errors.Wrap(err, "insert application")
	}
	return nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, reason string) error {
	cols := map[string]any{"status": status, "updated_at": time.Now()}
	switch status {
	case models.ApplicationRejected:
		cols["rejection_reason"] = reason
	case models.ApplicationWithdrawn:
		cols["withdraw_reason"] = reason
	}
	res := s.db.WithContext(ctx).Table(s.t.Applications).
		Where("id = ?", applicationID).
		Updates(cols)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update application status")
	}
	if res.RowsAffected == 0 {
		return services.ErrApplicationNotFound
	}
	return nil
}

func (s *Store) ListApplicationsForJob(ctx context.Context, jobID string) ([]models.Application, error) {
	var apps []models.Application
	err := s.db.WithContext(ctx).Table(s.t.Applications).
		Where("job_id = ?", jobID).
		Order("created_at ASC, id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, errors.Wrap(err, "list applications for job")
	}
	return apps, nil
}

// FindOldestWaitlisted returns the next applicant in line, or nil when the
// waitlist is empty. The id tie-break keeps promotion deterministic when two
// applications share a timestamp.
func (s *Store) FindOldestWaitlisted(ctx context.Context, jobID string) (*models.Application, error) {
	var apps []models.Application
	err := s.db.WithContext(ctx).Table(s.t.Applications).
		Where("job_id = ? AND status = ?", jobID, models.ApplicationWaitlisted).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&apps).Error
	if err != nil {
		return nil, errors.Wrap(err, "find oldest waitlisted")
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Table(s.t.Notifications).Create(n).Error
}
