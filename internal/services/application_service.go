package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
)

// ApplicationService runs the application lifecycle: apply, withdraw,
// accept/reject, and the waitlist promotion that keeps the reservation
// consistent. It holds no entity state between calls; every decision re-reads
// the store because concurrent requests contend on the same job rows.
type ApplicationService struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewApplicationService(store Store, log *zap.Logger) *ApplicationService {
	return &ApplicationService{
		store: store,
		now:   time.Now,
		log:   log,
	}
}

// ApplyResult is what the apply endpoint returns to the seeker.
type ApplyResult struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
	Intents       []NotificationIntent     `json:"-"`
}

// Apply creates an application for the caller against the job. The first
// applicant to an open job takes the negotiating slot and the job flips to
// reserved; everyone after that is waitlisted behind the holder.
func (s *ApplicationService) Apply(ctx context.Context, caller Caller, jobID, message string) (*ApplyResult, error) {
	if caller.ID == "" || caller.Role != models.RoleSeeker {
		return nil, ErrUnauthorized
	}

	profile, err := s.store.GetProfile(ctx, caller.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load applicant profile")
	}
	var linked bool
	if IsMinor(profile.Birthdate, s.now()) {
		// Live existence query, never the cached profile flag
		linked, err = s.store.HasActiveGuardianRelationship(ctx, caller.ID)
		if err != nil {
			return nil, errors.Wrap(err, "check guardian relationship")
		}
	}
	if !CanApply(profile, linked, s.now()) {
		return nil, ErrGuardianConsentRequired
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobOpen && job.Status != models.JobReserved {
		return nil, ErrJobNotAccepting
	}

	status := models.ApplicationWaitlisted
	if job.Status == models.JobOpen {
		status = models.ApplicationNegotiating
	}

	app := &models.Application{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		UserID:    caller.ID,
		Status:    status,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertApplication(ctx, app); err != nil {
		// Duplicate aborts before any job mutation
		return nil, err
	}

	if job.Status == models.JobOpen {
		flipped, err := s.store.CASJobStatus(ctx, job.ID, models.JobOpen, models.JobReserved)
		if err != nil {
			return nil, errors.Wrap(err, "reserve job")
		}
		if !flipped {
			// Another applicant flipped it first. The application row stays
			// as written; this window is accepted, not compensated.
			s.log.Warn("lost reservation race",
				zap.String("job_id", job.ID),
				zap.String("application_id", app.ID))
		}
	}

	intent := NotificationIntent{
		RecipientID: job.PostedBy,
		Kind:        "application_new",
		Title:       "New applicant",
		Body:        "Someone applied to \"" + job.Title + "\".",
		Route:       "/jobs/" + job.ID + "/applications",
	}
	if status == models.ApplicationWaitlisted {
		intent.Body = "Someone joined the waitlist for \"" + job.Title + "\"."
	}

	return &ApplyResult{
		ApplicationID: app.ID,
		Status:        status,
		Intents:       []NotificationIntent{intent},
	}, nil
}

// Withdraw marks the caller's application withdrawn. If it held the active
// slot, the oldest waitlisted applicant is promoted into it; with nobody
// waiting, the job goes back to open.
func (s *ApplicationService) Withdraw(ctx context.Context, callerID, applicationID, reason string) ([]NotificationIntent, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != callerID {
		return nil, ErrForbidden
	}

	wasActive := app.Status == models.ApplicationNegotiating || app.Status == models.ApplicationAccepted

	if err := s.store.UpdateApplicationStatus(ctx, app.ID, models.ApplicationWithdrawn, reason); err != nil {
		return nil, errors.Wrap(err, "withdraw application")
	}

	if !wasActive {
		return nil, nil
	}
	return s.promoteOrRelease(ctx, app.JobID)
}

// promoteOrRelease runs after the active slot empties: hand it to the oldest
// waitlisted applicant, or reopen the job when nobody is waiting.
func (s *ApplicationService) promoteOrRelease(ctx context.Context, jobID string) ([]NotificationIntent, error) {
	next, err := s.store.FindOldestWaitlisted(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "find waitlisted applicant")
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if job.Status == models.JobReserved || job.Status == models.JobFilled {
			if _, err := s.store.CASJobStatus(ctx, jobID, job.Status, models.JobOpen); err != nil {
				return nil, errors.Wrap(err, "release job")
			}
		}
		return nil, nil
	}

	if err := s.store.UpdateApplicationStatus(ctx, next.ID, models.ApplicationNegotiating, ""); err != nil {
		return nil, errors.Wrap(err, "promote waitlisted application")
	}
	if job.Status != models.JobReserved {
		if _, err := s.store.CASJobStatus(ctx, jobID, job.Status, models.JobReserved); err != nil {
			return nil, errors.Wrap(err, "re-reserve job")
		}
	}

	return []NotificationIntent{{
		RecipientID: next.UserID,
		Kind:        "waitlist_promoted",
		Title:       "Good news, a slot opened",
		Body:        "A spot opened up on \"" + job.Title + "\" and you're next in line.",
		Route:       "/applications/" + next.ID,
	}}, nil
}

// UpdateStatus is the provider's plain accept/reject write. It never touches
// the job row or the waitlist; only withdrawal promotes.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actorID, applicationID string, newStatus models.ApplicationStatus) ([]NotificationIntent, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	if newStatus != models.ApplicationAccepted && newStatus != models.ApplicationRejected {
		return nil, ErrInvalidStatus
	}

	app, job, err := s.loadForOwner(ctx, actorID, applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateApplicationStatus(ctx, app.ID, newStatus, ""); err != nil {
		return nil, errors.Wrap(err, "update application status")
	}

	return []NotificationIntent{decisionIntent(app, job, newStatus)}, nil
}

// Reject turns the application down with a reason. Rejecting the active
// holder releases the reservation immediately; the waitlist is left alone
// (promotion happens only on withdrawal).
func (s *ApplicationService) Reject(ctx context.Context, actorID, applicationID, reason string) ([]NotificationIntent, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}

	app, job, err := s.loadForOwner(ctx, actorID, applicationID)
	if err != nil {
		return nil, err
	}

	wasActive := app.Status == models.ApplicationNegotiating || app.Status == models.ApplicationAccepted

	if err := s.store.UpdateApplicationStatus(ctx, app.ID, models.ApplicationRejected, reason); err != nil {
		return nil, errors.Wrap(err, "reject application")
	}

	if wasActive && job.Status == models.JobReserved {
		if _, err := s.store.CASJobStatus(ctx, job.ID, models.JobReserved, models.JobOpen); err != nil {
			return nil, errors.Wrap(err, "release job")
		}
	}

	return []NotificationIntent{decisionIntent(app, job, models.ApplicationRejected)}, nil
}

func (s *ApplicationService) loadForOwner(ctx context.Context, actorID, applicationID string) (*models.Application, *models.Job, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, nil, err
	}
	if job.PostedBy != actorID {
		return nil, nil, ErrForbidden
	}
	return app, job, nil
}

func decisionIntent(app *models.Application, job *models.Job, status models.ApplicationStatus) NotificationIntent {
	intent := NotificationIntent{
		RecipientID: app.UserID,
		Kind:        "application_decision",
		Route:       "/applications/" + app.ID,
	}
	if status == models.ApplicationAccepted {
		intent.Title = "You got the job!"
		intent.Body = "Your application for \"" + job.Title + "\" was accepted."
	} else {
		intent.Title = "Application update"
		intent.Body = "Your application for \"" + job.Title + "\" was not selected this time."
	}
	return intent
}
