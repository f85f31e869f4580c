package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/handlers"
	"github.com/pocketjobs/pocketjobs-api/internal/models"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

// memStore is a minimal services.Store for routing tests.
type memStore struct {
	profiles  map[string]*models.Profile
	guardians map[string]bool
	jobs      map[string]*models.Job
	apps      map[string]*models.Application
}

func newMemStore() *memStore {
	return &memStore{
		profiles:  map[string]*models.Profile{},
		guardians: map[string]bool{},
		jobs:      map[string]*models.Job{},
		apps:      map[string]*models.Application{},
	}
}

func (m *memStore) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, services.ErrUnauthorized
}

func (m *memStore) HasActiveGuardianRelationship(_ context.Context, id string) (bool, error) {
	return m.guardians[id], nil
}

func (m *memStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	if j, ok := m.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, services.ErrJobNotFound
}

func (m *memStore) CreateJob(_ context.Context, job *models.Job) error {
	m.jobs[job.ID] = job
	return nil
}

func (m *memStore) ListVisibleJobs(_ context.Context, _ *string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range m.jobs {
		if j.Status == models.JobOpen || j.Status == models.JobReserved {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *memStore) ListJobsByOwner(_ context.Context, owner string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range m.jobs {
		if j.PostedBy == owner {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *memStore) CASJobStatus(_ context.Context, id string, expected, next models.JobStatus) (bool, error) {
	j, ok := m.jobs[id]
	if !ok || j.Status != expected {
		return false, nil
	}
	j.Status = next
	return true, nil
}

func (m *memStore) GetApplication(_ context.Context, id string) (*models.Application, error) {
	if a, ok := m.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, services.ErrApplicationNotFound
}

func (m *memStore) InsertApplication(_ context.Context, app *models.Application) error {
	for _, a := range m.apps {
		if a.JobID == app.JobID && a.UserID == app.UserID {
			return services.ErrDuplicateApplication
		}
	}
	m.apps[app.ID] = app
	return nil
}

func (m *memStore) UpdateApplicationStatus(_ context.Context, id string, status models.ApplicationStatus, _ string) error {
	a, ok := m.apps[id]
	if !ok {
		return services.ErrApplicationNotFound
	}
	a.Status = status
	return nil
}

func (m *memStore) ListApplicationsForJob(_ context.Context, jobID string) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) FindOldestWaitlisted(_ context.Context, jobID string) (*models.Application, error) {
	var best *models.Application
	for _, a := range m.apps {
		if a.JobID != jobID || a.Status != models.ApplicationWaitlisted {
			continue
		}
		if best == nil || a.CreatedAt.Before(best.CreatedAt) {
			best = a
		}
	}
	return best, nil
}

func newTestRouter(st *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	r := gin.New()
	r.Use(handlers.Identity())
	handlers.Register(r.Group("/api/v1"),
		handlers.NewJobHandler(services.NewJobService(st), log),
		handlers.NewApplicationHandler(services.NewApplicationService(st, log), nil, log),
	)
	return r
}

func doRequest(r *gin.Engine, method, path, userID, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func seedAdultSeeker(st *memStore, id string) {
	bd := time.Now().AddDate(-25, 0, 0)
	st.profiles[id] = &models.Profile{ID: id, Role: models.RoleSeeker, Birthdate: &bd}
}

func TestApplyRoute(t *testing.T) {
	st := newMemStore()
	seedAdultSeeker(st, "alice")
	st.jobs["job-1"] = &models.Job{ID: "job-1", PostedBy: "owner-1", Title: "Dog walking", Status: models.JobOpen}
	r := newTestRouter(st)

	t.Run("missing identity is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs/job-1/apply", "", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", errCode(t, w))
	})

	t.Run("seeker applies", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs/job-1/apply", "alice", models.RoleSeeker,
			`{"message":"pick me"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res struct {
			ApplicationID string `json:"application_id"`
			Status        string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.NotEmpty(t, res.ApplicationID)
		assert.Equal(t, string(models.ApplicationNegotiating), res.Status)
		assert.Equal(t, models.JobReserved, st.jobs["job-1"].Status)
	})

	t.Run("second apply is a conflict", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs/job-1/apply", "alice", models.RoleSeeker, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "duplicate_application", errCode(t, w))
	})

	t.Run("minor without guardian link", func(t *testing.T) {
		bd := time.Now().AddDate(-14, 0, 0)
		st.profiles["kid"] = &models.Profile{ID: "kid", Role: models.RoleSeeker, Birthdate: &bd, GuardianStatus: "linked"}

		w := doRequest(r, http.MethodPost, "/api/v1/jobs/job-1/apply", "kid", models.RoleSeeker, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "guardian_consent_required", errCode(t, w))
	})

	t.Run("unknown job", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs/nope/apply", "alice", models.RoleSeeker, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "job_not_found", errCode(t, w))
	})
}

// Chunked requests report ContentLength -1 while still carrying a body; the
// message must not be dropped.
func TestApplyRoute_ChunkedBodyStillBinds(t *testing.T) {
	st := newMemStore()
	seedAdultSeeker(st, "alice")
	st.jobs["job-1"] = &models.Job{ID: "job-1", PostedBy: "owner-1", Title: "Dog walking", Status: models.JobOpen}
	r := newTestRouter(st)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/job-1/apply",
		strings.NewReader(`{"message":"pick me"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "alice")
	req.Header.Set("X-User-Role", models.RoleSeeker)
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, st.apps, 1)
	for _, a := range st.apps {
		assert.Equal(t, "pick me", a.Message)
	}
}

func TestDecisionRoutes(t *testing.T) {
	st := newMemStore()
	st.jobs["job-1"] = &models.Job{ID: "job-1", PostedBy: "owner-1", Title: "Dog walking", Status: models.JobReserved}
	st.apps["app-1"] = &models.Application{
		ID: "app-1", JobID: "job-1", UserID: "alice",
		Status: models.ApplicationNegotiating, CreatedAt: time.Now(),
	}
	r := newTestRouter(st)

	t.Run("non-owner cannot accept", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/applications/app-1/accept", "stranger", models.RoleProvider, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", errCode(t, w))
	})

	t.Run("owner rejects and job reopens", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/applications/app-1/reject", "owner-1", models.RoleProvider,
			`{"reason":"not a fit"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.ApplicationRejected, st.apps["app-1"].Status)
		assert.Equal(t, models.JobOpen, st.jobs["job-1"].Status)
	})
}

func TestJobRoutes(t *testing.T) {
	st := newMemStore()
	st.jobs["job-1"] = &models.Job{ID: "job-1", PostedBy: "owner-1", Title: "Dog walking", Status: models.JobOpen}
	st.jobs["job-2"] = &models.Job{ID: "job-2", PostedBy: "owner-1", Title: "Old posting", Status: models.JobClosed}
	r := newTestRouter(st)

	t.Run("browse is public", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/jobs?sort=newest", "", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Jobs []models.Job `json:"jobs"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Jobs, 1)
		assert.Equal(t, "job-1", res.Jobs[0].ID)
	})

	t.Run("bad distance param", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/jobs?max_distance_km=abc", "", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown sort mode", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/jobs?sort=wage", "", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", errCode(t, w))
	})

	t.Run("provider posts a job", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs", "owner-2", models.RoleProvider,
			`{"title":"Wash windows","description":"Ground floor","publish":true}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var job models.Job
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		assert.Equal(t, models.JobOpen, job.Status)
		assert.Equal(t, "owner-2", job.PostedBy)
	})

	t.Run("seeker cannot post", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/jobs", "alice", models.RoleSeeker,
			`{"title":"x","description":"y"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
