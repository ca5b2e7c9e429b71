package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Deepanshv/resume-optimizer/internal/database"
	"github.com/Deepanshv/resume-optimizer/internal/dtos"
	"github.com/Deepanshv/resume-optimizer/internal/models"
	"github.com/Deepanshv/resume-optimizer/internal/validation"
)

type fakeStore struct {
	jobs    map[uint]*models.Job
	failErr error
	applied *validation.OptimizationResult
}

func newFakeStore(jobs ...*models.Job) *fakeStore {
	s := &fakeStore{jobs: map[uint]*models.Job{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *fakeStore) CreateJob(_ context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	job := &models.Job{
		ID:          uint(len(s.jobs) + 1),
		ClientName:  req.ClientName,
		CompanyName: req.CompanyName,
		Position:    req.Position,
		Status:      models.StatusPendingOptimization,
	}
	s.jobs[job.ID] = job
	return job, nil
}

func (s *fakeStore) ListJobs(_ context.Context, status string) ([]models.Job, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	var out []models.Job
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (s *fakeStore) GetJob(_ context.Context, id uint) (*models.Job, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

func (s *fakeStore) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
	return job, nil
}

func (s *fakeStore) DeleteJob(ctx context.Context, id uint) error {
	if _, err := s.GetJob(ctx, id); err != nil {
		return err
	}
	delete(s.jobs, id)
	return nil
}

func (s *fakeStore) ApplyOptimization(_ context.Context, job *models.Job, result *validation.OptimizationResult) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.applied = result
	job.OptimizedResume = result.OptimizedResume
	job.ChangesSummary = result.ChangesSummary
	job.Status = models.StatusOptimized
	return nil
}

type fakeOptimizer struct {
	result *validation.OptimizationResult
	err    error
	calls  int
}

func (o *fakeOptimizer) Optimize(_ context.Context, _, _ string) (*validation.OptimizationResult, error) {
	o.calls++
	return o.result, o.err
}

func newRouter(store JobStore, opt Optimizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(store, opt, false)
	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/jobs", h.CreateJob)
	api.GET("/jobs", h.ListJobs)
	api.GET("/jobs/:id", h.GetJob)
	api.PUT("/jobs/:id", h.UpdateJob)
	api.DELETE("/jobs/:id", h.DeleteJob)
	api.POST("/jobs/:id/optimize", h.OptimizeJob)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pendingJob() *models.Job {
	return &models.Job{
		ID:             1,
		ClientName:     "Ada",
		CompanyName:    "Initech",
		Position:       "Backend Engineer",
		JobDescription: strings.Repeat("build services ", 5),
		BaseResume:     strings.Repeat("experience ", 10),
		Status:         models.StatusPendingOptimization,
	}
}

func TestCreateJob(t *testing.T) {
	r := newRouter(newFakeStore(), &fakeOptimizer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", dtos.JobCreationRequest{
		ClientName:  "Ada",
		CompanyName: "Initech",
		Position:    "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, models.StatusPendingOptimization, job.Status)
}

func TestCreateJobMissingFields(t *testing.T) {
	r := newRouter(newFakeStore(), &fakeOptimizer{})
	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", gin.H{"clientName": "Ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobNotFound(t *testing.T) {
	r := newRouter(newFakeStore(), &fakeOptimizer{})
	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJobInvalidID(t *testing.T) {
	r := newRouter(newFakeStore(), &fakeOptimizer{})
	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteJob(t *testing.T) {
	r := newRouter(newFakeStore(pendingJob()), &fakeOptimizer{})
	w := doJSON(t, r, http.MethodDelete, "/api/v1/jobs/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLimitedModeWhileDisconnected(t *testing.T) {
	store := newFakeStore()
	store.failErr = database.ErrNotConnected
	r := newRouter(store, &fakeOptimizer{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "limited mode")
}

func TestOptimizeJobSuccess(t *testing.T) {
	job := pendingJob()
	store := newFakeStore(job)
	opt := &fakeOptimizer{result: &validation.OptimizationResult{
		OptimizedResume: strings.Repeat("r", 120),
		ChangesSummary:  strings.Repeat("s", 40),
	}}
	r := newRouter(store, opt)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/1/optimize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, opt.calls)
	require.NotNil(t, store.applied)

	var got models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusOptimized, got.Status)
	assert.Equal(t, opt.result.OptimizedResume, got.OptimizedResume)
}

func TestOptimizeJobMissingDataDetails(t *testing.T) {
	job := pendingJob()
	job.BaseResume = ""
	job.JobDescription = ""
	opt := &fakeOptimizer{}
	r := newRouter(newFakeStore(job), opt)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/1/optimize", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, opt.calls, "no optimizer call for a job without inputs")

	var resp dtos.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(validation.KindMissingRequiredData), resp.Kind)
	assert.Contains(t, w.Body.String(), "baseResume")
	assert.Contains(t, w.Body.String(), "jobDescription")
}

func TestOptimizeJobErrorMapping(t *testing.T) {
	tests := []struct {
		kind   validation.Kind
		status int
	}{
		{validation.KindInvalidInput, http.StatusBadRequest},
		{validation.KindMissingAPIKey, http.StatusServiceUnavailable},
		{validation.KindProcessingError, http.StatusBadGateway},
		{validation.KindInvalidContentLength, http.StatusBadGateway},
		{validation.KindGenerationFailed, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			opt := &fakeOptimizer{err: &validation.Error{Kind: tt.kind, Message: "nope"}}
			store := newFakeStore(pendingJob())
			r := newRouter(store, opt)

			w := doJSON(t, r, http.MethodPost, "/api/v1/jobs/1/optimize", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Nil(t, store.applied, "nothing may be persisted on a failed optimization")

			var resp dtos.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.kind), resp.Kind)
		})
	}
}

func TestServiceErrorHidesDetailOutsideDev(t *testing.T) {
	store := newFakeStore()
	store.failErr = assertableError("connection string had password hunter2")
	r := newRouter(store, &fakeOptimizer{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
