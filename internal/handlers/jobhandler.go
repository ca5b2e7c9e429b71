package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Deepanshv/resume-optimizer/internal/database"
	"github.com/Deepanshv/resume-optimizer/internal/dtos"
	"github.com/Deepanshv/resume-optimizer/internal/models"
	"github.com/Deepanshv/resume-optimizer/internal/validation"
)

// JobStore is the persistence surface the handler needs; *services.JobService
// implements it.
type JobStore interface {
	CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error)
	ListJobs(ctx context.Context, status string) ([]models.Job, error)
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, id uint) error
	ApplyOptimization(ctx context.Context, job *models.Job, result *validation.OptimizationResult) error
}

// Optimizer runs the generation pipeline; *services.OptimizerService
// implements it.
type Optimizer interface {
	Optimize(ctx context.Context, baseResume, jobDescription string) (*validation.OptimizationResult, error)
}

// JobHandler wires the HTTP surface to the job and optimizer services.
type JobHandler struct {
	JobService JobStore
	Optimizer  Optimizer
	DevMode    bool
}

func NewJobHandler(jobs JobStore, opt Optimizer, devMode bool) *JobHandler {
	return &JobHandler{JobService: jobs, Optimizer: opt, DevMode: devMode}
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// ListJobs is GET /jobs?status=...
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListJobs(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob is GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob is PUT /jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var req dtos.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob is DELETE /jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OptimizeJob is POST /jobs/:id/optimize. It loads the job, rejects it with
// per-field detail when inputs are absent, runs the optimizer, and persists
// the result only when validation passed.
func (h *JobHandler) OptimizeJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	var missing []string
	if job.BaseResume == "" {
		missing = append(missing, "baseResume")
	}
	if job.JobDescription == "" {
		missing = append(missing, "jobDescription")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{
			Error:   "job is missing required data for optimization",
			Kind:    string(validation.KindMissingRequiredData),
			Details: gin.H{"missingFields": missing},
		})
		return
	}

	result, err := h.Optimizer.Optimize(c.Request.Context(), job.BaseResume, job.JobDescription)
	if err != nil {
		h.optimizeError(c, err)
		return
	}
	if err := h.JobService.ApplyOptimization(c.Request.Context(), job, result); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// optimizeError maps a tagged validation failure to a distinguishable HTTP
// category: bad input, missing configuration, unusable AI response, or a
// generic service error.
func (h *JobHandler) optimizeError(c *gin.Context, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		h.serviceError(c, err)
		return
	}

	status := http.StatusInternalServerError
	switch verr.Kind {
	case validation.KindMissingRequiredData, validation.KindInvalidInput:
		status = http.StatusBadRequest
	case validation.KindMissingAPIKey:
		status = http.StatusServiceUnavailable
	case validation.KindGenerationFailed,
		validation.KindProcessingError,
		validation.KindInvalidResponseFormat,
		validation.KindInvalidResumeFormat,
		validation.KindInvalidChangesSummary,
		validation.KindInvalidContentLength,
		validation.KindInvalidSummaryLength:
		status = http.StatusBadGateway
	}
	c.JSON(status, dtos.ErrorResponse{Error: verr.Message, Kind: string(verr.Kind)})
}

func (h *JobHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, dtos.ErrorResponse{
			Error: "database unavailable, service is running in limited mode",
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: "job not found"})
	default:
		body := dtos.ErrorResponse{Error: "internal server error"}
		if h.DevMode {
			body.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

func jobID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "invalid job id"})
		return 0, false
	}
	return uint(id), true
}
