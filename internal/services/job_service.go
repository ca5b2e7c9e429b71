package services

import (
	"context"
	"time"

	"github.com/Deepanshv/resume-optimizer/internal/database"
	"github.com/Deepanshv/resume-optimizer/internal/dtos"
	"github.com/Deepanshv/resume-optimizer/internal/models"
	"github.com/Deepanshv/resume-optimizer/internal/validation"
)

// JobService is the CRUD layer over job records. It goes through the
// supervisor for every operation because the live handle changes across
// reconnects.
type JobService struct {
	Sup *database.Supervisor
}

func NewJobService(sup *database.Supervisor) *JobService {
	return &JobService{Sup: sup}
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	db, err := s.Sup.DB()
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		ClientName:         req.ClientName,
		CompanyName:        req.CompanyName,
		Position:           req.Position,
		JobDescription:     req.JobDescription,
		JobApplicationLink: req.JobApplicationLink,
		BaseResume:         req.BaseResume,
		Status:             models.StatusPendingOptimization,
	}
	if err := db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (s *JobService) ListJobs(ctx context.Context, status string) ([]models.Job, error) {
	db, err := s.Sup.DB()
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	q := db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	db, err := s.Sup.DB()
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	db, err := s.Sup.DB()
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	applyUpdate(&job, req)
	if err := db.WithContext(ctx).Save(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id uint) error {
	db, err := s.Sup.DB()
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).Delete(&models.Job{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.WithContext(ctx).First(&models.Job{}, id).Error
	}
	return nil
}

// ApplyOptimization persists a validated result onto the job and flips its
// status. Nothing is written on the failure path; the caller only gets here
// with a result that passed validation.
func (s *JobService) ApplyOptimization(ctx context.Context, job *models.Job, result *validation.OptimizationResult) error {
	db, err := s.Sup.DB()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	job.OptimizedResume = result.OptimizedResume
	job.ChangesSummary = result.ChangesSummary
	job.Status = models.StatusOptimized
	job.OptimizedOn = &now
	return db.WithContext(ctx).Save(job).Error
}

func applyUpdate(job *models.Job, req *dtos.JobUpdateRequest) {
	if req.ClientName != nil {
		job.ClientName = *req.ClientName
	}
	if req.CompanyName != nil {
		job.CompanyName = *req.CompanyName
	}
	if req.Position != nil {
		job.Position = *req.Position
	}
	if req.JobDescription != nil {
		job.JobDescription = *req.JobDescription
	}
	if req.JobApplicationLink != nil {
		job.JobApplicationLink = *req.JobApplicationLink
	}
	if req.BaseResume != nil {
		job.BaseResume = *req.BaseResume
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
}
