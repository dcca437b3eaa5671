package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/gorm"
)

type CreateJobInput struct {
	CustomerID           uuid.UUID          `json:"customerId" binding:"required"`
	ApplianceType        string             `json:"applianceType" binding:"required"`
	Brand                string             `json:"brand"`
	Model                string             `json:"model"`
	SerialNumber         string             `json:"serialNumber"`
	IssueDescription     string             `json:"issueDescription"`
	Priority             models.JobPriority `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	AssignedTechnicianID *uuid.UUID         `json:"assignedTechnicianId"`
	EstimatedCompletion  *time.Time         `json:"estimatedCompletion"`
}

// Create opens a job ticket with the next job number. No history row is written; the
// history starts with the first transition.
func (s *JobService) Create(ctx context.Context, actor *models.Actor, in CreateJobInput) (*models.Job, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ApplianceType) == "" {
		return nil, validationError("applianceType", "is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("customerId", "customer does not exist")
		}
		return nil, internalError(err, "failed to load customer")
	}
	if in.AssignedTechnicianID != nil {
		if err := ensureTechnician(db, *in.AssignedTechnicianID); err != nil {
			return nil, err
		}
	}

	job := models.Job{
		Status:               models.JobStatusOpen,
		Priority:             in.Priority,
		CustomerID:           customer.ID,
		ApplianceType:        in.ApplianceType,
		Brand:                in.Brand,
		Model:                in.Model,
		SerialNumber:         in.SerialNumber,
		IssueDescription:     in.IssueDescription,
		AssignedTechnicianID: in.AssignedTechnicianID,
		CreatedByID:          &actor.ID,
		EstimatedCompletion:  in.EstimatedCompletion,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := nextJobNumber(tx)
		if err != nil {
			return err
		}
		job.JobNumber = number
		return tx.Create(&job).Error
	})
	if err != nil {
		return nil, internalError(err, "failed to create job")
	}
	return s.load(db, job.ID)
}

type JobFilter struct {
	Status     models.JobStatus
	CustomerID *uuid.UUID
	Search     string
	Page       int
	PageSize   int
}

// List returns jobs newest first. Technicians only see jobs assigned to them.
func (s *JobService) List(ctx context.Context, actor *models.Actor, f JobFilter) ([]models.Job, int64, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Job{})
	if actor.Role == models.RoleTechnician {
		q = q.Where("assigned_technician_id = ?", actor.ID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(job_number) LIKE ? OR LOWER(appliance_type) LIKE ? OR LOWER(brand) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, internalError(err, "failed to count jobs")
	}

	page, size := paging(f.Page, f.PageSize)
	var jobs []models.Job
	err := q.Preload("Customer").
		Preload("AssignedTechnician").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, internalError(err, "failed to list jobs")
	}
	return jobs, total, nil
}

// Get returns a job with its relations and history, oldest history first.
func (s *JobService) Get(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Job, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	job, err := s.load(db.Preload("StatusHistory", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	}), id)
	if err != nil {
		return nil, err
	}
	if err := checkJobAccess(actor, job); err != nil {
		return nil, err
	}
	return job, nil
}

// History lists the status history of a job in creation order.
func (s *JobService) History(ctx context.Context, actor *models.Actor, id uuid.UUID) ([]models.StatusHistory, error) {
	job, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return job.StatusHistory, nil
}

// Assign sets or clears the technician of a job.
func (s *JobService) Assign(ctx context.Context, actor *models.Actor, id uuid.UUID, technicianID *uuid.UUID) (*models.Job, error) {
	if err := authorize(actor, models.CapAssignTechnician); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var job models.Job
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	if technicianID != nil {
		if err := ensureTechnician(db, *technicianID); err != nil {
			return nil, err
		}
	}
	if err := db.Model(&job).Update("assigned_technician_id", technicianID).Error; err != nil {
		return nil, internalError(err, "failed to assign technician")
	}
	return s.load(db, job.ID)
}

// Track is the public lookup: the job is only returned when email matches the
// customer's address. Any mismatch reads as not found.
func (s *JobService) Track(ctx context.Context, jobNumber, email string) (*models.Job, error) {
	email = strings.TrimSpace(email)
	if jobNumber == "" || email == "" {
		return nil, newError(KindNotFound, "job not found")
	}
	var job models.Job
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("StatusHistory", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		First(&job, "job_number = ?", jobNumber).Error
	if err != nil {
		return nil, lookupError(err, "job")
	}
	if job.Customer == nil || !strings.EqualFold(job.Customer.Email, email) {
		return nil, newError(KindNotFound, "job not found")
	}
	return &job, nil
}

func ensureTechnician(db *gorm.DB, id uuid.UUID) error {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("assignedTechnicianId", "user does not exist")
		}
		return internalError(err, "failed to load technician")
	}
	if user.Role != models.RoleTechnician && user.Role != models.RoleAdmin {
		return validationError("assignedTechnicianId", "user is not a technician")
	}
	return nil
}

func paging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
