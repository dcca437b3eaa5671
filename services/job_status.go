package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/gorm"
)

// StatusChange is published after a status transition has been committed.
type StatusChange struct {
	Job       *models.Job
	OldStatus models.JobStatus
	NewStatus models.JobStatus
	Note      string
	Actor     *models.Actor
}

// StatusObserver reacts to committed status changes. It cannot fail the transition.
type StatusObserver interface {
	JobStatusChanged(ctx context.Context, change StatusChange)
}

// JobService manages repair jobs and their status workflow.
type JobService struct {
	db        *gorm.DB
	log       *slog.Logger
	observers []StatusObserver
	now       func() time.Time
}

func NewJobService(db *gorm.DB, log *slog.Logger, observers ...StatusObserver) *JobService {
	return &JobService{
		db:        db,
		log:       log,
		observers: observers,
		now:       time.Now,
	}
}

// UpdateStatus moves a job to status, records the history row and notifies observers.
func (s *JobService) UpdateStatus(ctx context.Context, actor *models.Actor, jobID uuid.UUID, status models.JobStatus, note string) (*models.Job, error) {
	if err := authorize(actor, models.CapUpdateJobStatus); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var job models.Job
	if err := db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	if err := checkJobAccess(actor, &job); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationError("status", fmt.Sprintf("unknown status %q", status))
	}
	if job.Status == status {
		return nil, newError(KindNoOpSameStatus, "job is already %s", status)
	}

	oldStatus := job.Status
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", status)
	}
	now := s.now()

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":            status,
			"actual_completion": nil,
		}
		if status.IsClosed() {
			updates["actual_completion"] = now
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return err
		}
		return appendHistory(tx, job.ID, status, note, &actor.ID)
	})
	if err != nil {
		return nil, internalError(err, "failed to update job status")
	}

	updated, err := s.load(db, job.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, StatusChange{
		Job:       updated,
		OldStatus: oldStatus,
		NewStatus: status,
		Note:      note,
		Actor:     actor,
	})
	return updated, nil
}

func (s *JobService) publish(ctx context.Context, change StatusChange) {
	for _, o := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("status observer panicked",
						"job", change.Job.JobNumber, "panic", fmt.Sprint(r))
				}
			}()
			o.JobStatusChanged(ctx, change)
		}()
	}
}

// load reads a job with its customer, technician and creator.
func (s *JobService) load(db *gorm.DB, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := db.Preload("Customer").
		Preload("AssignedTechnician").
		Preload("CreatedBy").
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "job")
	}
	return &job, nil
}

// appendHistory writes one status history row. actorID is nil for customer actions.
func appendHistory(tx *gorm.DB, jobID uuid.UUID, status models.JobStatus, note string, actorID *uuid.UUID) error {
	entry := models.StatusHistory{
		JobID:   jobID,
		Status:  status,
		Notes:   note,
		ActorID: actorID,
	}
	return tx.Create(&entry).Error
}
