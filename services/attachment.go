package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/storage"
	"gorm.io/gorm"
)

const (
	MaxAttachmentSize = 10 << 20
	attachmentURLTTL  = 15 * time.Minute
)

var attachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// AttachmentService stores job photos in object storage.
type AttachmentService struct {
	db    *gorm.DB
	store storage.ObjectStore
	log   *slog.Logger
}

// NewAttachmentService accepts a nil store; uploads then fail with InvalidState.
func NewAttachmentService(db *gorm.DB, store storage.ObjectStore, log *slog.Logger) *AttachmentService {
	return &AttachmentService{db: db, store: store, log: log}
}

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload validates and stores a photo for a job, then records it.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.Actor, jobID uuid.UUID, up Upload) (*models.JobAttachment, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, newError(KindInvalidState, "attachment storage is not configured")
	}
	contentType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if !attachmentTypes[contentType] {
		return nil, validationError("file", "unsupported content type "+up.ContentType)
	}
	if up.Size <= 0 || up.Size > MaxAttachmentSize {
		return nil, validationError("file", fmt.Sprintf("size must be between 1 byte and %d MB", MaxAttachmentSize>>20))
	}

	db := s.db.WithContext(ctx)
	var job models.Job
	if err := db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, lookupError(err, "job")
	}
	if err := checkJobAccess(actor, &job); err != nil {
		return nil, err
	}

	attachment := models.JobAttachment{
		ID:           uuid.New(),
		JobID:        job.ID,
		FileName:     filepath.Base(up.FileName),
		ContentType:  contentType,
		Size:         up.Size,
		UploadedByID: &actor.ID,
	}
	attachment.ObjectKey = fmt.Sprintf("jobs/%s/%s%s", job.ID, attachment.ID, strings.ToLower(filepath.Ext(up.FileName)))

	if err := s.store.Put(ctx, attachment.ObjectKey, up.Body, up.Size, contentType); err != nil {
		return nil, internalError(err, "failed to store attachment")
	}
	if err := db.Create(&attachment).Error; err != nil {
		if rmErr := s.store.Remove(ctx, attachment.ObjectKey); rmErr != nil {
			s.log.Warn("orphaned attachment object", "key", attachment.ObjectKey, "error", rmErr)
		}
		return nil, internalError(err, "failed to save attachment")
	}
	s.sign(ctx, &attachment)
	return &attachment, nil
}

// List returns the job's attachments with short lived download URLs.
func (s *AttachmentService) List(ctx context.Context, actor *models.Actor, jobID uuid.UUID) ([]models.JobAttachment, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
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

	var attachments []models.JobAttachment
	if err := db.Where("job_id = ?", job.ID).Order("created_at ASC").Find(&attachments).Error; err != nil {
		return nil, internalError(err, "failed to list attachments")
	}
	for i := range attachments {
		s.sign(ctx, &attachments[i])
	}
	return attachments, nil
}

func (s *AttachmentService) sign(ctx context.Context, a *models.JobAttachment) {
	if s.store == nil {
		return
	}
	u, err := s.store.PresignGet(ctx, a.ObjectKey, a.FileName, attachmentURLTTL)
	if err != nil {
		s.log.Warn("presign attachment", "key", a.ObjectKey, "error", err)
		return
	}
	a.URL = u
}
