package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/utils"
	"gorm.io/gorm"
)

// EmailLogService lists notification attempts.
type EmailLogService struct {
	db *gorm.DB
}

func NewEmailLogService(db *gorm.DB) *EmailLogService {
	return &EmailLogService{db: db}
}

type EmailLogFilter struct {
	Status          models.EmailStatus
	Type            models.EmailType
	Channel         string
	Recipient       string
	RelatedEntityID *uuid.UUID
	From            time.Time
	To              time.Time
	Page            int
	PageSize        int
}

// List returns notification attempts newest first. From and To are inclusive calendar
// days; zero values leave the range open.
func (s *EmailLogService) List(ctx context.Context, actor *models.Actor, f EmailLogFilter) ([]models.EmailLog, int64, error) {
	if err := authorize(actor, models.CapViewEmailLogs); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.EmailLog{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Channel != "" {
		q = q.Where("channel = ?", f.Channel)
	}
	if f.Recipient != "" {
		q = q.Where("LOWER(recipient) LIKE ?", "%"+strings.ToLower(f.Recipient)+"%")
	}
	if f.RelatedEntityID != nil {
		q = q.Where("related_entity_id = ?", *f.RelatedEntityID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", utils.BeginningOfDay(f.From))
	}
	if !f.To.IsZero() {
		q = q.Where("created_at <= ?", utils.EndOfDay(f.To))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, internalError(err, "failed to count email logs")
	}
	page, size := paging(f.Page, f.PageSize)
	var logs []models.EmailLog
	err := q.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, internalError(err, "failed to list email logs")
	}
	return logs, total, nil
}
