package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobAttachment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"jobId"`
	ObjectKey    string     `gorm:"not null" json:"-"`
	FileName     string     `json:"fileName"`
	ContentType  string     `json:"contentType"`
	Size         int64      `json:"size"`
	UploadedByID *uuid.UUID `gorm:"type:uuid" json:"uploadedById,omitempty"`
	URL          string     `gorm:"-" json:"url,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (a *JobAttachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
