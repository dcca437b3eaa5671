package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusHistory is the append-only audit trail of job status changes.
type StatusHistory struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"jobId"`
	Status  JobStatus  `gorm:"type:varchar(32);not null" json:"status"`
	Notes   string     `gorm:"type:text" json:"notes"`
	ActorID *uuid.UUID `gorm:"type:uuid" json:"actorId,omitempty"`
	Actor   *User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (StatusHistory) TableName() string {
	return "status_history"
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}

// BeforeUpdate keeps history rows immutable.
func (h *StatusHistory) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}
