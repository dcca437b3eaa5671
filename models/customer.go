package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid;index" json:"createdByUserId,omitempty"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"index" json:"email,omitempty"`
	Phone   string `gorm:"index" json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `gorm:"type:text" json:"notes,omitempty"`

	Jobs []Job `gorm:"foreignKey:CustomerID" json:"jobs,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
