// models/email_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "SENT"
	EmailStatusFailed EmailStatus = "FAILED"
)

type EmailType string

const (
	EmailTypeStatusChange   EmailType = "STATUS_CHANGE"
	EmailTypeReadyForPickup EmailType = "READY_FOR_PICKUP"
	EmailTypeQuoteSent      EmailType = "QUOTE_SENT"
	EmailTypeInvoiceSent    EmailType = "INVOICE_SENT"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// EmailLog records every notification attempt, whatever the outcome.
type EmailLog struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Recipient    string      `gorm:"not null" json:"recipient"`
	Subject      string      `json:"subject"`
	Body         string      `gorm:"type:text" json:"body"`
	Status       EmailStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	ErrorMessage string      `gorm:"type:text" json:"errorMessage,omitempty"`
	Type         EmailType   `gorm:"type:varchar(32);index" json:"type"`
	Channel      string      `gorm:"type:varchar(16);default:'email'" json:"channel"`
	MessageID    string      `json:"messageId,omitempty"`

	RelatedEntity   string     `gorm:"type:varchar(32)" json:"relatedEntity,omitempty"` // job, quote, invoice
	RelatedEntityID *uuid.UUID `gorm:"type:uuid;index" json:"relatedEntityId,omitempty"`
	SentByID        *uuid.UUID `gorm:"type:uuid" json:"sentById,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (l *EmailLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
