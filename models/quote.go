package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft              QuoteStatus = "DRAFT"
	QuoteStatusSent               QuoteStatus = "SENT"
	QuoteStatusAccepted           QuoteStatus = "ACCEPTED"
	QuoteStatusRejected           QuoteStatus = "REJECTED"
	QuoteStatusConvertedToInvoice QuoteStatus = "CONVERTED_TO_INVOICE"
	QuoteStatusExpired            QuoteStatus = "EXPIRED"
)

// CustomerResponse is the customer's answer to a quote. It is written once.
type CustomerResponse string

const (
	ResponseAccepted CustomerResponse = "ACCEPTED"
	ResponseRejected CustomerResponse = "REJECTED"
)

type Quote struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber string      `gorm:"uniqueIndex;not null" json:"quoteNumber"`
	Status      QuoteStatus `gorm:"type:varchar(32);index;not null" json:"status"`

	JobID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"jobId"`
	Job         *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"createdById,omitempty"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"taxRate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"taxAmount"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`

	ValidUntil time.Time `json:"validUntil"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`

	CustomerResponse     *CustomerResponse `gorm:"type:varchar(16)" json:"customerResponse,omitempty"`
	CustomerResponseDate *time.Time        `json:"customerResponseDate,omitempty"`
	RejectionReason      string            `gorm:"type:text" json:"rejectionReason,omitempty"`

	ConvertedToInvoiceID *uuid.UUID `gorm:"type:uuid" json:"convertedToInvoiceId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"quoteId"`
	Position    int             `gorm:"default:0" json:"position"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    int             `gorm:"default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuoteStatusDraft
	}
	return
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// IsExpired reports whether the validity window closed before now.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ValidUntil.Before(now)
}

// LineTotal is quantity times unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
