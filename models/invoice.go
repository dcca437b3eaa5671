package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string        `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	Status        InvoiceStatus `gorm:"type:varchar(32);not null" json:"status"`

	// One invoice per job.
	JobID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"jobId"`
	Job         *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	QuoteID     *uuid.UUID `gorm:"type:uuid" json:"quoteId,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"createdById,omitempty"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"taxRate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"taxAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"paidAmount"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balanceAmount"`

	IssueDate     time.Time  `json:"issueDate"`
	DueDate       time.Time  `json:"dueDate"`
	PaidDate      *time.Time `json:"paidDate,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Position    int             `gorm:"default:0" json:"position"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    int             `gorm:"default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// ApplyPayment adds amount to the paid total and recomputes balance and status.
func (i *Invoice) ApplyPayment(amount decimal.Decimal, method string, now time.Time) {
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.BalanceAmount = i.TotalAmount.Sub(i.PaidAmount)
	if method != "" {
		i.PaymentMethod = method
	}
	if i.BalanceAmount.Sign() <= 0 {
		i.BalanceAmount = decimal.Zero
		i.Status = InvoiceStatusPaid
		i.PaidDate = &now
		return
	}
	i.Status = InvoiceStatusPartiallyPaid
}
