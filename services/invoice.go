package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceService reads invoices and records payments against them.
type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

type InvoiceFilter struct {
	Status     models.InvoiceStatus
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

// List returns a page of invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, actor *models.Actor, f InvoiceFilter) ([]models.Invoice, int64, error) {
	if err := authorize(actor, models.CapManageInvoices); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, internalError(err, "failed to count invoices")
	}
	page, size := paging(f.Page, f.PageSize)
	var invoices []models.Invoice
	err := q.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, internalError(err, "failed to list invoices")
	}
	return invoices, total, nil
}

func (s *InvoiceService) Get(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Invoice, error) {
	if err := authorize(actor, models.CapManageInvoices); err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" binding:"omitempty,oneof=cash card bank_transfer other"`
}

// RecordPayment adds a payment to an invoice. Void and fully paid invoices are rejected.
func (s *InvoiceService) RecordPayment(ctx context.Context, actor *models.Actor, id uuid.UUID, in PaymentInput) (*models.Invoice, error) {
	if err := authorize(actor, models.CapManageInvoices); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, validationError("amount", "must be greater than zero")
	}

	db := s.db.WithContext(ctx)
	var notFound, invalid error
	err := db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
			notFound = lookupError(err, "invoice")
			return notFound
		}
		switch invoice.Status {
		case models.InvoiceStatusVoid, models.InvoiceStatusPaid:
			invalid = newError(KindInvalidState, "invoice %s is %s", invoice.InvoiceNumber, strings.ToLower(string(invoice.Status)))
			return invalid
		}
		if in.Amount.GreaterThan(invoice.BalanceAmount) {
			invalid = &Error{
				Kind:    KindValidation,
				Message: "invalid input",
				Fields:  map[string]string{"amount": "exceeds the outstanding balance of " + invoice.BalanceAmount.StringFixed(2)},
			}
			return invalid
		}

		invoice.ApplyPayment(in.Amount, in.Method, s.now())
		return tx.Model(&invoice).Updates(map[string]interface{}{
			"paid_amount":    invoice.PaidAmount,
			"balance_amount": invoice.BalanceAmount,
			"status":         invoice.Status,
			"paid_date":      invoice.PaidDate,
			"payment_method": invoice.PaymentMethod,
		}).Error
	})
	switch {
	case notFound != nil:
		return nil, notFound
	case invalid != nil:
		return nil, invalid
	case err != nil:
		return nil, internalError(err, "failed to record payment")
	}
	return s.load(db, id)
}

func (s *InvoiceService) load(db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).
		Preload("Customer").
		Preload("Job").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "invoice")
	}
	return &invoice, nil
}
