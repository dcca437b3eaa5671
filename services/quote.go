package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultQuoteValidity = 30 * 24 * time.Hour
	invoiceDueAfter      = 30 * 24 * time.Hour
)

// QuoteObserver is told about quotes that have been sent to the customer.
type QuoteObserver interface {
	QuoteSent(ctx context.Context, quote *models.Quote, actor *models.Actor)
}

// QuoteService manages quotes from pricing through invoicing.
type QuoteService struct {
	db        *gorm.DB
	log       *slog.Logger
	settings  *SettingsService
	observers []QuoteObserver
	now       func() time.Time
}

func NewQuoteService(db *gorm.DB, log *slog.Logger, settings *SettingsService, observers ...QuoteObserver) *QuoteService {
	return &QuoteService{
		db:        db,
		log:       log,
		settings:  settings,
		observers: observers,
		now:       time.Now,
	}
}

type QuoteItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type CreateQuoteInput struct {
	JobID      uuid.UUID        `json:"jobId" binding:"required"`
	Items      []QuoteItemInput `json:"items" binding:"required,min=1,dive"`
	TaxRate    decimal.Decimal  `json:"taxRate"`
	Discount   decimal.Decimal  `json:"discount"`
	ValidUntil *time.Time       `json:"validUntil"`
	Notes      string           `json:"notes"`
}

// Create prices a quote for a job. Tax is a percentage of the subtotal and the
// discount is subtracted after tax.
func (s *QuoteService) Create(ctx context.Context, actor *models.Actor, in CreateQuoteInput) (*models.Quote, error) {
	if err := authorize(actor, models.CapManageQuotes); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, validationError("items", "at least one item is required")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationError("taxRate", "must be between 0 and 100")
	}
	if in.Discount.IsNegative() {
		return nil, validationError("discount", "must not be negative")
	}

	items := make([]models.QuoteItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Description) == "" {
			return nil, validationError(field+".description", "is required")
		}
		if it.Quantity < 1 {
			return nil, validationError(field+".quantity", "must be at least 1")
		}
		if it.UnitPrice.IsNegative() {
			return nil, validationError(field+".unitPrice", "must not be negative")
		}
		total := models.LineTotal(it.Quantity, it.UnitPrice)
		subtotal = subtotal.Add(total)
		items = append(items, models.QuoteItem{
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       total,
		})
	}
	tax := subtotal.Mul(in.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(tax).Sub(in.Discount)
	if total.IsNegative() {
		return nil, validationError("discount", "exceeds the quote total")
	}

	db := s.db.WithContext(ctx)
	var job models.Job
	if err := db.First(&job, "id = ?", in.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("jobId", "job does not exist")
		}
		return nil, internalError(err, "failed to load job")
	}

	now := s.now()
	validUntil := utils.EndOfDay(now.Add(defaultQuoteValidity))
	if in.ValidUntil != nil {
		if !in.ValidUntil.After(now) {
			return nil, validationError("validUntil", "must be in the future")
		}
		validUntil = *in.ValidUntil
	}

	quote := models.Quote{
		Status:      models.QuoteStatusDraft,
		JobID:       job.ID,
		CustomerID:  job.CustomerID,
		CreatedByID: &actor.ID,
		Items:       items,
		Subtotal:    subtotal,
		TaxRate:     in.TaxRate,
		TaxAmount:   tax,
		Discount:    in.Discount,
		TotalAmount: total,
		ValidUntil:  validUntil,
		Notes:       in.Notes,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := nextQuoteNumber(tx)
		if err != nil {
			return err
		}
		quote.QuoteNumber = number
		return tx.Create(&quote).Error
	})
	if err != nil {
		return nil, internalError(err, "failed to create quote")
	}
	return s.load(db, quote.ID)
}

// Send marks a draft quote as sent, moves its job to AWAITING_APPROVAL and emails the
// customer. Sending an already sent quote emails it again.
func (s *QuoteService) Send(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Quote, error) {
	if err := authorize(actor, models.CapManageQuotes); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	quote, err := s.load(db, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteStatusDraft && quote.Status != models.QuoteStatusSent {
		return nil, newError(KindInvalidState, "quote %s is %s and cannot be sent", quote.QuoteNumber, quote.Status)
	}
	if quote.IsExpired(s.now()) {
		return nil, newError(KindExpired, "quote %s expired on %s", quote.QuoteNumber, quote.ValidUntil.Format("2006-01-02"))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Quote{}).Where("id = ?", quote.ID).
			Update("status", models.QuoteStatusSent).Error; err != nil {
			return err
		}
		if quote.Job == nil || quote.Job.Status == models.JobStatusAwaitingApproval {
			return nil
		}
		if err := setJobStatus(tx, quote.JobID, models.JobStatusAwaitingApproval); err != nil {
			return err
		}
		note := fmt.Sprintf("Quote %s sent to customer", quote.QuoteNumber)
		return appendHistory(tx, quote.JobID, models.JobStatusAwaitingApproval, note, &actor.ID)
	})
	if err != nil {
		return nil, internalError(err, "failed to send quote")
	}

	sent, err := s.load(db, quote.ID)
	if err != nil {
		return nil, err
	}
	for _, o := range s.observers {
		o.QuoteSent(ctx, sent, actor)
	}
	return sent, nil
}

// Accept records the customer's acceptance and starts the repair.
func (s *QuoteService) Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	db := s.db.WithContext(ctx)
	var quote models.Quote
	if err := db.First(&quote, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "quote")
	}
	now := s.now()
	if quote.IsExpired(now) {
		return nil, newError(KindExpired, "quote %s expired on %s", quote.QuoteNumber, quote.ValidUntil.Format("2006-01-02"))
	}
	if quote.CustomerResponse != nil {
		return nil, alreadyResponded(&quote)
	}

	note := fmt.Sprintf("Quote %s accepted by customer", quote.QuoteNumber)
	err := s.respond(db, &quote, models.ResponseAccepted, map[string]interface{}{
		"status":                 models.QuoteStatusAccepted,
		"customer_response":      models.ResponseAccepted,
		"customer_response_date": now,
	}, models.JobStatusInProgress, note)
	if err != nil {
		return nil, err
	}
	return s.load(db, quote.ID)
}

// Reject records the customer's rejection and sends the job back to OPEN.
func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Quote, error) {
	db := s.db.WithContext(ctx)
	var quote models.Quote
	if err := db.First(&quote, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "quote")
	}
	if quote.CustomerResponse != nil {
		return nil, alreadyResponded(&quote)
	}

	reason = strings.TrimSpace(reason)
	note := fmt.Sprintf("Quote %s rejected by customer", quote.QuoteNumber)
	if reason != "" {
		note += ": " + reason
	}
	err := s.respond(db, &quote, models.ResponseRejected, map[string]interface{}{
		"status":                 models.QuoteStatusRejected,
		"customer_response":      models.ResponseRejected,
		"customer_response_date": s.now(),
		"rejection_reason":       reason,
	}, models.JobStatusOpen, note)
	if err != nil {
		return nil, err
	}
	return s.load(db, quote.ID)
}

// respond writes a customer response once. The update is conditional on no response
// being stored, so a concurrent second response loses with AlreadyResponded.
func (s *QuoteService) respond(db *gorm.DB, quote *models.Quote, response models.CustomerResponse,
	updates map[string]interface{}, jobStatus models.JobStatus, note string) error {
	var conflict error
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Quote{}).
			Where("id = ? AND customer_response IS NULL", quote.ID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Quote
			if err := tx.First(&current, "id = ?", quote.ID).Error; err != nil {
				return err
			}
			conflict = alreadyResponded(&current)
			return conflict
		}
		if err := setJobStatus(tx, quote.JobID, jobStatus); err != nil {
			return err
		}
		return appendHistory(tx, quote.JobID, jobStatus, note, nil)
	})
	if conflict != nil {
		return conflict
	}
	if err != nil {
		return internalError(err, fmt.Sprintf("failed to record %s response", strings.ToLower(string(response))))
	}
	return nil
}

func alreadyResponded(quote *models.Quote) *Error {
	response := "responded to"
	if quote.CustomerResponse != nil {
		response = strings.ToLower(string(*quote.CustomerResponse))
	}
	return newError(KindConflictAlreadyResponded, "quote %s has already been %s", quote.QuoteNumber, response)
}

// ConvertToInvoice turns an accepted quote into a draft invoice for its job.
func (s *QuoteService) ConvertToInvoice(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Invoice, error) {
	if err := authorize(actor, models.CapConvertQuote); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var quote models.Quote
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "quote")
	}
	if quote.ConvertedToInvoiceID != nil {
		return nil, newError(KindConflictAlreadyConverted, "quote %s has already been converted to an invoice", quote.QuoteNumber)
	}
	if quote.Status != models.QuoteStatusAccepted {
		return nil, newError(KindInvalidState, "only accepted quotes can be converted, quote %s is %s", quote.QuoteNumber, quote.Status)
	}
	var existing int64
	if err := db.Model(&models.Invoice{}).Where("job_id = ?", quote.JobID).Count(&existing).Error; err != nil {
		return nil, internalError(err, "failed to check existing invoices")
	}
	if existing > 0 {
		return nil, duplicateInvoice(&quote)
	}

	prefix := s.settings.InvoicePrefix(ctx)
	now := s.now()
	invoice := models.Invoice{
		Status:        models.InvoiceStatusDraft,
		JobID:         quote.JobID,
		CustomerID:    quote.CustomerID,
		QuoteID:       &quote.ID,
		CreatedByID:   &actor.ID,
		Subtotal:      quote.Subtotal,
		TaxRate:       quote.TaxRate,
		TaxAmount:     quote.TaxAmount,
		Discount:      quote.Discount,
		TotalAmount:   quote.TotalAmount,
		PaidAmount:    decimal.Zero,
		BalanceAmount: quote.TotalAmount,
		IssueDate:     now,
		DueDate:       now.Add(invoiceDueAfter),
		Notes:         quote.Notes,
	}
	for _, item := range quote.Items {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	var conflict error
	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := nextInvoiceNumber(tx, prefix)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Quote{}).
			Where("id = ? AND converted_to_invoice_id IS NULL", quote.ID).
			Updates(map[string]interface{}{
				"status":                  models.QuoteStatusConvertedToInvoice,
				"converted_to_invoice_id": invoice.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			conflict = newError(KindConflictAlreadyConverted, "quote %s has already been converted to an invoice", quote.QuoteNumber)
			return conflict
		}

		if err := setJobStatus(tx, quote.JobID, models.JobStatusInProgress); err != nil {
			return err
		}
		note := fmt.Sprintf("Quote %s converted to invoice %s", quote.QuoteNumber, number)
		return appendHistory(tx, quote.JobID, models.JobStatusInProgress, note, &actor.ID)
	})
	if conflict != nil {
		return nil, conflict
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Either the job already has an invoice or the number counter is behind.
		var count int64
		if cerr := db.Model(&models.Invoice{}).Where("job_id = ?", quote.JobID).Count(&count).Error; cerr == nil && count > 0 {
			return nil, duplicateInvoice(&quote)
		}
		return nil, internalError(err, "invoice number collided with an existing invoice")
	}
	if err != nil {
		return nil, internalError(err, "failed to convert quote to invoice")
	}

	var created models.Invoice
	err = db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).Preload("Customer").First(&created, "id = ?", invoice.ID).Error
	if err != nil {
		return nil, internalError(err, "failed to reload invoice")
	}
	s.log.Info("quote converted to invoice",
		"quote", quote.QuoteNumber, "invoice", created.InvoiceNumber, "total", created.TotalAmount.String())
	return &created, nil
}

func duplicateInvoice(quote *models.Quote) *Error {
	return newError(KindConflictDuplicateInvoice, "an invoice already exists for the job of quote %s", quote.QuoteNumber)
}

// ExpireOverdue marks unanswered draft and sent quotes past their validity as EXPIRED.
func (s *QuoteService) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Quote{}).
		Where("status IN ? AND customer_response IS NULL AND valid_until < ?",
			[]models.QuoteStatus{models.QuoteStatusDraft, models.QuoteStatusSent}, now).
		Update("status", models.QuoteStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("expire quotes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Get returns a quote with its items for staff.
func (s *QuoteService) Get(ctx context.Context, actor *models.Actor, id uuid.UUID) (*models.Quote, error) {
	if err := authorize(actor, models.CapManageQuotes); err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

// View is the public read used by the accept/reject page. The quote id is the only
// credential, so the job's internal relations are not loaded.
func (s *QuoteService) View(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "quote")
	}
	return &quote, nil
}

type QuoteFilter struct {
	Status   models.QuoteStatus
	JobID    *uuid.UUID
	Page     int
	PageSize int
}

func (s *QuoteService) List(ctx context.Context, actor *models.Actor, f QuoteFilter) ([]models.Quote, int64, error) {
	if err := authorize(actor, models.CapManageQuotes); err != nil {
		return nil, 0, err
	}
	q := s.db.WithContext(ctx).Model(&models.Quote{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, internalError(err, "failed to count quotes")
	}
	page, size := paging(f.Page, f.PageSize)
	var quotes []models.Quote
	err := q.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, internalError(err, "failed to list quotes")
	}
	return quotes, total, nil
}

func (s *QuoteService) load(db *gorm.DB, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).
		Preload("Job").
		Preload("Customer").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, lookupError(err, "quote")
	}
	return &quote, nil
}

// setJobStatus changes a job's status from a quote workflow. Only CLOSED keeps a
// completion time, so it is cleared here.
func setJobStatus(tx *gorm.DB, jobID uuid.UUID, status models.JobStatus) error {
	return tx.Model(&models.Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":            status,
		"actual_completion": nil,
	}).Error
}
