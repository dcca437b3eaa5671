package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createInvoice(t *testing.T, f *fixture, total int64) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		InvoiceNumber: "INV-00001",
		Status:        models.InvoiceStatusDraft,
		JobID:         f.job.ID,
		CustomerID:    f.customer.ID,
		Subtotal:      decimal.NewFromInt(total),
		TotalAmount:   decimal.NewFromInt(total),
		PaidAmount:    decimal.Zero,
		BalanceAmount: decimal.NewFromInt(total),
	}
	require.NoError(t, f.db.Create(&inv).Error)
	return inv
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	inv := createInvoice(t, f, 130)
	svc := NewInvoiceService(f.db)
	ctx := context.Background()

	got, err := svc.RecordPayment(ctx, actorOf(f.admin), inv.ID, PaymentInput{Amount: decimal.NewFromInt(30), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, got.Status)
	assert.True(t, got.BalanceAmount.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, got.PaidDate)

	got, err = svc.RecordPayment(ctx, actorOf(f.admin), inv.ID, PaymentInput{Amount: decimal.NewFromInt(100), Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(130)))
	assert.True(t, got.BalanceAmount.IsZero())
	assert.NotNil(t, got.PaidDate)
	assert.Equal(t, "card", got.PaymentMethod)

	_, err = svc.RecordPayment(ctx, actorOf(f.admin), inv.ID, PaymentInput{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordPayment_Validation(t *testing.T) {
	f := newFixture(t)
	inv := createInvoice(t, f, 50)
	svc := NewInvoiceService(f.db)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, actorOf(f.admin), inv.ID, PaymentInput{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordPayment(ctx, actorOf(f.admin), inv.ID, PaymentInput{Amount: decimal.NewFromInt(51)})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Contains(t, e.Fields["amount"], "50.00")

	_, err = svc.RecordPayment(ctx, actorOf(f.admin), uuid.New(), PaymentInput{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceList_CustomerRoleForbidden(t *testing.T) {
	f := newFixture(t)
	createInvoice(t, f, 50)
	portal := createUser(t, f.db, "portal@example.com", models.RoleCustomer)
	svc := NewInvoiceService(f.db)

	_, _, err := svc.List(context.Background(), actorOf(portal), InvoiceFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	invoices, total, err := svc.List(context.Background(), actorOf(f.tech), InvoiceFilter{Status: models.InvoiceStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, invoices, 1)
	require.NotNil(t, invoices[0].Customer)
}
