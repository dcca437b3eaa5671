//go:build integration

package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_USER":     "test",
				"POSTGRES_DB":       "repairshop",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &Config{
		DBDriver:      "postgres",
		DBURL:         fmt.Sprintf("postgres://test:test@%s:%s/repairshop?sslmode=disable", host, port.Port()),
		RunSQLMigrate: true,
		LogLevel:      "warn",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := ConnectDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg))
	return db
}

func TestPostgres_ConcurrentQuoteResponses(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	admin := models.User{Email: "admin@shop.test", Name: "Admin", Password: "password123", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(&admin).Error)
	customer := models.Customer{Name: "Jane Doe", Email: "jane@example.com"}
	require.NoError(t, db.Create(&customer).Error)
	job := models.Job{JobNumber: "JOB-00001", CustomerID: customer.ID, ApplianceType: "Oven"}
	require.NoError(t, db.Create(&job).Error)
	quote := models.Quote{
		QuoteNumber: "QUO-00001",
		Status:      models.QuoteStatusSent,
		JobID:       job.ID,
		CustomerID:  customer.ID,
		Items:       []models.QuoteItem{{Description: "Element", Quantity: 1, UnitPrice: decimal.NewFromInt(80), Total: decimal.NewFromInt(80)}},
		Subtotal:    decimal.NewFromInt(80),
		TotalAmount: decimal.NewFromInt(80),
		ValidUntil:  time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&quote).Error)

	quotes := services.NewQuoteService(db, log, services.NewSettingsService(db, "INV-"))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = quotes.Accept(ctx, quote.ID)
			} else {
				_, err = quotes.Reject(ctx, quote.ID, "")
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, services.ErrAlreadyResponded)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)

	var history int64
	require.NoError(t, db.Model(&models.StatusHistory{}).Where("job_id = ?", job.ID).Count(&history).Error)
	assert.Equal(t, int64(1), history)
}

func TestPostgres_ConcurrentConversion(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	admin := models.User{Email: "admin@shop.test", Name: "Admin", Password: "password123", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(&admin).Error)
	customer := models.Customer{Name: "Jane Doe", Email: "jane@example.com"}
	require.NoError(t, db.Create(&customer).Error)

	quotes := services.NewQuoteService(db, log, services.NewSettingsService(db, "INV-"))
	actor := &models.Actor{ID: admin.ID, Role: admin.Role}
	accepted := models.ResponseAccepted

	var ids []models.Quote
	for i := 1; i <= 4; i++ {
		job := models.Job{JobNumber: fmt.Sprintf("JOB-%05d", i), CustomerID: customer.ID, ApplianceType: "Fridge"}
		require.NoError(t, db.Create(&job).Error)
		q := models.Quote{
			QuoteNumber:      fmt.Sprintf("QUO-%05d", i),
			Status:           models.QuoteStatusAccepted,
			CustomerResponse: &accepted,
			JobID:            job.ID,
			CustomerID:       customer.ID,
			Subtotal:         decimal.NewFromInt(50),
			TotalAmount:      decimal.NewFromInt(50),
			ValidUntil:       time.Now().Add(24 * time.Hour),
		}
		require.NoError(t, db.Create(&q).Error)
		ids = append(ids, q)
	}

	// Each quote converted twice at once: one winner per quote, distinct numbers overall.
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
	)
	for _, q := range ids {
		for n := 0; n < 2; n++ {
			wg.Add(1)
			go func(q models.Quote) {
				defer wg.Done()
				inv, err := quotes.ConvertToInvoice(ctx, actor, q.ID)
				if err != nil {
					kind := services.KindOf(err)
					assert.Contains(t, []services.ErrorKind{
						services.KindConflictAlreadyConverted,
						services.KindConflictDuplicateInvoice,
						services.KindInvalidState,
					}, kind, err.Error())
					return
				}
				mu.Lock()
				assert.False(t, numbers[inv.InvoiceNumber], inv.InvoiceNumber)
				numbers[inv.InvoiceNumber] = true
				mu.Unlock()
			}(q)
		}
	}
	wg.Wait()

	var invoices int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&invoices).Error)
	assert.Equal(t, int64(4), invoices)
	assert.Len(t, numbers, 4)
}
