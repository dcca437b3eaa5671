package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	db        *gorm.DB
	admin     models.User
	tech      models.User
	otherTech models.User
	customer  models.Customer
	job       models.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db}

	f.admin = createUser(t, db, "admin@shop.test", models.RoleAdmin)
	f.tech = createUser(t, db, "tech@shop.test", models.RoleTechnician)
	f.otherTech = createUser(t, db, "other@shop.test", models.RoleTechnician)

	f.customer = models.Customer{Name: "Jane Doe", Email: "jane@example.com", Phone: "+15551234567"}
	require.NoError(t, db.Create(&f.customer).Error)

	f.job = createJob(t, db, "JOB-00001", f.customer, &f.tech)
	return f
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: email, Name: strings.Split(email, "@")[0], Password: "password123", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createJob(t *testing.T, db *gorm.DB, number string, customer models.Customer, tech *models.User) models.Job {
	t.Helper()
	job := models.Job{
		JobNumber:     number,
		Status:        models.JobStatusOpen,
		Priority:      models.PriorityNormal,
		CustomerID:    customer.ID,
		ApplianceType: "Washing Machine",
		Brand:         "Bosch",
	}
	if tech != nil {
		job.AssignedTechnicianID = &tech.ID
	}
	require.NoError(t, db.Create(&job).Error)
	return job
}

// createQuote stores a sent quote for job with the given items, valid for a week.
func createQuote(t *testing.T, db *gorm.DB, number string, job models.Job, items ...models.QuoteItem) models.Quote {
	t.Helper()
	subtotal := decimal.Zero
	for i := range items {
		items[i].Position = i
		items[i].Total = models.LineTotal(items[i].Quantity, items[i].UnitPrice)
		subtotal = subtotal.Add(items[i].Total)
	}
	q := models.Quote{
		QuoteNumber: number,
		Status:      models.QuoteStatusSent,
		JobID:       job.ID,
		CustomerID:  job.CustomerID,
		Items:       items,
		Subtotal:    subtotal,
		TotalAmount: subtotal,
		ValidUntil:  time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

func actorOf(u models.User) *models.Actor {
	return &models.Actor{ID: u.ID, Role: u.Role}
}

func item(description string, qty int, price int64) models.QuoteItem {
	return models.QuoteItem{Description: description, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// recordingObserver captures published status changes.
type recordingObserver struct {
	changes []StatusChange
}

func (r *recordingObserver) JobStatusChanged(ctx context.Context, change StatusChange) {
	r.changes = append(r.changes, change)
}
