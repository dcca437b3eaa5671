package services

import (
	"context"
	"time"

	"github.com/renelwllms/erepair1-sub001/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService aggregates jobs and invoices for the dashboard.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

type StatusCount struct {
	Status models.JobStatus `json:"status"`
	Count  int64            `json:"count"`
}

// Dashboard is the summary shown on the staff home page.
type Dashboard struct {
	JobsByStatus       []StatusCount   `json:"jobsByStatus"`
	OpenJobs           int64           `json:"openJobs"`
	AwaitingQuotes     int64           `json:"awaitingQuotes"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	MonthlyRevenue     decimal.Decimal `json:"monthlyRevenue"`
	RecentJobs         []models.Job    `json:"recentJobs"`
}

// Dashboard summarises the workshop. Technicians get the job figures for their own
// jobs and no money figures.
func (s *ReportService) Dashboard(ctx context.Context, actor *models.Actor) (*Dashboard, error) {
	if err := authorize(actor, models.CapManageJobs); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	jobs := func() *gorm.DB {
		q := db.Model(&models.Job{})
		if actor.Role == models.RoleTechnician {
			q = q.Where("assigned_technician_id = ?", actor.ID)
		}
		return q
	}

	out := &Dashboard{JobsByStatus: []StatusCount{}}
	if err := jobs().Select("status, COUNT(*) AS count").Group("status").Scan(&out.JobsByStatus).Error; err != nil {
		return nil, internalError(err, "failed to count jobs")
	}
	for _, sc := range out.JobsByStatus {
		if sc.Status != models.JobStatusClosed && sc.Status != models.JobStatusCancelled {
			out.OpenJobs += sc.Count
		}
	}

	err := jobs().Preload("Customer").Order("created_at DESC").Limit(5).Find(&out.RecentJobs).Error
	if err != nil {
		return nil, internalError(err, "failed to load recent jobs")
	}

	if !actor.Role.Can(models.CapViewReports) {
		return out, nil
	}
	if err := db.Model(&models.Quote{}).Where("status = ?", models.QuoteStatusSent).Count(&out.AwaitingQuotes).Error; err != nil {
		return nil, internalError(err, "failed to count quotes")
	}
	outstanding, err := s.sum(db.Model(&models.Invoice{}).
		Where("status IN ?", []models.InvoiceStatus{models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusPartiallyPaid}),
		"balance_amount")
	if err != nil {
		return nil, internalError(err, "failed to sum outstanding balance")
	}
	out.OutstandingBalance = outstanding

	now := s.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	revenue, err := s.revenue(db, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, internalError(err, "failed to sum revenue")
	}
	out.MonthlyRevenue = revenue
	return out, nil
}

type CustomerSummary struct {
	Name  string          `json:"name"`
	Jobs  int64           `json:"jobs"`
	Spent decimal.Decimal `json:"spent"`
}

type ApplianceSummary struct {
	ApplianceType string `json:"applianceType"`
	Count         int64  `json:"count"`
}

// Analytics holds the admin revenue report.
type Analytics struct {
	CurrentMonthRevenue   decimal.Decimal    `json:"currentMonthRevenue"`
	MonthGrowth           float64            `json:"monthGrowth"`
	CurrentQuarterRevenue decimal.Decimal    `json:"currentQuarterRevenue"`
	QuarterGrowth         float64            `json:"quarterGrowth"`
	CurrentYearRevenue    decimal.Decimal    `json:"currentYearRevenue"`
	YearGrowth            float64            `json:"yearGrowth"`
	TopCustomers          []CustomerSummary  `json:"topCustomers"`
	TopAppliances         []ApplianceSummary `json:"topAppliances"`
	AverageInvoice        decimal.Decimal    `json:"averageInvoice"`
}

// Analytics compares the revenue collected in the current month, quarter and year with
// the previous period. Revenue is the paid amount of invoices issued in the period.
func (s *ReportService) Analytics(ctx context.Context, actor *models.Actor) (*Analytics, error) {
	if err := authorize(actor, models.CapViewReports); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	now := s.now()
	loc := now.Location()

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	quarter := quarterStart(now)
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)

	out := &Analytics{}
	periods := []struct {
		start, end, prev time.Time
		value            *decimal.Decimal
		growth           *float64
	}{
		{month, month.AddDate(0, 1, 0), month.AddDate(0, -1, 0), &out.CurrentMonthRevenue, &out.MonthGrowth},
		{quarter, quarter.AddDate(0, 3, 0), quarter.AddDate(0, -3, 0), &out.CurrentQuarterRevenue, &out.QuarterGrowth},
		{year, year.AddDate(1, 0, 0), year.AddDate(-1, 0, 0), &out.CurrentYearRevenue, &out.YearGrowth},
	}
	for _, p := range periods {
		current, err := s.revenue(db, p.start, p.end)
		if err != nil {
			return nil, internalError(err, "failed to sum revenue")
		}
		previous, err := s.revenue(db, p.prev, p.start)
		if err != nil {
			return nil, internalError(err, "failed to sum revenue")
		}
		*p.value = current
		*p.growth = growthPercentage(current, previous)
	}

	err := db.Table("invoices").
		Select("customers.name AS name, COUNT(invoices.id) AS jobs, COALESCE(SUM(invoices.paid_amount), 0) AS spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.issue_date >= ? AND customers.deleted_at IS NULL", year).
		Group("customers.name").
		Order("spent DESC").
		Limit(5).
		Scan(&out.TopCustomers).Error
	if err != nil {
		return nil, internalError(err, "failed to rank customers")
	}

	err = db.Model(&models.Job{}).
		Select("appliance_type, COUNT(*) AS count").
		Where("created_at >= ?", year).
		Group("appliance_type").
		Order("count DESC").
		Limit(5).
		Scan(&out.TopAppliances).Error
	if err != nil {
		return nil, internalError(err, "failed to rank appliances")
	}

	var invoiced struct {
		Total decimal.Decimal
		Count int64
	}
	err = db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("status <> ?", models.InvoiceStatusVoid).
		Scan(&invoiced).Error
	if err != nil {
		return nil, internalError(err, "failed to average invoices")
	}
	if invoiced.Count > 0 {
		out.AverageInvoice = invoiced.Total.Div(decimal.NewFromInt(invoiced.Count)).Round(2)
	}
	return out, nil
}

func (s *ReportService) revenue(db *gorm.DB, start, end time.Time) (decimal.Decimal, error) {
	return s.sum(db.Model(&models.Invoice{}).
		Where("issue_date >= ? AND issue_date < ? AND status <> ?", start, end, models.InvoiceStatusVoid),
		"paid_amount")
}

func (s *ReportService) sum(q *gorm.DB, column string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := q.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&row).Error
	return row.Total, err
}

func quarterStart(t time.Time) time.Time {
	startMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), startMonth, 1, 0, 0, 0, 0, t.Location())
}

func growthPercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	g, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return g
}
