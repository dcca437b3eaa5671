package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/gorm"
)

const (
	defaultInvoicePrefix = "INV-"
	jobNumberPrefix      = "JOB-"
	quoteNumberPrefix    = "QUO-"
)

// formatNumber renders a document number such as INV-00042.
func formatNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}

// numericSuffix returns the trailing digits of a document number, or 0 when it has none.
func numericSuffix(number string) int64 {
	end := len(number)
	start := end
	for start > 0 && number[start-1] >= '0' && number[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.ParseInt(number[start:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// lastIssued seeds a counter from the most recently created row of model.
func lastIssued(model interface{}, column string) func(tx *gorm.DB) (int64, error) {
	return func(tx *gorm.DB) (int64, error) {
		var numbers []string
		err := tx.Model(model).
			Order("created_at DESC").
			Limit(1).
			Pluck(column, &numbers).Error
		if err != nil {
			return 0, err
		}
		if len(numbers) == 0 {
			return 0, nil
		}
		return numericSuffix(strings.TrimSpace(numbers[0])), nil
	}
}

// nextNumber increments the named counter inside tx and returns the new value. A missing
// counter row is created from seed; two transactions seeding the same counter at once
// collide on the primary key and one of them fails.
func nextNumber(tx *gorm.DB, name string, seed func(tx *gorm.DB) (int64, error)) (int64, error) {
	res := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("increment %s counter: %w", name, res.Error)
	}

	if res.RowsAffected == 0 {
		start, err := seed(tx)
		if err != nil {
			return 0, fmt.Errorf("seed %s counter: %w", name, err)
		}
		counter := models.Counter{Name: name, Value: start + 1}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, fmt.Errorf("create %s counter: %w", name, err)
		}
		return counter.Value, nil
	}

	var counter models.Counter
	if err := tx.First(&counter, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("read %s counter: %w", name, err)
	}
	return counter.Value, nil
}

// nextInvoiceNumber issues the next invoice number with the configured prefix.
func nextInvoiceNumber(tx *gorm.DB, prefix string) (string, error) {
	n, err := nextNumber(tx, models.CounterInvoice, lastIssued(&models.Invoice{}, "invoice_number"))
	if err != nil {
		return "", err
	}
	return formatNumber(prefix, n), nil
}

func nextJobNumber(tx *gorm.DB) (string, error) {
	n, err := nextNumber(tx, models.CounterJob, lastIssued(&models.Job{}, "job_number"))
	if err != nil {
		return "", err
	}
	return formatNumber(jobNumberPrefix, n), nil
}

func nextQuoteNumber(tx *gorm.DB) (string, error) {
	n, err := nextNumber(tx, models.CounterQuote, lastIssued(&models.Quote{}, "quote_number"))
	if err != nil {
		return "", err
	}
	return formatNumber(quoteNumberPrefix, n), nil
}
