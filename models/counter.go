package models

// Counter holds the last number issued for a document sequence.
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int64  `gorm:"not null;default:0"`
}

const (
	CounterInvoice = "invoice"
	CounterJob     = "job"
	CounterQuote   = "quote"
)
