package models

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Job{},
		&StatusHistory{},
		&Quote{},
		&QuoteItem{},
		&Invoice{},
		&InvoiceItem{},
		&Counter{},
		&EmailLog{},
		&Settings{},
		&JobAttachment{},
	}
}
