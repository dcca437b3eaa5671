package models

import (
	"gorm.io/datatypes"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

type Settings struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	ShopName      string         `json:"shopName"`
	ShopPhone     string         `json:"shopPhone"`
	ShopEmail     string         `json:"shopEmail"`
	ShopAddress   string         `json:"shopAddress"`
	BusinessHours datatypes.JSON `json:"businessHours"`
	InvoicePrefix string         `gorm:"default:'INV-'" json:"invoicePrefix"`

	// Mail transport; empty host falls back to the environment.
	SMTPHost     string `json:"smtpHost"`
	SMTPPort     int    `json:"smtpPort"`
	SMTPUser     string `json:"smtpUser"`
	SMTPPassword string `json:"-"`
	SMTPFrom     string `json:"smtpFrom"`

	SMSNotifications bool `gorm:"default:false" json:"smsNotifications"`
}
