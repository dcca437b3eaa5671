package services

import (
	"context"
	"errors"

	"github.com/renelwllms/erepair1-sub001/mailer"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingsService owns the single shop settings row.
type SettingsService struct {
	db            *gorm.DB
	invoicePrefix string
}

func NewSettingsService(db *gorm.DB, invoicePrefix string) *SettingsService {
	if invoicePrefix == "" {
		invoicePrefix = defaultInvoicePrefix
	}
	return &SettingsService{db: db, invoicePrefix: invoicePrefix}
}

// Get returns the stored settings, or unsaved defaults when none exist yet.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Settings{ID: models.SettingsID, InvoicePrefix: s.invoicePrefix}, nil
	}
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	return &settings, nil
}

// View is Get for the settings screen.
func (s *SettingsService) View(ctx context.Context, actor *models.Actor) (*models.Settings, error) {
	if err := authorize(actor, models.CapManageSettings); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

type SettingsInput struct {
	ShopName         *string         `json:"shopName"`
	ShopPhone        *string         `json:"shopPhone" binding:"omitempty,phone"`
	ShopEmail        *string         `json:"shopEmail" binding:"omitempty,email"`
	ShopAddress      *string         `json:"shopAddress"`
	BusinessHours    *datatypes.JSON `json:"businessHours"`
	InvoicePrefix    *string         `json:"invoicePrefix" binding:"omitempty,max=10"`
	SMTPHost         *string         `json:"smtpHost"`
	SMTPPort         *int            `json:"smtpPort" binding:"omitempty,min=1,max=65535"`
	SMTPUser         *string         `json:"smtpUser"`
	SMTPPassword     *string         `json:"smtpPassword"`
	SMTPFrom         *string         `json:"smtpFrom" binding:"omitempty,email"`
	SMSNotifications *bool           `json:"smsNotifications"`
}

// Update applies the non-nil fields of in and upserts the settings row.
func (s *SettingsService) Update(ctx context.Context, actor *models.Actor, in SettingsInput) (*models.Settings, error) {
	if err := authorize(actor, models.CapManageSettings); err != nil {
		return nil, err
	}
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	setString(&settings.ShopName, in.ShopName)
	setString(&settings.ShopPhone, in.ShopPhone)
	setString(&settings.ShopEmail, in.ShopEmail)
	setString(&settings.ShopAddress, in.ShopAddress)
	setString(&settings.InvoicePrefix, in.InvoicePrefix)
	setString(&settings.SMTPHost, in.SMTPHost)
	setString(&settings.SMTPUser, in.SMTPUser)
	setString(&settings.SMTPPassword, in.SMTPPassword)
	setString(&settings.SMTPFrom, in.SMTPFrom)
	if in.BusinessHours != nil {
		settings.BusinessHours = *in.BusinessHours
	}
	if in.SMTPPort != nil {
		settings.SMTPPort = *in.SMTPPort
	}
	if in.SMSNotifications != nil {
		settings.SMSNotifications = *in.SMSNotifications
	}

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, internalError(err, "failed to save settings")
	}
	return settings, nil
}

// InvoicePrefix returns the prefix stored in settings, else the configured default.
func (s *SettingsService) InvoicePrefix(ctx context.Context) string {
	settings, err := s.Get(ctx)
	if err != nil || settings.InvoicePrefix == "" {
		return s.invoicePrefix
	}
	return settings.InvoicePrefix
}

// SMTPSettings implements mailer.SettingsSource.
func (s *SettingsService) SMTPSettings(ctx context.Context) (mailer.SMTPConfig, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return mailer.SMTPConfig{}, err
	}
	return mailer.SMTPConfig{
		Host:     settings.SMTPHost,
		Port:     settings.SMTPPort,
		User:     settings.SMTPUser,
		Password: settings.SMTPPassword,
		From:     settings.SMTPFrom,
	}, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
