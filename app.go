package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/renelwllms/erepair1-sub001/config"
	"github.com/renelwllms/erepair1-sub001/controllers"
	"github.com/renelwllms/erepair1-sub001/mailer"
	"github.com/renelwllms/erepair1-sub001/routes"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/sms"
	"github.com/renelwllms/erepair1-sub001/storage"
	"github.com/renelwllms/erepair1-sub001/utils"
	"gorm.io/gorm"
)

type app struct {
	scheduler *services.Scheduler
	router    *gin.Engine
}

// bootstrap loads the configuration and opens the migrated database.
func bootstrap(configPath string) (*config.Config, *gorm.DB, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	log := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.Migrate(db, cfg); err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, log, nil
}

// newApp wires the services, their observers and the HTTP routes.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) (*app, error) {
	settings := services.NewSettingsService(db, cfg.InvoicePrefix)

	mail := mailer.NewSMTPSender(settings, mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if _, err := mail.Config(ctx); errors.Is(err, mailer.ErrNotConfigured) {
		log.Warn("email transport is not configured; notifications will be logged as failed")
	}

	var smsSender sms.Sender
	if t := sms.NewTwilio(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber); t != nil {
		smsSender = t
	}

	var store storage.ObjectStore
	if cfg.Minio.Endpoint != "" {
		s, err := storage.NewMinioStore(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.Bucket, cfg.Minio.UseSSL, log)
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		log.Warn("object storage is not configured; attachments are disabled")
	}

	notifications := services.NewNotificationService(db, mail, smsSender, settings, log, cfg.PublicBaseURL)
	jobs := services.NewJobService(db, log, notifications)
	quotes := services.NewQuoteService(db, log, settings, notifications)
	auth := services.NewAuthService(db)

	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(routes.Handlers{
		Auth:      controllers.NewAuthController(auth, cfg.JWTSecret, cfg.JWTExpiry, log),
		Customers: controllers.NewCustomerController(services.NewCustomerService(db), log),
		Jobs:      controllers.NewJobController(jobs, services.NewAttachmentService(db, store, log), log),
		Quotes:    controllers.NewQuoteController(quotes, log),
		Invoices:  controllers.NewInvoiceController(services.NewInvoiceService(db), log),
		Settings:  controllers.NewSettingsController(settings, log),
		Reports:   controllers.NewReportController(services.NewReportService(db), services.NewEmailLogService(db), log),
	}, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		Log:            log,
	})

	return &app{
		scheduler: services.NewScheduler(quotes, log),
		router:    router,
	}, nil
}
