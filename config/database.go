package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/renelwllms/erepair1-sub001/migrations"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

// ConnectDB opens the configured database, retrying while postgres starts up.
func ConnectDB(cfg *Config, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	if cfg.LogLevel == "debug" {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(dialector(cfg), gormCfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", slog.Int("attempt", attempt), slog.Any("err", err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func dialector(cfg *Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		return sqlite.Open(cfg.DBURL)
	}
	return postgres.Open(cfg.DBURL)
}

// Migrate creates the schema and, for postgres, applies the versioned data migrations.
func Migrate(db *gorm.DB, cfg *Config) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if cfg.RunSQLMigrate && cfg.DBDriver == "postgres" {
		if err := migrations.Up(cfg.DBURL); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	}
	return nil
}
