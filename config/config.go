package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env             string        `yaml:"env"`
	Port            string        `yaml:"port"`
	DBDriver        string        `yaml:"db_driver"`
	DBURL           string        `yaml:"db_url"`
	RunSQLMigrate   bool          `yaml:"run_sql_migrations"`
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTExpiry       time.Duration `yaml:"jwt_expiry"`
	LogLevel        string        `yaml:"log_level"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	PublicBaseURL   string        `yaml:"public_base_url"`
	InvoicePrefix   string        `yaml:"invoice_prefix"`
	QuoteExpiryCron string        `yaml:"quote_expiry_cron"`

	SMTP   SMTPConfig   `yaml:"smtp"`
	Twilio TwilioConfig `yaml:"twilio"`
	Minio  MinioConfig  `yaml:"minio"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

const insecureJWTSecret = "change-me"

// Load reads .env (if present), the environment and then the optional YAML file.
// Values in the YAML file override the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		DBURL:           getEnv("DB_URL", ""),
		RunSQLMigrate:   parseBool("RUN_SQL_MIGRATIONS", false),
		JWTSecret:       getEnv("JWT_SECRET", insecureJWTSecret),
		JWTExpiry:       time.Duration(parseInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		InvoicePrefix:   getEnv("INVOICE_PREFIX", "INV-"),
		QuoteExpiryCron: getEnv("QUOTE_EXPIRY_CRON", "0 2 * * *"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     parseInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "repair-attachments"),
			UseSSL:    parseBool("MINIO_USE_SSL", false),
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate rejects configurations that cannot start a server.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTSecret == insecureJWTSecret && c.Env != "development" {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT expiry must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func parseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
