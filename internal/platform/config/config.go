package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	MigrationsPath string
	Timezone       string
	RateLimit      string // ulule formatted rate for upload routes, e.g. "20-M"
	CORSOrigins    []string

	Billing   BillingConfig
	Debt      DebtConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	MinIO     MinIOConfig
	Sheets    SheetsConfig
	Posthog   PosthogConfig
}

// BillingConfig tunes the monthly accrual run.
type BillingConfig struct {
	AccrualWorkers int
}

// DebtConfig is the collection policy applied by the daily sweep.
type DebtConfig struct {
	GracePeriodDays  int
	MinDebtForAction decimal.Decimal
}

// SchedulerConfig controls the in-process job scheduler.
type SchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	AccrualDay int // day of month on which the previous month is billed
}

// RedisConfig locates the lock server. An empty Host selects in-process locks.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// RabbitMQConfig locates the event broker. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// MinIOConfig locates the statement archive. An empty Endpoint disables archiving.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
}

// SheetsConfig points at the spreadsheet statements are read from.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
}

// PosthogConfig enables API usage tracking when APIKey is set.
type PosthogConfig struct {
	APIKey   string
	Endpoint string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("RATE_LIMIT", "20-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("BILLING_ACCRUAL_WORKERS", 8)
	v.SetDefault("DEBT_GRACE_PERIOD_DAYS", 30)
	v.SetDefault("DEBT_MIN_FOR_ACTION", "1000")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_INTERVAL", "1h")
	v.SetDefault("SCHEDULER_ACCRUAL_DAY", 1)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "30s")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "ledger_events")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_SECURE", false)
	v.SetDefault("MINIO_BUCKET", "bank-statements")

	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("GOOGLE_SPREADSHEET_ID", "")

	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		Timezone:       v.GetString("TIMEZONE"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		CORSOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Billing: BillingConfig{
			AccrualWorkers: v.GetInt("BILLING_ACCRUAL_WORKERS"),
		},
		Debt: DebtConfig{
			GracePeriodDays: v.GetInt("DEBT_GRACE_PERIOD_DAYS"),
		},
		Scheduler: SchedulerConfig{
			Enabled:    v.GetBool("SCHEDULER_ENABLED"),
			Interval:   v.GetDuration("SCHEDULER_INTERVAL"),
			AccrualDay: v.GetInt("SCHEDULER_ACCRUAL_DAY"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			LockTTL:  v.GetDuration("LOCK_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Secure:    v.GetBool("MINIO_SECURE"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
			SpreadsheetID:   v.GetString("GOOGLE_SPREADSHEET_ID"),
		},
		Posthog: PosthogConfig{
			APIKey:   v.GetString("POSTHOG_API_KEY"),
			Endpoint: v.GetString("POSTHOG_ENDPOINT"),
		},
	}

	minDebt, err := decimal.NewFromString(v.GetString("DEBT_MIN_FOR_ACTION"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEBT_MIN_FOR_ACTION %q: %w", v.GetString("DEBT_MIN_FOR_ACTION"), err)
	}
	cfg.Debt.MinDebtForAction = minDebt

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. Every authenticated request will be rejected.")
	}
	if cfg.Redis.Host == "" {
		log.Println("Warning: REDIS_HOST not set. Falling back to in-process locks; run a single instance.")
	}

	return cfg, nil
}

// splitList splits a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Location resolves Timezone. Dates such as "today" for the debt sweep are taken in this zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) validate() error {
	if c.Billing.AccrualWorkers < 1 {
		return fmt.Errorf("BILLING_ACCRUAL_WORKERS must be at least 1, got %d", c.Billing.AccrualWorkers)
	}
	if c.Debt.GracePeriodDays < 0 {
		return fmt.Errorf("DEBT_GRACE_PERIOD_DAYS must not be negative, got %d", c.Debt.GracePeriodDays)
	}
	if c.Debt.MinDebtForAction.IsNegative() {
		return fmt.Errorf("DEBT_MIN_FOR_ACTION must not be negative")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if c.Scheduler.AccrualDay < 1 || c.Scheduler.AccrualDay > 28 {
		return fmt.Errorf("SCHEDULER_ACCRUAL_DAY must be between 1 and 28, got %d", c.Scheduler.AccrualDay)
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}
