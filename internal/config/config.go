package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Logging    LoggingConfig
	Generation GenerationConfig
	Billing    BillingConfig
	Archive    ArchiveConfig
	Notify     NotifyConfig
	Mail       MailConfig
	Worker     WorkerConfig
	RateLimit  RateLimitConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int

	// AdminSignupSecret gates role=admin registrations; empty disables them
	AdminSignupSecret string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// GenerationConfig selects and configures the content generator.
type GenerationConfig struct {
	Provider     string // openai, gemini or template
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	GeminiURL    string
	Timeout      time.Duration
}

// BillingConfig contains checkout configuration
type BillingConfig struct {
	CheckoutBaseURL string
	WebhookSecret   string
	Currency        string
}

// ArchiveConfig configures where generated artifacts are copied.
type ArchiveConfig struct {
	Driver          string // none, s3 or gcs
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	GCSCredentials  string
}

// NotifyConfig contains operator alert configuration
type NotifyConfig struct {
	SlackWebhookURL string
	SlackChannel    string
}

// MailConfig configures SMTP delivery of letters to attorneys. An empty
// host disables sending.
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// PublicURL prefixes the PDF download link placed in outgoing mail
	PublicURL string
}

// WorkerConfig configures background jobs
type WorkerConfig struct {
	SweepSchedule  string
	ReservationTTL time.Duration
}

// RateLimitConfig configures request throttling
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	AuthRequests      int
	AuthWindow        time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "lawyer"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./data.db"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "supersecretkey"),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			AdminSignupSecret:  getEnv("ADMIN_SIGNUP_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Generation: GenerationConfig{
			Provider:     getEnv("GENERATION_PROVIDER", "template"),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
			Timeout:      getEnvAsDuration("GENERATION_TIMEOUT", 45*time.Second),
		},
		Billing: BillingConfig{
			CheckoutBaseURL: getEnv("CHECKOUT_BASE_URL", "http://localhost:5173/checkout"),
			WebhookSecret:   getEnv("CHECKOUT_WEBHOOK_SECRET", ""),
			Currency:        getEnv("CHECKOUT_CURRENCY", "usd"),
		},
		Archive: ArchiveConfig{
			Driver:          getEnv("ARCHIVE_DRIVER", "none"),
			Bucket:          getEnv("ARCHIVE_BUCKET", ""),
			Prefix:          getEnv("ARCHIVE_PREFIX", "artifacts"),
			Region:          getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
			GCSCredentials:  getEnv("ARCHIVE_GCS_CREDENTIALS", ""),
		},
		Notify: NotifyConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			SlackChannel:    getEnv("SLACK_CHANNEL", "#ops"),
		},
		Mail: MailConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromName:  getEnv("SMTP_FROM_NAME", "Talk To My Lawyer"),
			FromEmail: getEnv("SMTP_FROM_EMAIL", ""),
			PublicURL: getEnv("PUBLIC_API_URL", "http://localhost:8080"),
		},
		Worker: WorkerConfig{
			SweepSchedule:  getEnv("WORKER_SWEEP_SCHEDULE", "*/5 * * * *"),
			ReservationTTL: getEnvAsDuration("WORKER_RESERVATION_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 100),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 200),
			AuthRequests:      getEnvAsInt("AUTH_RATE_LIMIT_REQUESTS", 5),
			AuthWindow:        getEnvAsDuration("AUTH_RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// minReservationTTLFactor is how many generation timeouts a held
// reservation survives before the sweeper may settle it.
const minReservationTTLFactor = 2

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "supersecretkey" {
		return fmt.Errorf("JWT_SECRET must be set and should not use default value in production")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Generation.Provider {
	case "template":
	case "openai":
		if c.Generation.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai generation provider")
		}
	case "gemini":
		if c.Generation.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini generation provider")
		}
	default:
		return fmt.Errorf("unsupported generation provider: %s", c.Generation.Provider)
	}

	switch c.Archive.Driver {
	case "none":
	case "s3", "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("ARCHIVE_BUCKET is required for the %s archive driver", c.Archive.Driver)
		}
	default:
		return fmt.Errorf("unsupported archive driver: %s", c.Archive.Driver)
	}

	if c.Mail.Host != "" {
		if c.Mail.FromEmail == "" {
			return fmt.Errorf("SMTP_FROM_EMAIL is required when SMTP_HOST is set")
		}
		if c.Mail.Port < 1 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid SMTP_PORT: %d", c.Mail.Port)
		}
	}

	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.Worker.ReservationTTL < minReservationTTLFactor*c.Generation.Timeout {
		return fmt.Errorf("WORKER_RESERVATION_TTL (%s) must be at least %d times GENERATION_TIMEOUT (%s)",
			c.Worker.ReservationTTL, minReservationTTLFactor, c.Generation.Timeout)
	}
	if _, err := cron.ParseStandard(c.Worker.SweepSchedule); err != nil {
		return fmt.Errorf("invalid WORKER_SWEEP_SCHEDULE %q: %w", c.Worker.SweepSchedule, err)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
