package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DevJWTSecret signs tokens in development when JWT_SECRET is not set
const DevJWTSecret = "devsecret-change-me-0123456789abcdef"

// Config holds all application configuration
type Config struct {
	GoEnv    string `envconfig:"GO_ENV" default:"development"`
	Port     string `envconfig:"PORT"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DBConnectAttempts int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"30"`
	DBConnectInterval time.Duration `envconfig:"DB_CONNECT_INTERVAL" default:"1s"`

	JWTSecret   string        `envconfig:"JWT_SECRET"`
	JWTIssuer   string        `envconfig:"JWT_ISSUER" default:"homehelp-identity"`
	JWTAudience string        `envconfig:"JWT_AUDIENCE" default:"homehelp-api"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	IdentityServiceURL string        `envconfig:"IDENTITY_SERVICE_URL" default:"http://user-service:4001"`
	BookingServiceURL  string        `envconfig:"BOOKING_SERVICE_URL" default:"http://booking-service:4002"`
	UpstreamTimeout    time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	NotifierDriver  string        `envconfig:"NOTIFIER_DRIVER" default:"http"` // http, amqp or log
	NotificationURL string        `envconfig:"NOTIFICATION_URL" default:"http://localhost:4003/notify"`
	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"2s"`
	RabbitURL       string        `envconfig:"RABBIT_URL"`
	NotifyExchange  string        `envconfig:"NOTIFY_EXCHANGE" default:"booking.exchange"`
	NotifyQueue     string        `envconfig:"NOTIFY_QUEUE" default:"notification.booking.q"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// In containers the variables are set directly, so missing .env files are fine
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using system environment variables")
		}
	} else {
		slog.Info("loaded configuration", slog.String("file", envFile))
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required")
		}
		slog.Warn("JWT_SECRET not set, using development secret")
		c.JWTSecret = DevJWTSecret
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	switch c.NotifierDriver {
	case "http", "log":
	case "amqp":
		if c.RabbitURL == "" {
			return fmt.Errorf("RABBIT_URL is required when NOTIFIER_DRIVER=amqp")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER_DRIVER %q", c.NotifierDriver)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ListenAddr returns the address to listen on, using fallback when PORT is unset
func (c *Config) ListenAddr(fallback string) string {
	port := c.Port
	if port == "" {
		port = fallback
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// NewLogger builds the process logger from LOG_LEVEL and installs it as the slog default
func (c *Config) NewLogger(component string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("component", component))
	slog.SetDefault(logger)
	return logger
}
