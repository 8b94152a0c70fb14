package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Logger       LoggerConfig
	Checkout     CheckoutConfig
	Gateway      GatewayConfig
	Notification NotificationConfig
	Audit        AuditConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// CheckoutConfig holds store-wide checkout settings.
type CheckoutConfig struct {
	Currency string
}

// GatewayConfig holds payment gateway credentials. KeyID is public and is
// handed to the storefront for widget initialisation; KeySecret never leaves
// the server and also signs payment confirmations.
type GatewayConfig struct {
	Name      string
	Endpoint  string
	KeyID     string
	KeySecret string
}

// NotificationConfig holds order-confirmation delivery settings.
type NotificationConfig struct {
	Enabled    bool
	WebhookURL string
}

// AuditConfig holds callback-payload archival settings.
type AuditConfig struct {
	Backend string // "file" or "s3"
	Dir     string
	Bucket  string
	Region  string
	Prefix  string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "techkart"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Checkout: CheckoutConfig{
			Currency: getEnv("CHECKOUT_CURRENCY", "INR"),
		},
		Gateway: GatewayConfig{
			Name:      getEnv("GATEWAY_NAME", "razorpay"),
			Endpoint:  getEnv("GATEWAY_ENDPOINT", "https://api.razorpay.com"),
			KeyID:     getEnv("GATEWAY_KEY_ID", ""),
			KeySecret: getEnv("GATEWAY_KEY_SECRET", ""),
		},
		Notification: NotificationConfig{
			Enabled:    getEnvAsBool("NOTIFY_ENABLED", false),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Audit: AuditConfig{
			Backend: getEnv("AUDIT_BACKEND", "file"),
			Dir:     getEnv("AUDIT_DIR", "data/callbacks"),
			Bucket:  getEnv("AUDIT_S3_BUCKET", ""),
			Region:  getEnv("AUDIT_S3_REGION", "ap-south-1"),
			Prefix:  getEnv("AUDIT_S3_PREFIX", "callbacks/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Checkout.Currency == "" {
		return fmt.Errorf("checkout currency is required")
	}

	if c.Gateway.KeyID == "" {
		return fmt.Errorf("gateway key ID is required")
	}

	if c.Gateway.KeySecret == "" {
		return fmt.Errorf("gateway key secret is required")
	}

	if c.Gateway.Endpoint == "" {
		return fmt.Errorf("gateway endpoint is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Notification.Enabled && c.Notification.WebhookURL == "" {
		return fmt.Errorf("notification webhook URL is required when notifications are enabled")
	}

	switch c.Audit.Backend {
	case "file":
		if c.Audit.Dir == "" {
			return fmt.Errorf("audit directory is required for the file backend")
		}
	case "s3":
		if c.Audit.Bucket == "" {
			return fmt.Errorf("audit S3 bucket is required for the s3 backend")
		}
		if c.Audit.Region == "" {
			return fmt.Errorf("audit S3 region is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid audit backend: %s (must be file or s3)", c.Audit.Backend)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
