package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Server        ServerConfig
	App           AppConfig
	Logger        LoggerConfig
	WhatsApp      WhatsAppConfig
	SMTP          SMTPConfig
	Notifications NotificationConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
	// PublicURL is the site origin used when building links sent to users.
	PublicURL      string
	UploadDir      string
	AllowedOrigins []string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env       string
	JWTSecret string
}

// LoggerConfig holds zap logger settings
type LoggerConfig struct {
	Level    string
	Encoding string
}

// WhatsAppConfig holds the outbound messaging API settings
type WhatsAppConfig struct {
	Enabled  bool
	APIURL   string
	APIToken string
	SenderID string
	Lang     string
}

// SMTPConfig holds email delivery settings
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NotificationConfig holds fan-out and inbox housekeeping settings
type NotificationConfig struct {
	// StoreSendsPerSecond throttles the store fan-out; 5 means one send every 200ms.
	StoreSendsPerSecond int
	QueueSize           int
	RetentionDays       int
	CleanupIntervalMins int
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Read()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Read loads configuration without validation, for tools that only need
// the database settings
func Read() *Config {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "reverse_market"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
			AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		App: AppConfig{
			Env:       getEnv("APP_ENV", "development"),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", ""),
		},
		WhatsApp: WhatsAppConfig{
			Enabled:  getEnvBool("WHATSAPP_ENABLED", false),
			APIURL:   getEnv("WHATSAPP_API_URL", ""),
			APIToken: getEnv("WHATSAPP_API_TOKEN", ""),
			SenderID: getEnv("WHATSAPP_SENDER_ID", ""),
			Lang:     getEnv("WHATSAPP_LANG", "ar"),
		},
		SMTP: SMTPConfig{
			Enabled:  getEnvBool("SMTP_ENABLED", false),
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Notifications: NotificationConfig{
			StoreSendsPerSecond: getEnvInt("STORE_NOTIFY_PER_SECOND", 5),
			QueueSize:           getEnvInt("STORE_NOTIFY_QUEUE_SIZE", 100),
			RetentionDays:       getEnvInt("NOTIFICATION_RETENTION_DAYS", 90),
			CleanupIntervalMins: getEnvInt("NOTIFICATION_CLEANUP_INTERVAL_MINUTES", 360),
		},
	}
}

// Validate checks required fields and channel settings
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.WhatsApp.Enabled && (c.WhatsApp.APIURL == "" || c.WhatsApp.APIToken == "") {
		return fmt.Errorf("WHATSAPP_API_URL and WHATSAPP_API_TOKEN are required when WhatsApp is enabled")
	}

	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "") {
		return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when email is enabled")
	}

	if c.Notifications.StoreSendsPerSecond <= 0 {
		return fmt.Errorf("STORE_NOTIFY_PER_SECOND must be positive")
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
