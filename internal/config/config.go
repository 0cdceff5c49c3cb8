package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Frontend names accepted in FRONTEND
const (
	FrontendCLI = "cli"
	FrontendWeb = "web"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	Frontend    string
	Log         LogConfig
	Storage     StorageConfig
	Report      ReportConfig
	HTTP        HTTPConfig
	RabbitMQ    RabbitMQConfig
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
	File  string
}

// StorageConfig holds the resolved paths of the two log files
type StorageConfig struct {
	DataDir     string
	ReportsFile string
	AlertsFile  string
}

// ReportConfig holds PDF export settings
type ReportConfig struct {
	OutputPath string
	FontPath   string
	Compress   bool
	Open       bool
}

// HTTPConfig holds settings of the web front end
type HTTPConfig struct {
	Port              int
	SessionTTLMinutes int
}

// RabbitMQConfig holds alert fan-out settings. An empty URL disables the broker.
type RabbitMQConfig struct {
	URL             string
	AlertExchange   string
	AlertRoutingKey string
}

// Enabled reports whether alerts should be published to the broker
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", ".")

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "mine-safety-console"),
		Frontend:    getEnv("FRONTEND", FrontendCLI),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Storage: StorageConfig{
			DataDir:     dataDir,
			ReportsFile: resolve(dataDir, getEnv("REPORTS_FILE", "daily_reports.txt")),
			AlertsFile:  resolve(dataDir, getEnv("ALERTS_FILE", "alerts.txt")),
		},
		Report: ReportConfig{
			OutputPath: resolve(dataDir, getEnv("REPORT_PDF_PATH", "report.pdf")),
			FontPath:   getEnv("REPORT_FONT_PATH", ""),
			Compress:   getEnvAsBool("REPORT_COMPRESS", true),
			Open:       getEnvAsBool("REPORT_OPEN", true),
		},
		HTTP: HTTPConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 30),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			AlertExchange:   getEnv("RABBITMQ_ALERT_EXCHANGE", "mine-safety.alerts.exchange"),
			AlertRoutingKey: getEnv("RABBITMQ_ALERT_ROUTING_KEY", "mine.alert.logged"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Frontend != FrontendCLI && c.Frontend != FrontendWeb {
		return fmt.Errorf("FRONTEND must be %q or %q, got %q", FrontendCLI, FrontendWeb, c.Frontend)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.SessionTTLMinutes < 1 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.HTTP.SessionTTLMinutes)
	}
	return nil
}

// resolve joins relative file names onto the data directory
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
