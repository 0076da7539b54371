package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Media     MediaConfig
	Payment   PaymentConfig
	Bootstrap bool
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// ConnectTimeout bounds how long startup waits for the database.
	ConnectTimeout time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// MediaConfig locates uploaded files.
type MediaConfig struct {
	Root        string
	MaxUploadMB int64
}

// MaxUploadBytes is the multipart body limit.
func (m MediaConfig) MaxUploadBytes() int64 {
	return m.MaxUploadMB << 20
}

// PaymentConfig holds payment gateway credentials and checkout defaults.
type PaymentConfig struct {
	TmnCode    string
	HashSecret string
	URL        string
	ReturnURL  string
	Amount     int64
	Currency   string
	Locale     string
	Timezone   string
}

// Location resolves the gateway timezone, falling back to UTC+7.
func (p PaymentConfig) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.FixedZone(p.Timezone, 7*60*60)
	}
	return loc
}

// Load reads configuration from the environment. Files listed in envFiles
// are loaded first when present; variables already set take precedence.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	cfg := &Config{}
	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	cfg.loadCORS()
	cfg.loadLogging()
	if err := cfg.loadMedia(); err != nil {
		return nil, fmt.Errorf("load media config: %w", err)
	}
	if err := cfg.loadPayment(); err != nil {
		return nil, fmt.Errorf("load payment config: %w", err)
	}
	cfg.Bootstrap, _ = strconv.ParseBool(os.Getenv("BOOTSTRAP_DEMO"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that never
// serve traffic.
func LoadDatabase(envFiles ...string) (DatabaseConfig, error) {
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	cfg := &Config{}
	if err := cfg.loadDatabase(); err != nil {
		return DatabaseConfig{}, fmt.Errorf("load database config: %w", err)
	}
	if cfg.Database.URL == "" {
		return DatabaseConfig{}, errors.New("DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}
	return cfg.Database, nil
}

func (c *Config) loadDatabase() error {
	timeout, err := time.ParseDuration(getEnvOrDefault("DB_CONNECT_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return errors.New("DB_CONNECT_TIMEOUT must be positive")
	}
	c.Database.ConnectTimeout = timeout

	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	return nil
}

func (c *Config) loadCORS() {
	c.CORS.AllowedOrigins = splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:5173,http://localhost:8080"))
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadMedia() error {
	c.Media.Root = getEnvOrDefault("MEDIA_ROOT", "./media")
	size, err := strconv.ParseInt(getEnvOrDefault("MEDIA_MAX_UPLOAD_MB", "50"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid MEDIA_MAX_UPLOAD_MB: %w", err)
	}
	c.Media.MaxUploadMB = size
	return nil
}

func (c *Config) loadPayment() error {
	c.Payment.TmnCode = os.Getenv("PAYMENT_TMN_CODE")
	c.Payment.HashSecret = os.Getenv("PAYMENT_HASH_SECRET")
	c.Payment.URL = getEnvOrDefault("PAYMENT_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	c.Payment.ReturnURL = getEnvOrDefault("PAYMENT_RETURN_URL", "http://localhost:5173/premium/vnpay_return")
	c.Payment.Currency = getEnvOrDefault("PAYMENT_CURRENCY", "VND")
	c.Payment.Locale = getEnvOrDefault("PAYMENT_LOCALE", "vn")
	c.Payment.Timezone = getEnvOrDefault("PAYMENT_TIMEZONE", "Asia/Ho_Chi_Minh")

	amount, err := strconv.ParseInt(getEnvOrDefault("PAYMENT_AMOUNT", "50000"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid PAYMENT_AMOUNT: %w", err)
	}
	c.Payment.Amount = amount
	return nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if c.Media.MaxUploadMB < 1 {
		problems = append(problems, "MEDIA_MAX_UPLOAD_MB must be positive")
	}

	if c.Payment.TmnCode == "" {
		problems = append(problems, "PAYMENT_TMN_CODE is required")
	}
	if len(c.Payment.HashSecret) < 16 {
		problems = append(problems, "PAYMENT_HASH_SECRET must be at least 16 characters")
	}
	if c.Payment.Amount < 1 {
		problems = append(problems, "PAYMENT_AMOUNT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
