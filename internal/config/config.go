package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Auth struct {
		JWTSecret  string
		AccessTTL  time.Duration
		RefreshTTL time.Duration
	}

	// AI holds credentials for the hosted completion provider. When APIKey
	// and Model are both empty the service still runs; chat replies degrade
	// to the canned error text.
	AI struct {
		APIKey  string
		Model   string
		BaseURL string
		Region  string
		Timeout time.Duration
	}

	// Kafka — if Brokers is empty, ticket events are a no-op.
	Kafka struct {
		Brokers string
		Topic   string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:  getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort: firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "support_service")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	accessTTL, err := parseHoursEnv("JWT_ACCESS_TTL_HOURS", 1)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := parseHoursEnv("JWT_REFRESH_TTL_HOURS", 24*7)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTTL = accessTTL
	cfg.Auth.RefreshTTL = refreshTTL

	cfg.AI.APIKey = strings.TrimSpace(os.Getenv("AI_API_KEY"))
	cfg.AI.Model = getEnv("AI_MODEL", "gpt-4")
	cfg.AI.BaseURL = getEnv("AI_BASE_URL", "")
	cfg.AI.Region = getEnv("AI_REGION", "")
	timeout, err := parseSecondsEnv("AI_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.AI.Timeout = timeout

	cfg.Kafka.Brokers = getEnv("KAFKA_BROKERS", "")
	cfg.Kafka.Topic = getEnv("KAFKA_TICKET_TOPIC", "ticket-events")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	return nil
}

// AIEnabled reports whether completion credentials were provided.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != "" && c.AI.Model != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func parseHoursEnv(key string, def int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Hour, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return time.Duration(n) * time.Hour, nil
}

func parseSecondsEnv(key string, def int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return time.Duration(n) * time.Second, nil
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
