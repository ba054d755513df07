package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	AuthTokenIssuer   string
	AuthTokenAudience string
	AuthTokenSecret   string
	AuthTokenTTL      time.Duration

	ResetTokenPepper string
	ResetTokenTTL    time.Duration

	RedisEnabled bool
	RedisAddr    string
	RedisDB      int

	SessionCacheTTL      time.Duration
	NotificationQueueKey string

	StorageEnabled   bool
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	CORSAllowedOrigins []string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	LogLevel  string
	LogFormat string

	OTELTracingEnabled       bool
	OTELMetricsEnabled       bool
	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELEnvironment          string
	OTELTraceSamplingRatio   float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		AuthTokenIssuer:      getEnv("AUTH_TOKEN_ISSUER", "mini-coaching"),
		AuthTokenAudience:    getEnv("AUTH_TOKEN_AUDIENCE", "mini-coaching-api"),
		AuthTokenSecret:      os.Getenv("AUTH_TOKEN_SECRET"),
		ResetTokenPepper:     os.Getenv("RESET_TOKEN_PEPPER"),
		RedisEnabled:         getEnvBool("REDIS_ENABLED", false),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		NotificationQueueKey: getEnv("NOTIFICATION_QUEUE_KEY", "jobs:session_notifications"),
		StorageEnabled:       getEnvBool("STORAGE_ENABLED", false),
		StorageEndpoint:      getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:        getEnv("STORAGE_BUCKET", "mini-coaching"),
		StorageUseSSL:        getEnvBool("STORAGE_USE_SSL", false),
		CORSAllowedOrigins:   getEnvCSV("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AuthRateLimitPerMin:  getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:   getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),

		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "mini-coaching"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
	}

	tokenTTL, err := time.ParseDuration(getEnv("AUTH_TOKEN_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("parse AUTH_TOKEN_TTL: %w", err)
	}
	cfg.AuthTokenTTL = tokenTTL

	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("parse RESET_TOKEN_TTL: %w", err)
	}
	cfg.ResetTokenTTL = resetTTL

	cacheTTL, err := time.ParseDuration(getEnv("SESSION_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_CACHE_TTL: %w", err)
	}
	cfg.SessionCacheTTL = cacheTTL

	ratio, err := strconv.ParseFloat(getEnv("OTEL_TRACE_SAMPLING_RATIO", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_TRACE_SAMPLING_RATIO: %w", err)
	}
	cfg.OTELTraceSamplingRatio = ratio

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.AuthTokenSecret) < 32 {
		errs = append(errs, "AUTH_TOKEN_SECRET must be at least 32 chars")
	}
	if len(c.ResetTokenPepper) < 16 {
		errs = append(errs, "RESET_TOKEN_PEPPER must be at least 16 chars")
	}
	if c.AuthTokenTTL <= 0 || c.AuthTokenTTL > (30*24*time.Hour) {
		errs = append(errs, "AUTH_TOKEN_TTL must be between 1s and 30d")
	}
	if c.ResetTokenTTL <= 0 || c.ResetTokenTTL > (24*time.Hour) {
		errs = append(errs, "RESET_TOKEN_TTL must be between 1s and 24h")
	}
	if c.SessionCacheTTL < 0 {
		errs = append(errs, "SESSION_CACHE_TTL must not be negative")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.StorageEnabled && (c.StorageAccessKey == "" || c.StorageSecretKey == "") {
		errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENABLED")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be within [0,1]")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvCSV(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
