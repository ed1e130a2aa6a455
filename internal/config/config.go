package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the NEXUS backend.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Overrides OverrideConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Signage   SignageConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxBodyBytes    int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Override store drivers.
const (
	OverrideDriverMemory = "memory"
	OverrideDriverRedis  = "redis"
)

// OverrideConfig selects where campaign overrides live.
type OverrideConfig struct {
	Driver    string
	KeyPrefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CORSConfig is the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// RateLimitConfig splits limits between screen playback routes and the
// management API.
type RateLimitConfig struct {
	Enabled   bool
	RPS       float64
	Burst     int
	MgmtRPS   float64
	MgmtBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Custom-field precedence values.
const (
	PrecedenceCustom    = "custom"
	PrecedenceCanonical = "canonical"
)

// Numeric coercion modes for canonical numeric fields.
const (
	NumericModeNull = "null"
	NumericModeZero = "zero"
)

// SignageConfig holds the content-plan and metadata behaviour knobs.
type SignageConfig struct {
	GatewayTimeout    time.Duration
	MaxMergeDepth     int
	ImpressionBaseURL string
	Precedence        string
	NumericMode       string
}

// DefaultAllowedOrigins are the admin UIs permitted to call the API.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://192.168.1.20:8080",
	"http://192.168.1.20:3000",
	"http://192.168.1.20:5173",
	"https://preview--creative-content-manager.lovable.app",
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("NEXUS_HTTP_ADDR", ":3001"),
			Env:             getEnv("NEXUS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("NEXUS_SHUTDOWN_TIMEOUT", 30*time.Second),
			ReadTimeout:     getDurationEnv("NEXUS_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("NEXUS_WRITE_TIMEOUT", 15*time.Second),
			MaxBodyBytes:    int64(getIntEnv("NEXUS_MAX_BODY_BYTES", 1<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("NEXUS_DB_HOST", "localhost"),
			Port:     getIntEnv("NEXUS_DB_PORT", 5432),
			User:     getEnv("NEXUS_DB_USER", ""),
			Password: getEnv("NEXUS_DB_PASSWORD", ""),
			DBName:   getEnv("NEXUS_DB_NAME", "nexus"),
			SSLMode:  getEnv("NEXUS_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("NEXUS_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("NEXUS_DB_MIN_CONNS", 1),
		},
		Overrides: OverrideConfig{
			Driver:    strings.ToLower(getEnv("NEXUS_OVERRIDE_STORE", OverrideDriverMemory)),
			KeyPrefix: getEnv("NEXUS_OVERRIDE_KEY_PREFIX", "nexus:override:"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("NEXUS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("NEXUS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("NEXUS_REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("NEXUS_CORS_ORIGINS", DefaultAllowedOrigins),
			AllowCredentials: getBoolEnv("NEXUS_CORS_CREDENTIALS", true),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getBoolEnv("NEXUS_RATE_LIMIT_ENABLED", true),
			RPS:       getFloatEnv("NEXUS_RATE_LIMIT_RPS", 200),
			Burst:     getIntEnv("NEXUS_RATE_LIMIT_BURST", 50),
			MgmtRPS:   getFloatEnv("NEXUS_RATE_LIMIT_MGMT_RPS", 20),
			MgmtBurst: getIntEnv("NEXUS_RATE_LIMIT_MGMT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("NEXUS_LOG_LEVEL", "info"),
			Format: getEnv("NEXUS_LOG_FORMAT", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("NEXUS_METRICS_ENABLED", true),
			Path:    getEnv("NEXUS_METRICS_PATH", "/metrics"),
		},
		Signage: SignageConfig{
			GatewayTimeout:    getDurationEnv("NEXUS_GATEWAY_TIMEOUT", 5*time.Second),
			MaxMergeDepth:     getIntEnv("NEXUS_MAX_MERGE_DEPTH", 32),
			ImpressionBaseURL: getEnv("NEXUS_IMPRESSION_BASE_URL", "https://api.adonmo.com/impression"),
			Precedence:        strings.ToLower(getEnv("NEXUS_CUSTOM_FIELD_PRECEDENCE", PrecedenceCustom)),
			NumericMode:       strings.ToLower(getEnv("NEXUS_NUMERIC_MODE", NumericModeNull)),
		},
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Database.User == "" || c.Database.Password == "" {
		return fmt.Errorf("NEXUS_DB_USER and NEXUS_DB_PASSWORD are required")
	}
	switch c.Overrides.Driver {
	case OverrideDriverMemory, OverrideDriverRedis:
	default:
		return fmt.Errorf("NEXUS_OVERRIDE_STORE must be %q or %q, got %q",
			OverrideDriverMemory, OverrideDriverRedis, c.Overrides.Driver)
	}
	switch c.Signage.Precedence {
	case PrecedenceCustom, PrecedenceCanonical:
	default:
		return fmt.Errorf("NEXUS_CUSTOM_FIELD_PRECEDENCE must be %q or %q, got %q",
			PrecedenceCustom, PrecedenceCanonical, c.Signage.Precedence)
	}
	switch c.Signage.NumericMode {
	case NumericModeNull, NumericModeZero:
	default:
		return fmt.Errorf("NEXUS_NUMERIC_MODE must be %q or %q, got %q",
			NumericModeNull, NumericModeZero, c.Signage.NumericMode)
	}
	if c.Signage.MaxMergeDepth <= 0 {
		return fmt.Errorf("NEXUS_MAX_MERGE_DEPTH must be positive")
	}
	if c.Signage.GatewayTimeout <= 0 {
		return fmt.Errorf("NEXUS_GATEWAY_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("NEXUS_MAX_BODY_BYTES must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
