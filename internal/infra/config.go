package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	ServiceName   string
	Port          string
	StoreDriver   string
	DatabaseURL   string
	JWTSecret     string
	GeoIPDBPath   string
	DefaultLocale string
	CORSOrigins   []string
	// TrustProxyHeaders honours X-Forwarded-For and X-Real-IP. Enable only
	// behind a proxy that overwrites them.
	TrustProxyHeaders  bool
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	PoolAutoMin        decimal.Decimal
	PoolAutoMax        decimal.Decimal
	ApprovalMaxRetries int
	ReconcileInterval  time.Duration
	OTLPEndpoint       string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Values from .env and .env.local are merged in without overriding the process environment.
func LoadConfig() (*Config, error) {
	loadDotEnv(".env", ".env.local")

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "donationhub"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		CORSOrigins:        getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		PoolAutoMin:        getEnvDecimal("POOL_AUTO_MIN", decimal.NewFromInt(100)),
		PoolAutoMax:        getEnvDecimal("POOL_AUTO_MAX", decimal.NewFromInt(7000)),
		ApprovalMaxRetries: getEnvInt("APPROVAL_MAX_RETRIES", 5),
		ReconcileInterval:  getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.PoolAutoMin.GreaterThan(cfg.PoolAutoMax) {
		return nil, fmt.Errorf("POOL_AUTO_MIN %s exceeds POOL_AUTO_MAX %s", cfg.PoolAutoMin, cfg.PoolAutoMax)
	}

	if cfg.ApprovalMaxRetries < 1 {
		cfg.ApprovalMaxRetries = 1
	}

	return cfg, nil
}

func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
