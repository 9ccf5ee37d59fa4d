package config

import (
	"os"
	"strconv"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Spreadsheet backend
	SheetsBaseURL string
	SheetsAPIKey  string
	SpreadsheetID string
	UseSheets     bool

	// Telegram transport
	TelegramAPIURL   string
	TelegramBotToken string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Pricing
	PricingMode domain.PricingMode

	// Dialogue knobs. The three bot variants of the original system
	// disagreed on these; here they are explicit configuration.
	QuantityMax             int
	RetainClientAfterOrder  bool
	ZeroQuantityRemovesLine bool
	MaxSearchResults        int
	MinSearchTermLen        int

	// Order ids: "seq" (ORD001, ORD002, ...) or "uuid" (opaque).
	OrderIDFormat string

	// Admin API / JWT
	AdminUser         string
	AdminPasswordHash string // bcrypt hash
	JWTSecret         string
	JWTAccessTTL      time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SheetsBaseURL: getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		SheetsAPIKey:  getEnv("SHEETS_API_KEY", ""),
		SpreadsheetID: getEnv("SPREADSHEET_ID", ""),
		UseSheets:     getEnv("USE_SHEETS", "true") == "true",

		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		PricingMode: pricingMode(getEnv("PRICING_MODE", "tiers")),

		QuantityMax:             getEnvInt("QUANTITY_MAX", 50),
		RetainClientAfterOrder:  getEnv("RETAIN_CLIENT_AFTER_ORDER", "true") == "true",
		ZeroQuantityRemovesLine: getEnv("ZERO_QUANTITY_REMOVES_LINE", "false") == "true",
		MaxSearchResults:        getEnvInt("MAX_SEARCH_RESULTS", 10),
		MinSearchTermLen:        getEnvInt("MIN_SEARCH_TERM_LEN", 2),

		OrderIDFormat: getEnv("ORDER_ID_FORMAT", "seq"),

		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", "pedidos-default-dev-secret-change-me"),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),
	}
}

func pricingMode(v string) domain.PricingMode {
	if v == string(domain.PricingMultiplier) {
		return domain.PricingMultiplier
	}
	return domain.PricingTiers
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
