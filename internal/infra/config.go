package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAdminEmail is the reserved administrator identity used when
// ADMIN_EMAILS is not set.
const DefaultAdminEmail = "admin@automation.academy"

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	SessionSecret      string
	AdminEmails        []string
	EnforceAdmin       bool
	CatalogPath        string
	CORSAllowedOrigins []string
	DefaultLocale      string
	GeoIPDBPath        string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	TutorRatePerMin    int
	MaxSessions        int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults. Nothing is required at startup; the Gemini key is checked the
// first time the tutor is used.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SessionSecret:      getEnv("SESSION_SECRET", "academy-dev-session-secret"),
		AdminEmails:        splitList(getEnv("ADMIN_EMAILS", DefaultAdminEmail)),
		EnforceAdmin:       getEnvBool("ENFORCE_ADMIN_ACTIONS", true),
		CatalogPath:        os.Getenv("CATALOG_PATH"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		GeminiAPIKey:       strings.TrimSpace(firstEnv("GEMINI_API_KEY", "API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		TutorRatePerMin:    getEnvInt("TUTOR_RATE_LIMIT_PER_MINUTE", 20),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 10000),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
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
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
