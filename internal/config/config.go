// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the SQLite path, lead rate limiting, the mail provider, the
// reviews proxy, web protection and observability.
//
// The business identity (name, phone, service catalog) comes from an
// optional YAML profile; see business.go.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/hvac-site-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// RateLimitConfig defines the fixed-window lead limiter.
type RateLimitConfig struct {
	Window      time.Duration // RATE_LIMIT_WINDOW_MS
	MaxRequests int           // RATE_LIMIT_MAX_REQUESTS
	SweepEvery  int           // RATE_LIMIT_SWEEP_EVERY, <= 0 disables sweeping
}

// MailConfig defines the Resend provider settings.
type MailConfig struct {
	APIKey          string        // RESEND_API_KEY; empty disables sending
	From            string        // RESEND_FROM_EMAIL
	To              string        // RESEND_TO_EMAIL, the business inbox
	RPS             float64       // MAIL_RATE_RPS, 0 disables pacing
	DispatchTimeout time.Duration // DISPATCH_TIMEOUT
}

// ReviewsConfig defines the Google Places reviews proxy.
type ReviewsConfig struct {
	APIKey  string        // GOOGLE_API_KEY
	PlaceID string        // GOOGLE_PLACE_ID
	TTL     time.Duration // REVIEWS_TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path

	// Leads
	RateLimit            RateLimitConfig
	Mail                 MailConfig
	BusinessProfilePath  string // BUSINESS_PROFILE_PATH, optional YAML
	ServiceCatalogStrict bool   // SERVICE_CATALOG_STRICT
	OnCallTopicARN       string // ONCALL_SNS_TOPIC_ARN, optional
	Business             Business

	// Reviews
	Reviews ReviewsConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is remembered

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Storage
		DBPath: getenv("DB_PATH", "app.db"),

		// Leads
		RateLimit: RateLimitConfig{
			Window:      time.Duration(getint("RATE_LIMIT_WINDOW_MS", 60_000)) * time.Millisecond,
			MaxRequests: getint("RATE_LIMIT_MAX_REQUESTS", 5),
			SweepEvery:  getint("RATE_LIMIT_SWEEP_EVERY", 10),
		},
		Mail: MailConfig{
			APIKey:          getenv("RESEND_API_KEY", ""),
			From:            getenv("RESEND_FROM_EMAIL", "onboarding@resend.dev"),
			To:              getenv("RESEND_TO_EMAIL", "info@diazairflowsolutions.com"),
			RPS:             getfloat("MAIL_RATE_RPS", 2),
			DispatchTimeout: getdur("DISPATCH_TIMEOUT", 10*time.Second),
		},
		BusinessProfilePath:  getenv("BUSINESS_PROFILE_PATH", ""),
		ServiceCatalogStrict: getbool("SERVICE_CATALOG_STRICT", false),
		OnCallTopicARN:       getenv("ONCALL_SNS_TOPIC_ARN", ""),

		// Reviews
		Reviews: ReviewsConfig{
			APIKey:  getenv("GOOGLE_API_KEY", ""),
			PlaceID: getenv("GOOGLE_PLACE_ID", ""),
			TTL:     getdur("REVIEWS_TTL", 24*time.Hour),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "hvac-site-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- business profile ---
	biz, err := LoadBusiness(cfg.BusinessProfilePath)
	if err != nil {
		return cfg, err
	}
	cfg.Business = biz

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateLimit.Window <= 0 {
		return cfg, errors.New("RATE_LIMIT_WINDOW_MS must be > 0")
	}
	if cfg.RateLimit.MaxRequests < 1 {
		return cfg, errors.New("RATE_LIMIT_MAX_REQUESTS must be >= 1")
	}
	if strings.TrimSpace(cfg.Mail.From) == "" || strings.TrimSpace(cfg.Mail.To) == "" {
		return cfg, errors.New("RESEND_FROM_EMAIL and RESEND_TO_EMAIL must not be empty")
	}
	if cfg.Mail.RPS < 0 {
		return cfg, errors.New("MAIL_RATE_RPS must be >= 0")
	}
	if cfg.Mail.DispatchTimeout <= 0 {
		return cfg, errors.New("DISPATCH_TIMEOUT must be > 0")
	}
	if cfg.ServiceCatalogStrict && len(cfg.Business.Services) == 0 {
		return cfg, errors.New("SERVICE_CATALOG_STRICT requires a non-empty service catalog")
	}
	if cfg.Reviews.TTL < 0 {
		return cfg, errors.New("REVIEWS_TTL must be >= 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if cfg.APIBasePath == "/" {
		return cfg, errors.New("API_BASE_PATH must not be the root path")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if b, ok := sysutil.ParseBool(v); ok {
			return b
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
