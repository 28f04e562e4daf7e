package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	DemoMode       bool
	AllowedOrigins []string
	CurrencyBase   string
	FXAPIURL       string
	FXTTL          time.Duration
	GeminiModel    string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	LogLevel       string
	LogFormat      string
}

// MailEnabled reports whether report email delivery is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := Config{
		Port:         get("PORT", "8080"),
		DatabaseURL:  get("DATABASE_URL", ""),
		JWTSecret:    get("JWT_SECRET", ""),
		CurrencyBase: strings.ToUpper(get("CURRENCY_BASE", "USD")),
		FXAPIURL:     get("FX_API_URL", "https://api.exchangerate.host/latest"),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-flash"),
		SMTPHost:     get("SMTP_HOST", ""),
		SMTPUser:     get("SMTP_USER", ""),
		SMTPPass:     get("SMTP_PASS", ""),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    get("LOG_FORMAT", "console"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return cfg, fmt.Errorf("PORT must be a number: %w", err)
	}

	demo, err := strconv.ParseBool(get("DEMO_MODE", "false"))
	if err != nil {
		return cfg, fmt.Errorf("DEMO_MODE must be a boolean: %w", err)
	}
	cfg.DemoMode = demo

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.FXTTL, err = time.ParseDuration(get("FX_TTL", "6h"))
	if err != nil {
		return cfg, fmt.Errorf("FX_TTL must be a duration: %w", err)
	}

	cfg.SMTPPort, err = strconv.Atoi(get("SMTP_PORT", "587"))
	if err != nil {
		return cfg, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}
	if cfg.SMTPHost != "" && (cfg.SMTPUser == "" || cfg.SMTPPass == "") {
		return cfg, fmt.Errorf("SMTP_USER and SMTP_PASS are required when SMTP_HOST is set")
	}

	return cfg, nil
}
