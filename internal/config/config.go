package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type AIConfig struct {
	Provider        string
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	GeminiAPIKey    string
	GeminiModel     string
	WeeksPerChunk   int
	MaxConcurrent   int
	Timeout         time.Duration
}

// Configured reports whether the selected provider has credentials.
func (a AIConfig) Configured() bool {
	switch a.Provider {
	case "deepseek":
		return a.DeepSeekAPIKey != ""
	case "gemini":
		return a.GeminiAPIKey != ""
	}
	return false
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	JWTExpires        time.Duration
	CORSOrigins       string
	LogLevel          string
	LogFile           string
	GoogleClientIDs   string
	FCMServiceAccount string
	AI                AIConfig
	Email             EmailConfig
	ReminderCron      string
	DigestCron        string
}

// ServiceStatus reports which optional integrations are configured.
type ServiceStatus struct {
	AI    bool `json:"ai"`
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "smartgoals.db"),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpires:        time.Duration(getEnvInt("JWT_EXPIRES_MIN", 7*24*60)) * time.Minute,
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		GoogleClientIDs:   getEnv("GOOGLE_CLIENT_IDS", ""),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		AI: AIConfig{
			Provider:        strings.ToLower(getEnv("AI_PROVIDER", "deepseek")),
			DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			WeeksPerChunk:   getEnvInt("AI_WEEKS_PER_CHUNK", 4),
			MaxConcurrent:   getEnvInt("AI_MAX_CONCURRENT", 4),
			Timeout:         time.Duration(getEnvInt("AI_TIMEOUT_SEC", 120)) * time.Second,
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("EMAIL_FROM", "noreply@smartgoals.app"),
			FromName:       getEnv("EMAIL_FROM_NAME", "SMART Goals"),
		},
		ReminderCron: getEnv("REMINDER_CRON", "0 1 * * *"),
		DigestCron:   getEnv("DIGEST_CRON", "0 1 * * 1"),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
		}
		if strings.TrimSpace(c.CORSOrigins) == "*" {
			errs = append(errs, errors.New("CORS_ORIGINS must list explicit origins in production"))
		}
	}
	if c.JWTExpires <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_MIN must be positive"))
	}
	switch c.AI.Provider {
	case "deepseek", "gemini":
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER %q is not supported (deepseek, gemini)", c.AI.Provider))
	}
	if c.AI.WeeksPerChunk <= 0 {
		errs = append(errs, errors.New("AI_WEEKS_PER_CHUNK must be positive"))
	}
	if c.AI.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("AI_MAX_CONCURRENT must be positive"))
	}
	for name, spec := range map[string]string{"REMINDER_CRON": c.ReminderCron, "DIGEST_CRON": c.DigestCron} {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) Services() ServiceStatus {
	return ServiceStatus{
		AI:    c.AI.Configured(),
		Email: c.Email.SendGridAPIKey != "",
		Push:  c.FCMServiceAccount != "",
	}
}

// AllowedGoogleClientIDs splits GOOGLE_CLIENT_IDS.
func (c *Config) AllowedGoogleClientIDs() []string {
	var ids []string
	for _, id := range strings.Split(c.GoogleClientIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
