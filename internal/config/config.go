package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// Simulated submission latency of the default authenticator.
	SubmitDelay time.Duration `validate:"gte=0"`

	// Requests per second allowed per client by the rate limiter.
	RateLimit int `validate:"gte=1"`

	// Server-side form instances live this long after they were last
	// rendered or submitted.
	FormTTL       time.Duration `validate:"gt=0"`
	FormCacheSize int           `validate:"gte=1"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogJSON  bool

	ForgotPasswordURL string `validate:"required"`
	SignUpURL         string `validate:"required"`

	// Development settings
	DevMode bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables always win over it.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{}
	cfg.Port = getenv("PORT", "5001")
	cfg.SubmitDelay = time.Duration(getenvInt("SUBMIT_DELAY_MS", 1500)) * time.Millisecond
	cfg.RateLimit = getenvInt("RATE_LIMIT_RPS", 20)
	cfg.FormTTL = time.Duration(getenvInt("FORM_TTL_SECONDS", 900)) * time.Second
	cfg.FormCacheSize = getenvInt("FORM_CACHE_SIZE", 10000)
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.LogJSON = getenv("LOG_JSON", "false") == "true"
	cfg.ForgotPasswordURL = getenv("FORGOT_PASSWORD_URL", "#forgot-password")
	cfg.SignUpURL = getenv("SIGN_UP_URL", "#sign-up")
	cfg.DevMode = getenv("DEV_MODE", "false") == "true"

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the configuration.
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
