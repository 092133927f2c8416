package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `validate:"required,oneof=development production test"`
	UIAddr      string `validate:"required"`

	ServerURL     string `validate:"required,url"`
	SessionCookie string

	// Values the host page used to inject as globals.
	AttemptID     string `validate:"required"`
	TimeRemaining int    `validate:"min=0"`

	Mode        models.ExamMode `validate:"required,exam_mode"`
	Layout      string          `validate:"required"`
	AutoAdvance bool

	SaveDebounce   time.Duration `validate:"min=0"`
	SyncInterval   time.Duration `validate:"required"`
	TickInterval   time.Duration `validate:"required"`
	SubmitGrace    time.Duration `validate:"min=0"`
	RequestTimeout time.Duration `validate:"required"`

	RedisURL string

	AudioBaseURL string
	AudioFormats []string `validate:"required,min=1"`

	Events EventConfig
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	timeRemaining, err := strconv.Atoi(getEnv("TIME_REMAINING", "7200"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_REMAINING: %w", err)
	}

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		UIAddr:        getEnv("UI_ADDR", "127.0.0.1:8090"),
		ServerURL:     getEnv("EXAM_SERVER_URL", "http://localhost:5000"),
		SessionCookie: os.Getenv("EXAM_SESSION_COOKIE"),
		AttemptID:     os.Getenv("ATTEMPT_ID"),
		TimeRemaining: timeRemaining,
		Mode:          models.ExamMode(getEnv("EXAM_MODE", string(models.ModeExam))),
		Layout:        getEnv("EXAM_LAYOUT", "toeic"),
		RedisURL:      os.Getenv("REDIS_URL"),
		AudioBaseURL:  getEnv("AUDIO_BASE_URL", ""),
		AudioFormats:  splitList(getEnv("AUDIO_FORMATS", "audio/mpeg")),
		Events: EventConfig{
			Publisher:    getEnv("EVENTS_PUBLISHER", "gochannel"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			Topic:        getEnv("EVENTS_TOPIC", "exam-session-events"),
		},
	}

	if cfg.AutoAdvance, err = getBool("AUTO_ADVANCE", false); err != nil {
		return nil, err
	}
	if cfg.Events.Enabled, err = getBool("EVENTS_ENABLED", true); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"SAVE_DEBOUNCE", "300ms", &cfg.SaveDebounce},
		{"SYNC_INTERVAL", "30s", &cfg.SyncInterval},
		{"TICK_INTERVAL", "1s", &cfg.TickInterval},
		{"SUBMIT_GRACE", "3s", &cfg.SubmitGrace},
		{"REQUEST_TIMEOUT", "10s", &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(getEnv(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if err := cfg.Validate(validator.New()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate(v *validator.Validator) error {
	if err := v.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the client runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
