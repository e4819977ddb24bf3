// Package config holds the runtime settings shared by the CLI and the HTTP
// API.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xyproto/env/v2"
)

const DefaultPrefix = "CALCULA_"

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64

	// RateLimit is requests per second per client address, 0 disables it.
	RateLimit float64
	RateBurst int

	// APIKeyHash is a bcrypt hash; when set every /api request must carry
	// the matching key as a Bearer token.
	APIKeyHash string

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    1 << 20,
		RateLimit:       20,
		RateBurst:       40,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// FromEnv starts from Default and overrides every field that has a
// variable named prefix + FIELD set, e.g. CALCULA_ADDR.
func FromEnv(prefix string) (Config, error) {
	cfg := Default()

	cfg.Addr = env.Str(prefix+"ADDR", cfg.Addr)
	cfg.APIKeyHash = env.Str(prefix+"API_KEY_HASH", cfg.APIKeyHash)
	cfg.LogLevel = env.Str(prefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = env.Str(prefix+"LOG_FORMAT", cfg.LogFormat)
	cfg.RateLimit = env.Float64(prefix+"RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = env.Int(prefix+"RATE_BURST", cfg.RateBurst)
	cfg.MaxBodyBytes = env.Int64(prefix+"MAX_BODY_BYTES", cfg.MaxBodyBytes)

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"READ_TIMEOUT", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}

	for _, d := range durations {
		if !env.Has(prefix + d.name) {
			continue
		}

		v, err := time.ParseDuration(env.Str(prefix + d.name))
		if err != nil {
			return cfg, fmt.Errorf("%s%s: %w", prefix, d.name, err)
		}

		*d.dst = v
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("address must not be empty")
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}

	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}

	if c.RateLimit > 0 && c.RateBurst == 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}

	return level, nil
}

// NewLogger builds the process logger writing to w.
func NewLogger(c Config, w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
