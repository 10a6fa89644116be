// Package config loads service and watcher settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"payoffchart/internal/model"
	"payoffchart/internal/structure"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	LogLevel       string // debug, info, warn, error
	LogPretty      bool
	DevMode        bool
	DefaultVariant model.Variant
	SessionTTL     time.Duration
	SweepSchedule  string
	Strict         bool
	Root           string // inbox root for init/watch
	PollInterval   time.Duration
}

// Load reads configuration from the environment. With an empty path a .env
// file in the working directory is loaded if it exists; otherwise path must
// be a readable key=value file. Process environment wins over file values.
func Load(path string) (*Config, error) {
	var file map[string]string
	if path == "" {
		_ = godotenv.Load()
	} else {
		kv, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		file = kv
	}
	env := source{file: file}

	cfg := &Config{
		Port:           env.getEnvAsInt("PAYOFF_PORT", 8080),
		LogLevel:       env.getEnv("PAYOFF_LOG_LEVEL", "info"),
		LogPretty:      env.getEnvAsBool("PAYOFF_LOG_PRETTY", false),
		DevMode:        env.getEnvAsBool("PAYOFF_DEV_MODE", false),
		DefaultVariant: model.Variant(env.getEnv("PAYOFF_DEFAULT_VARIANT", string(model.SharkfinCall))),
		SessionTTL:     env.getEnvAsDuration("PAYOFF_SESSION_TTL", 30*time.Minute),
		SweepSchedule:  env.getEnv("PAYOFF_SWEEP_SCHEDULE", "@every 1m"),
		Strict:         env.getEnvAsBool("PAYOFF_STRICT", false),
		Root:           env.getEnv("PAYOFF_ROOT", "."),
		PollInterval:   env.getEnvAsDuration("PAYOFF_POLL_INTERVAL", 2*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that have no sensible fallback. The default
// structure may be given by id or display label and is stored as the id.
func (c *Config) Validate() error {
	e, ok := structure.New().Lookup(string(c.DefaultVariant))
	if !ok {
		return fmt.Errorf("PAYOFF_DEFAULT_VARIANT: unknown structure %q", c.DefaultVariant)
	}
	c.DefaultVariant = e.Variant
	return nil
}

// source looks a key up in the process environment first, then in the file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

func (s source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getEnvAsInt(key string, defaultValue int) int {
	if value := s.lookup(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func (s source) getEnvAsBool(key string, defaultValue bool) bool {
	if value := s.lookup(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func (s source) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := s.lookup(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
