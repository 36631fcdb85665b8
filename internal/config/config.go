package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	BaseURL            string        `mapstructure:"base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	PublishersFile     string        `mapstructure:"publishers_file"`

	RetryMaxAttempts       int           `mapstructure:"retry_max_attempts"`
	RetryInitialIntervalMS int64         `mapstructure:"retry_initial_interval_ms"`
	RetryMaxIntervalMS     int64         `mapstructure:"retry_max_interval_ms"`
	RetryInitialInterval   time.Duration `mapstructure:"-"`
	RetryMaxInterval       time.Duration `mapstructure:"-"`

	LedgerType            string        `mapstructure:"ledger_type"`
	LedgerPath            string        `mapstructure:"ledger_path"`
	LedgerTTLSeconds      int64         `mapstructure:"ledger_ttl_seconds"`
	LedgerCleanupSeconds  int64         `mapstructure:"ledger_cleanup_interval_seconds"`
	LedgerTTL             time.Duration `mapstructure:"-"`
	LedgerCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-items-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "http://localhost:8000/api/v1/items")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("publishers_file", "")
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_initial_interval_ms", 200)
	v.SetDefault("retry_max_interval_ms", 5000)
	// Duplicate suppression is opt-in; set ledger_type=bbolt to enable it.
	v.SetDefault("ledger_type", "none")
	v.SetDefault("ledger_path", "./data/ledger.db")
	v.SetDefault("ledger_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("ledger_cleanup_interval_seconds", int64(time.Hour/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations.
func (cfg *Config) finalize() error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return err
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.RetryMaxAttempts < 1 {
		return fmt.Errorf("invalid retry_max_attempts (must be at least 1)")
	}
	if cfg.RetryInitialIntervalMS <= 0 || cfg.RetryMaxIntervalMS <= 0 {
		return fmt.Errorf("invalid retry intervals (must be positive milliseconds)")
	}
	if cfg.RetryMaxIntervalMS < cfg.RetryInitialIntervalMS {
		return fmt.Errorf("retry_max_interval_ms must not be lower than retry_initial_interval_ms")
	}
	cfg.RetryInitialInterval = time.Duration(cfg.RetryInitialIntervalMS) * time.Millisecond
	cfg.RetryMaxInterval = time.Duration(cfg.RetryMaxIntervalMS) * time.Millisecond

	if cfg.LedgerTTLSeconds <= 0 {
		return fmt.Errorf("invalid ledger_ttl_seconds (must be positive seconds)")
	}
	if cfg.LedgerCleanupSeconds <= 0 {
		return fmt.Errorf("invalid ledger_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.LedgerTTL = time.Duration(cfg.LedgerTTLSeconds) * time.Second
	cfg.LedgerCleanupInterval = time.Duration(cfg.LedgerCleanupSeconds) * time.Second

	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	return nil
}

// SetBaseURL overrides the endpoint, e.g. from a command line flag.
func (cfg *Config) SetBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if err := validateBaseURL(raw); err != nil {
		return err
	}
	cfg.BaseURL = raw
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (expected absolute http or https url)", raw)
	}
	return nil
}
