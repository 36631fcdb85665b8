package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8000/api/v1/items" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.RetryMaxAttempts != 1 {
		t.Fatalf("unexpected retry attempts %d", cfg.RetryMaxAttempts)
	}
	if cfg.LedgerType != "none" || cfg.LedgerTTL != 24*time.Hour {
		t.Fatalf("unexpected ledger config %q %v", cfg.LedgerType, cfg.LedgerTTL)
	}
	if cfg.PublishersFile != "" {
		t.Fatalf("expected no publishers file by default, got %q", cfg.PublishersFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "https://items.example.com/api/v1/items")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	t.Setenv("RETRY_MAX_ATTEMPTS", "4")
	t.Setenv("LEDGER_TYPE", "bbolt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://items.example.com/api/v1/items" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.RetryMaxAttempts != 4 {
		t.Fatalf("unexpected retry attempts %d", cfg.RetryMaxAttempts)
	}
	if cfg.LedgerType != "bbolt" {
		t.Fatalf("unexpected ledger type %q", cfg.LedgerType)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BASE_URL":             "not a url",
		"HTTP_TIMEOUT_SECONDS": "-1",
		"RETRY_MAX_ATTEMPTS":   "0",
		"LEDGER_TTL_SECONDS":   "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestSetBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:8000/api/v1/items"}
	if err := cfg.SetBaseURL("ftp://example.com"); err == nil {
		t.Fatalf("expected error for non-http url")
	}
	if err := cfg.SetBaseURL(" http://127.0.0.1:9000/items "); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	if cfg.BaseURL != "http://127.0.0.1:9000/items" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
}
