package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    enabled: true
    http:
      url: " https://example.com/2 "
      method: put
      headers:
        X-Token: abc
        "  ": ignored
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}

	cfg, ok := reg.ByID("http2")
	if !ok {
		t.Fatalf("expected http2 by id")
	}
	if cfg.Type != TypeHTTP || cfg.HTTP.URL != "https://example.com/2" || cfg.HTTP.Method != "PUT" {
		t.Fatalf("config not sanitized: %#v", cfg.HTTP)
	}
	if cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if len(cfg.HTTP.Headers) != 1 || cfg.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("unexpected headers %#v", cfg.HTTP.Headers)
	}
}

func TestLoadRegistryJSONWithQueues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[
	  {"id":"queue","type":"sqs","sqs":{"uri":"https://sqs.eu-west-1.amazonaws.com/1/items","region":"eu-west-1",
	   "credentials":{"access_key_id":"AKID","secret_access_key":""}}},
	  {"id":"topic","type":"sns","sns":{"topic_arn":"arn:aws:sns:eu-west-1:1:items","region":"eu-west-1"}},
	  {"id":"gcp","type":"gcp_pubsub","pubsub":{"project_id":"proj","topic_id":"items"}}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 3 {
		t.Fatalf("expected 3 publishers, got %d", got)
	}
	queue, _ := reg.ByID("queue")
	if queue.SQS.Credentials != nil {
		t.Fatalf("incomplete credentials should be dropped")
	}
}

func TestLoadRegistryRejectsDuplicatesAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()

	dup := filepath.Join(dir, "dup.yaml")
	_ = os.WriteFile(dup, []byte(`
publishers:
  - id: a
    type: http
    http: {url: https://example.com}
  - id: a
    type: http
    http: {url: https://example.com}
`), 0o644)
	if _, err := LoadRegistry(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	_ = os.WriteFile(empty, []byte("publishers: []\n"), 0o644)
	if _, err := LoadRegistry(empty); err == nil {
		t.Fatalf("expected error for empty registry")
	}

	if _, err := LoadRegistry(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing id":      {Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		"missing type":    {ID: "x"},
		"unknown type":    {ID: "x", Type: "kafka"},
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"missing sqs uri": {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{Region: "eu-west-1"}},
		"missing region":  {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"missing topic":   {ID: "g", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	ok := PublisherConfig{ID: "g", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p", TopicID: "t"}}
	if err := validatePublisherConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
