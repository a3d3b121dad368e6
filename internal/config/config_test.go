package config

import "testing"

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("CHAT_HISTORY_MESSAGES", "")
	t.Setenv("CLASSIFY_TIMEOUT_SECONDS", "")
	t.Setenv("RETRIEVE_TIMEOUT_SECONDS", "")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg := Load()
	if cfg.ChatHistoryMessages != 10 {
		t.Fatalf("expected default chat history 10, got %d", cfg.ChatHistoryMessages)
	}
	if cfg.ClassifyTimeoutSeconds != 10 {
		t.Fatalf("expected default classify timeout 10, got %d", cfg.ClassifyTimeoutSeconds)
	}
	if cfg.RetrieveTimeoutSeconds != 5 {
		t.Fatalf("expected default retrieve timeout 5, got %d", cfg.RetrieveTimeoutSeconds)
	}
	if cfg.GenerateTimeoutSeconds != 30 {
		t.Fatalf("expected default generate timeout 30, got %d", cfg.GenerateTimeoutSeconds)
	}
	if cfg.NATSSubject != "catalog.ingest" {
		t.Fatalf("expected default subject catalog.ingest, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHAT_HISTORY_MESSAGES", "4")
	t.Setenv("DEEPSEEK_MODEL", "deepseek-reasoner")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("API_RATE_LIMIT_BURST", "50")

	cfg := Load()
	if cfg.ChatHistoryMessages != 4 {
		t.Fatalf("expected chat history 4, got %d", cfg.ChatHistoryMessages)
	}
	if cfg.DeepSeekModel != "deepseek-reasoner" {
		t.Fatalf("expected model override, got %q", cfg.DeepSeekModel)
	}
	if cfg.APIRateLimitRPS != 25 || cfg.APIRateLimitBurst != 50 {
		t.Fatalf("expected rate limit overrides, got rps=%d burst=%d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHAT_HISTORY_MESSAGES", "lots")

	cfg := Load()
	if cfg.ChatHistoryMessages != 10 {
		t.Fatalf("expected fallback for malformed value, got %d", cfg.ChatHistoryMessages)
	}
}
