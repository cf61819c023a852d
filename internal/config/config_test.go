package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_ATTEMPTS", "")
	t.Setenv("QUALITY_THRESHOLD", "")
	t.Setenv("REFINEMENT_ITERATIONS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	p := cfg.Pipeline()
	if p.QualityThreshold != 8.0 || p.MaxAttempts != 5 || p.RefinementIterations != 2 {
		t.Errorf("Unexpected pipeline defaults: %+v", p)
	}
	if p.Timeout != 0 {
		t.Errorf("Expected no generation timeout by default, got %v", p.Timeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("QUALITY_THRESHOLD", "7.5")
	t.Setenv("MAX_ATTEMPTS", "3")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("SHARE_TOKEN_TTL", "1h")
	t.Setenv("DAILY_GENERATION_QUOTA", "not-a-number")

	cfg := Load()

	if cfg.LLMProvider != "gemini" {
		t.Errorf("Expected provider gemini, got %s", cfg.LLMProvider)
	}
	if cfg.QualityThreshold != 7.5 {
		t.Errorf("Expected threshold 7.5, got %v", cfg.QualityThreshold)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.GenerationTimeout != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %v", cfg.GenerationTimeout)
	}
	if cfg.ShareTokenTTL != time.Hour {
		t.Errorf("Expected 1h share TTL, got %v", cfg.ShareTokenTTL)
	}
	if cfg.DailyGenerationQuota != 20 {
		t.Errorf("Expected malformed quota to fall back to 20, got %d", cfg.DailyGenerationQuota)
	}
}
