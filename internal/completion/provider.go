package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProviderConfig selects and configures a completion backend.
type ProviderConfig struct {
	Provider       string // openai | gemini
	APIKey         string
	BaseURL        string
	ReasoningModel string
	FastModel      string
	Timeout        time.Duration
}

// NewProvider builds the configured backend. Empty model names keep the
// provider's defaults.
func NewProvider(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		oc := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			oc.Timeout = cfg.Timeout
		}
		oc.Models = overrideModels(oc.Models, cfg)
		return NewOpenAIClient(oc, logger), nil
	case "gemini":
		tiers := overrideModels(Models{
			TierReasoning: "gemini-2.5-pro",
			TierFast:      "gemini-2.5-flash",
		}, cfg)
		return NewGeminiClient(ctx, cfg.APIKey, tiers)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

func overrideModels(m Models, cfg ProviderConfig) Models {
	if cfg.ReasoningModel != "" {
		m[TierReasoning] = cfg.ReasoningModel
	}
	if cfg.FastModel != "" {
		m[TierFast] = cfg.FastModel
	}
	return m
}
