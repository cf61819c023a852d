package models

import (
	"github.com/google/uuid"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
)

// GenerateLogoInput is the GenerateLogoWorkflow argument
type GenerateLogoInput struct {
	JobID  string     `json:"job_id"`
	UserID uuid.UUID  `json:"user_id"`
	Brief  logo.Brief `json:"brief"`
}

// GenerateLogoOutput is the GenerateLogoWorkflow result
type GenerateLogoOutput struct {
	JobID      string            `json:"job_id"`
	BrandKitID uuid.UUID         `json:"brand_kit_id"`
	Outcome    GenerationOutcome `json:"outcome"`
	Score      float64           `json:"score"`
	Attempts   int               `json:"attempts"`
}

// GenerateLogoResult carries a pipeline result between activities
type GenerateLogoResult struct {
	Result     logo.AttemptResult `json:"result"`
	Accepted   bool               `json:"accepted"`
	DurationMs int64              `json:"duration_ms"`
}
