package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
)

// BrandKit is a persisted generation result together with its inputs
type BrandKit struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	BusinessName string    `json:"business_name"`
	Description  string    `json:"description"`
	Industry     string    `json:"industry"`

	Symbols logo.SymbolSet    `json:"symbols"`
	Palette logo.ColorPalette `json:"palette"`

	// Logo
	LogoSVG    string                   `json:"logo_svg"`
	DesignSpec logo.DesignSpecification `json:"design_spec"`
	Quality    logo.QualityScore        `json:"quality"`
	Attempt    int                      `json:"attempt"`
	Refined    bool                     `json:"refined"`

	CreatedAt time.Time `json:"created_at"`
}

// NewBrandKit builds a brand kit from a brief and the pipeline's result.
func NewBrandKit(userID uuid.UUID, b logo.Brief, res *logo.AttemptResult) *BrandKit {
	return &BrandKit{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: b.BusinessName,
		Description:  b.Description,
		Industry:     b.Industry,
		Symbols:      b.Symbols,
		Palette:      b.Palette,
		LogoSVG:      res.Candidate.SVGMarkup,
		DesignSpec:   res.Template,
		Quality:      res.Quality,
		Attempt:      res.Attempt,
		Refined:      res.Refined,
		CreatedAt:    time.Now().UTC(),
	}
}

// BrandKitSummary is the list view of a brand kit
type BrandKitSummary struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry"`
	QualityScore float64   `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GenerationOutcome classifies one pipeline run for usage accounting
type GenerationOutcome string

const (
	OutcomeAccepted   GenerationOutcome = "accepted"
	OutcomeBestEffort GenerationOutcome = "best_effort"
	OutcomeFailed     GenerationOutcome = "failed"
	OutcomeCanceled   GenerationOutcome = "canceled"
)

// GenerationLog tracks one generation run
type GenerationLog struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	BrandKitID   *uuid.UUID        `json:"brand_kit_id,omitempty"`
	Outcome      GenerationOutcome `json:"outcome"`
	Attempts     int               `json:"attempts"`
	QualityScore *float64          `json:"quality_score,omitempty"`
	DurationMs   int64             `json:"duration_ms"`
	Cached       bool              `json:"cached"`
	CreatedAt    time.Time         `json:"created_at"`
}

// JobState is the lifecycle of an async generation job
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job is the async generation status kept in redis
type Job struct {
	ID         string     `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	State      JobState   `json:"state"`
	BrandKitID *uuid.UUID `json:"brand_kit_id,omitempty"`
	Error      string     `json:"error,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
