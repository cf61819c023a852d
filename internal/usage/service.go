// Package usage enforces the daily generation quota and records generation runs.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/database"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

// Service handles quota checks and usage tracking
type Service struct {
	db     database.Querier
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a usage service
func NewService(db database.Querier, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// QuotaStatus is the result of a quota check
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

// Evaluate builds a QuotaStatus from a usage count. limit <= 0 means unlimited.
func Evaluate(used, limit int, resetsAt time.Time) *QuotaStatus {
	if limit <= 0 {
		return &QuotaStatus{Allowed: true, Used: used, Limit: limit, Remaining: -1, ResetsAt: resetsAt}
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaStatus{
		Allowed:   used < limit,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
		ResetsAt:  resetsAt,
	}
}

// CheckQuota counts the user's non-cached generations since midnight UTC.
func (s *Service) CheckQuota(ctx context.Context, userID uuid.UUID, limit int) (*QuotaStatus, error) {
	dayStart := s.now().UTC().Truncate(24 * time.Hour)

	var used int
	query := `
		SELECT COUNT(*)
		FROM generation_logs
		WHERE user_id = $1 AND created_at >= $2 AND cached = FALSE
	`
	if err := s.db.QueryRow(ctx, query, userID, dayStart).Scan(&used); err != nil {
		return nil, fmt.Errorf("count generations: %w", err)
	}

	status := Evaluate(used, limit, dayStart.Add(24*time.Hour))
	if !status.Allowed {
		s.logger.Info("Generation quota exceeded",
			zap.String("user_id", userID.String()),
			zap.Int("used", used),
			zap.Int("limit", limit),
		)
	}
	return status, nil
}

// RecordGeneration logs one generation run.
func (s *Service) RecordGeneration(ctx context.Context, entry *models.GenerationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	query := `
		INSERT INTO generation_logs (id, user_id, brand_kit_id, outcome, attempts, quality_score, duration_ms, cached, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query,
		entry.ID, entry.UserID, entry.BrandKitID, string(entry.Outcome), entry.Attempts,
		entry.QualityScore, entry.DurationMs, entry.Cached, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}
