// Package brandkit persists generated brand kits and caches pipeline results.
package brandkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/database"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

// ErrNotFound is returned when a brand kit does not exist or belongs to another user.
var ErrNotFound = errors.New("brand kit not found")

// Service stores brand kits in PostgreSQL
type Service struct {
	db     database.Querier
	logger *zap.Logger
}

// NewService creates a brand kit store
func NewService(db database.Querier, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

const brandKitColumns = `id, user_id, business_name, description, industry, symbols, palette,
	logo_svg, design_spec, quality_score, quality_feedback, attempt, refined, created_at`

// Save inserts a brand kit.
func (s *Service) Save(ctx context.Context, kit *models.BrandKit) error {
	symbols, err := json.Marshal(kit.Symbols)
	if err != nil {
		return fmt.Errorf("marshal symbols: %w", err)
	}
	palette, err := json.Marshal(kit.Palette)
	if err != nil {
		return fmt.Errorf("marshal palette: %w", err)
	}
	spec, err := json.Marshal(kit.DesignSpec)
	if err != nil {
		return fmt.Errorf("marshal design spec: %w", err)
	}

	query := `
		INSERT INTO brand_kits (` + brandKitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.Exec(ctx, query,
		kit.ID, kit.UserID, kit.BusinessName, kit.Description, kit.Industry, symbols, palette,
		kit.LogoSVG, spec, kit.Quality.Score, kit.Quality.Feedback, kit.Attempt, kit.Refined, kit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert brand kit: %w", err)
	}

	s.logger.Info("Brand kit saved",
		zap.String("brand_kit_id", kit.ID.String()),
		zap.String("user_id", kit.UserID.String()),
		zap.Float64("score", kit.Quality.Score),
	)
	return nil
}

// Get returns the user's brand kit.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*models.BrandKit, error) {
	query := `SELECT ` + brandKitColumns + ` FROM brand_kits WHERE id = $1 AND user_id = $2`
	return s.scanOne(s.db.QueryRow(ctx, query, id, userID))
}

// GetPublic returns a brand kit regardless of owner. Callers must have
// authorised access some other way, e.g. with a share token.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*models.BrandKit, error) {
	query := `SELECT ` + brandKitColumns + ` FROM brand_kits WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id))
}

// ListByUser returns the user's brand kits, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.BrandKitSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, business_name, industry, quality_score, created_at
		FROM brand_kits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list brand kits: %w", err)
	}
	defer rows.Close()

	kits := []models.BrandKitSummary{}
	for rows.Next() {
		var k models.BrandKitSummary
		if err := rows.Scan(&k.ID, &k.BusinessName, &k.Industry, &k.QualityScore, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand kit: %w", err)
		}
		kits = append(kits, k)
	}
	return kits, rows.Err()
}

// Delete removes the user's brand kit.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM brand_kits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete brand kit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) scanOne(row pgx.Row) (*models.BrandKit, error) {
	var (
		kit                    models.BrandKit
		symbols, palette, spec []byte
	)
	err := row.Scan(
		&kit.ID, &kit.UserID, &kit.BusinessName, &kit.Description, &kit.Industry, &symbols, &palette,
		&kit.LogoSVG, &spec, &kit.Quality.Score, &kit.Quality.Feedback, &kit.Attempt, &kit.Refined, &kit.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan brand kit: %w", err)
	}

	if err := json.Unmarshal(symbols, &kit.Symbols); err != nil {
		return nil, fmt.Errorf("decode symbols: %w", err)
	}
	if err := json.Unmarshal(palette, &kit.Palette); err != nil {
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	if err := json.Unmarshal(spec, &kit.DesignSpec); err != nil {
		return nil, fmt.Errorf("decode design spec: %w", err)
	}
	return &kit, nil
}
