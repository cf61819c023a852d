package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/brandkit"
	"github.com/renatodap/brandkit-generator-sub000/internal/middleware"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
	"github.com/renatodap/brandkit-generator-sub000/internal/sharing"
)

// BrandKitStore reads and deletes persisted brand kits
type BrandKitStore interface {
	Get(ctx context.Context, id, userID uuid.UUID) (*models.BrandKit, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*models.BrandKit, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.BrandKitSummary, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ShareTokens issues and verifies share link tokens
type ShareTokens interface {
	Issue(brandKitID uuid.UUID, ttl time.Duration) (*sharing.Token, error)
	Verify(token string) (uuid.UUID, error)
}

// BrandKitHandler handles brand kit endpoints
type BrandKitHandler struct {
	store    BrandKitStore
	shares   ShareTokens
	shareTTL time.Duration
	logger   *zap.Logger
}

// NewBrandKitHandler creates a new brand kit handler
func NewBrandKitHandler(store BrandKitStore, shares ShareTokens, shareTTL time.Duration, logger *zap.Logger) *BrandKitHandler {
	return &BrandKitHandler{store: store, shares: shares, shareTTL: shareTTL, logger: logger}
}

// ListResponse is a page of brand kits
type ListResponse struct {
	BrandKits []models.BrandKitSummary `json:"brand_kits"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

// List returns the user's brand kits
// @Summary List brand kits
// @Tags brand-kits
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Router /api/v1/brand-kits [get]
func (h *BrandKitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	kits, err := h.store.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list brand kits", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to list brand kits")
		return
	}

	c.JSON(http.StatusOK, ListResponse{BrandKits: kits, Limit: limit, Offset: offset})
}

// Get returns one of the user's brand kits
// @Summary Get a brand kit
// @Tags brand-kits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Brand kit ID"
// @Success 200 {object} models.BrandKit
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/brand-kits/{id} [get]
func (h *BrandKitHandler) Get(c *gin.Context) {
	kit, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, kit)
}

// LogoSVG serves the brand kit's logo as an SVG document
// @Summary Download the logo
// @Tags brand-kits
// @Produce image/svg+xml
// @Security BearerAuth
// @Param id path string true "Brand kit ID"
// @Success 200 {string} string "SVG document"
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/brand-kits/{id}/logo.svg [get]
func (h *BrandKitHandler) LogoSVG(c *gin.Context) {
	kit, ok := h.owned(c)
	if !ok {
		return
	}
	// The markup is model output; browsers must not run anything inside it.
	c.Header("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", `inline; filename="logo.svg"`)
	c.Data(http.StatusOK, "image/svg+xml", []byte(kit.LogoSVG))
}

// Delete removes one of the user's brand kits
// @Summary Delete a brand kit
// @Tags brand-kits
// @Security BearerAuth
// @Param id path string true "Brand kit ID"
// @Success 204
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/brand-kits/{id} [delete]
func (h *BrandKitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.BadRequest(c, "invalid brand kit id")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, brandkit.ErrNotFound) {
			middleware.NotFound(c, "brand kit not found")
			return
		}
		h.logger.Error("failed to delete brand kit", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to delete brand kit")
		return
	}
	c.Status(http.StatusNoContent)
}

// Share issues a share link token for one of the user's brand kits
// @Summary Share a brand kit
// @Tags brand-kits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Brand kit ID"
// @Success 201 {object} sharing.Token
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/brand-kits/{id}/share [post]
func (h *BrandKitHandler) Share(c *gin.Context) {
	kit, ok := h.owned(c)
	if !ok {
		return
	}
	token, err := h.shares.Issue(kit.ID, h.shareTTL)
	if err != nil {
		h.logger.Error("failed to issue share token", zap.Error(err))
		middleware.InternalError(c, "failed to share brand kit")
		return
	}
	c.JSON(http.StatusCreated, token)
}

// GetShared returns a brand kit by share token, without authentication
// @Summary Get a shared brand kit
// @Tags share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} models.BrandKit
// @Failure 404 {object} middleware.APIError
// @Failure 410 {object} middleware.APIError
// @Router /api/v1/share/{token} [get]
func (h *BrandKitHandler) GetShared(c *gin.Context) {
	id, err := h.shares.Verify(c.Param("token"))
	if err != nil {
		if errors.Is(err, sharing.ErrTokenExpired) {
			middleware.RespondError(c, http.StatusGone, middleware.ErrCodeGone, "share link has expired")
			return
		}
		middleware.NotFound(c, "brand kit not found")
		return
	}

	kit, err := h.store.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, kit)
}

// owned loads the brand kit named by the :id param if it belongs to the
// caller, writing the error response otherwise.
func (h *BrandKitHandler) owned(c *gin.Context) (*models.BrandKit, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.BadRequest(c, "invalid brand kit id")
		return nil, false
	}

	kit, err := h.store.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.notFoundOrError(c, err)
		return nil, false
	}
	return kit, true
}

func (h *BrandKitHandler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, brandkit.ErrNotFound) {
		middleware.NotFound(c, "brand kit not found")
		return
	}
	h.logger.Error("failed to load brand kit", zap.Error(err))
	middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to load brand kit")
}
