package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/renatodap/brandkit-generator-sub000/internal/database"
	"github.com/renatodap/brandkit-generator-sub000/internal/middleware"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

const (
	tokenTTL           = 24 * time.Hour
	uniqueViolationErr = "23505"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	db         database.Querier
	jwtSecret  string
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db database.Querier, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, logger: logger, bcryptCost: bcrypt.DefaultCost}
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response for auth endpoints
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates a new user account
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} middleware.APIError
// @Failure 409 {object} middleware.APIError
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		middleware.InternalError(c, "internal server error")
		return
	}

	user := models.User{
		ID:    uuid.New(),
		Email: strings.ToLower(req.Email),
		Name:  req.Name,
	}
	query := `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err = h.db.QueryRow(c.Request.Context(), query, user.ID, user.Email, user.Name, string(hashedPassword)).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErr {
			middleware.RespondError(c, http.StatusConflict, middleware.ErrCodeConflict, "email already exists")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to create user")
		return
	}

	h.respondWithToken(c, http.StatusCreated, &user)
}

// Login authenticates a user
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} middleware.APIError
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}

	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var user models.User
	err := h.db.QueryRow(c.Request.Context(), query, strings.ToLower(req.Email)).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("failed to load user", zap.Error(err))
		}
		middleware.Unauthorized(c, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		middleware.Unauthorized(c, "invalid credentials")
		return
	}

	h.respondWithToken(c, http.StatusOK, &user)
}

// GetCurrentUser returns the current authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}

	query := `SELECT id, email, name, created_at, updated_at FROM users WHERE id = $1`

	var user models.User
	err := h.db.QueryRow(c.Request.Context(), query, userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		middleware.NotFound(c, "user not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, expiresAt, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Email, tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		middleware.InternalError(c, "internal server error")
		return
	}
	c.JSON(status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: user})
}
