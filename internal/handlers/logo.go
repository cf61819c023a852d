package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/renatodap/brandkit-generator-sub000/internal/brandkit"
	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/metrics"
	"github.com/renatodap/brandkit-generator-sub000/internal/middleware"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
	"github.com/renatodap/brandkit-generator-sub000/internal/orchestration"
	"github.com/renatodap/brandkit-generator-sub000/internal/symbols"
	"github.com/renatodap/brandkit-generator-sub000/internal/usage"
)

// Generator runs the logo pipeline
type Generator interface {
	Generate(ctx context.Context, b logo.Brief) (*logo.AttemptResult, error)
	Config() logo.Config
}

// ResultCache stores pipeline results by brief fingerprint and async job status
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*logo.AttemptResult, error)
	Put(ctx context.Context, fingerprint string, res *logo.AttemptResult) error
	SetJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// QuotaChecker reports how many generations a user has left today
type QuotaChecker interface {
	CheckQuota(ctx context.Context, userID uuid.UUID, limit int) (*usage.QuotaStatus, error)
}

// GenerationRecorder persists finished runs. *orchestration.Activities implements it.
type GenerationRecorder interface {
	Record(ctx context.Context, in models.GenerateLogoInput, result models.GenerateLogoResult, cached bool) (*models.BrandKit, *models.GenerateLogoOutput, error)
	MarkFailed(ctx context.Context, in orchestration.FailureInput) error
}

// JobStarter launches an async generation job
type JobStarter interface {
	Start(ctx context.Context, in models.GenerateLogoInput) error
}

// LogoHandler handles logo generation endpoints
type LogoHandler struct {
	generator  Generator
	cache      ResultCache
	quota      QuotaChecker
	recorder   GenerationRecorder
	starter    JobStarter
	dailyLimit int
	logger     *zap.Logger

	flights singleflight.Group
}

// NewLogoHandler creates a new logo handler. cache, quota and starter may be
// nil; the matching feature is then skipped or disabled.
func NewLogoHandler(
	generator Generator,
	cache ResultCache,
	quota QuotaChecker,
	recorder GenerationRecorder,
	starter JobStarter,
	dailyLimit int,
	logger *zap.Logger,
) *LogoHandler {
	return &LogoHandler{
		generator:  generator,
		cache:      cache,
		quota:      quota,
		recorder:   recorder,
		starter:    starter,
		dailyLimit: dailyLimit,
		logger:     logger,
	}
}

// GenerateLogoRequest is the request body for logo generation
type GenerateLogoRequest struct {
	BusinessName string            `json:"business_name" binding:"required,max=100"`
	Description  string            `json:"description" binding:"required,max=1000"`
	Industry     string            `json:"industry" binding:"required,max=100"`
	Palette      logo.ColorPalette `json:"palette" binding:"required"`
	Symbols      *logo.SymbolSet   `json:"symbols,omitempty"`
}

// brief builds the pipeline input. Missing symbol descriptors are derived
// from the description and industry.
func (r GenerateLogoRequest) brief() logo.Brief {
	var set logo.SymbolSet
	if r.Symbols != nil {
		set = symbols.Complete(*r.Symbols, r.Description, r.Industry)
	} else {
		set = symbols.Extract(r.Description, r.Industry)
	}
	return logo.Brief{
		BusinessName: r.BusinessName,
		Description:  r.Description,
		Industry:     r.Industry,
		Symbols:      set,
		Palette:      r.Palette,
	}
}

// GenerateLogoResponse is returned by the synchronous generate endpoint
type GenerateLogoResponse struct {
	BrandKit *models.BrandKit `json:"brand_kit"`
	Accepted bool             `json:"accepted"`
	Cached   bool             `json:"cached"`
}

// JobResponse is returned when an async job is accepted
type JobResponse struct {
	JobID     string          `json:"job_id"`
	State     models.JobState `json:"state"`
	StatusURL string          `json:"status_url"`
}

// flightResult is what a shared pipeline run hands to every waiting request.
// kit and saveErr belong to the request that started the run.
type flightResult struct {
	result   *logo.AttemptResult
	duration time.Duration
	kit      *models.BrandKit
	saveErr  error
}

// Generate runs the pipeline and saves the result as a brand kit
// @Summary Generate a logo
// @Description Runs the quality-gated pipeline and stores the best logo as a brand kit
// @Tags logos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateLogoRequest true "Brand brief"
// @Success 201 {object} GenerateLogoResponse
// @Failure 400 {object} middleware.APIError
// @Failure 422 {object} middleware.APIError
// @Failure 429 {object} middleware.APIError
// @Failure 503 {object} middleware.APIError
// @Router /api/v1/logos/generate [post]
func (h *LogoHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}

	var req GenerateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}
	if err := req.Palette.Validate(); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	brief := req.brief()
	input := models.GenerateLogoInput{UserID: userID, Brief: brief}
	fingerprint := brandkit.Fingerprint(brief)
	logger := h.logger.With(zap.String("user_id", userID.String()), zap.String("business", brief.BusinessName))

	if res := h.lookup(ctx, fingerprint); res != nil {
		h.respond(c, input, models.GenerateLogoResult{Result: *res, Accepted: h.accepted(res)}, true)
		return
	}

	if !h.checkQuota(c, userID) {
		return
	}

	// Identical concurrent briefs share one pipeline run. The run outlives
	// any single request so the other waiters still get their result, and
	// the starting request's usage is recorded even if its client is gone.
	ran := false
	ch := h.flights.DoChan(fingerprint, func() (interface{}, error) {
		ran = true
		flightCtx := context.WithoutCancel(ctx)
		fr, err := h.run(flightCtx, brief, fingerprint, logger)
		if err != nil {
			h.markFailed(flightCtx, input, err)
			return nil, err
		}
		fr.kit, fr.saveErr = h.save(flightCtx, input, h.resultOf(fr), false)
		return fr, nil
	})

	var fr *flightResult
	select {
	case <-ctx.Done():
		logger.Info("client went away while logo generation was running")
		return
	case r := <-ch:
		if r.Err != nil {
			h.respondError(c, r.Err)
			return
		}
		fr = r.Val.(*flightResult)
	}

	result := h.resultOf(fr)
	if !ran {
		h.respond(c, input, result, true)
		return
	}
	h.respondKit(c, fr.kit, fr.saveErr, result.Accepted, false)
}

// StartJob queues an async generation job
// @Summary Start an async logo generation job
// @Tags logos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateLogoRequest true "Brand brief"
// @Success 202 {object} JobResponse
// @Failure 400 {object} middleware.APIError
// @Failure 429 {object} middleware.APIError
// @Failure 503 {object} middleware.APIError
// @Router /api/v1/logos/jobs [post]
func (h *LogoHandler) StartJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}
	if h.starter == nil || h.cache == nil {
		middleware.RespondError(c, http.StatusServiceUnavailable, middleware.ErrCodeAIServiceUnavailable, "async generation is not available")
		return
	}

	var req GenerateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}
	if err := req.Palette.Validate(); err != nil {
		middleware.InvalidRequest(c, err)
		return
	}
	if !h.checkQuota(c, userID) {
		return
	}

	ctx := c.Request.Context()
	input := models.GenerateLogoInput{
		JobID:  uuid.NewString(),
		UserID: userID,
		Brief:  req.brief(),
	}
	job := &models.Job{ID: input.JobID, UserID: userID, State: models.JobQueued}
	if err := h.cache.SetJob(ctx, job); err != nil {
		h.logger.Error("failed to store job", zap.Error(err))
		middleware.InternalError(c, "failed to queue job")
		return
	}
	if err := h.starter.Start(ctx, input); err != nil {
		h.logger.Error("failed to start logo job", zap.String("job_id", input.JobID), zap.Error(err))
		job.State = models.JobFailed
		job.Error = "could not start job"
		_ = h.cache.SetJob(ctx, job)
		middleware.RespondError(c, http.StatusServiceUnavailable, middleware.ErrCodeAIServiceUnavailable, "failed to start job")
		return
	}

	h.logger.Info("Logo job queued", zap.String("job_id", input.JobID), zap.String("user_id", userID.String()))
	c.JSON(http.StatusAccepted, JobResponse{
		JobID:     input.JobID,
		State:     models.JobQueued,
		StatusURL: "/api/v1/logos/jobs/" + input.JobID,
	})
}

// GetJob returns the status of an async job
// @Summary Get async job status
// @Tags logos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} middleware.APIError
// @Router /api/v1/logos/jobs/{id} [get]
func (h *LogoHandler) GetJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.Unauthorized(c, "unauthorized")
		return
	}
	if h.cache == nil {
		middleware.NotFound(c, "job not found")
		return
	}

	job, err := h.cache.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to load job", zap.Error(err))
		middleware.InternalError(c, "failed to load job")
		return
	}
	if job == nil || job.UserID != userID {
		middleware.NotFound(c, "job not found")
		return
	}
	c.JSON(http.StatusOK, job)
}

// run executes the pipeline once and caches a successful result.
func (h *LogoHandler) run(ctx context.Context, brief logo.Brief, fingerprint string, logger *zap.Logger) (*flightResult, error) {
	start := time.Now()
	res, err := h.generator.Generate(ctx, brief)
	elapsed := time.Since(start)
	metrics.GenerationDuration.Observe(elapsed.Seconds())

	if err != nil {
		outcome := models.OutcomeFailed
		var ge *logo.GenerationError
		if errors.As(err, &ge) && ge.Kind == logo.KindCanceled {
			outcome = models.OutcomeCanceled
		}
		metrics.Generations.WithLabelValues(string(outcome)).Inc()
		logger.Warn("logo generation failed", zap.Duration("duration", elapsed), zap.Error(err))
		return nil, err
	}

	outcome := models.OutcomeBestEffort
	if h.accepted(res) {
		outcome = models.OutcomeAccepted
	}
	metrics.Generations.WithLabelValues(string(outcome)).Inc()
	logger.Info("Logo generated",
		zap.Int("attempt", res.Attempt),
		zap.Float64("score", res.Quality.Score),
		zap.Duration("duration", elapsed),
	)

	if h.cache != nil {
		if err := h.cache.Put(ctx, fingerprint, res); err != nil {
			logger.Warn("failed to cache generation result", zap.Error(err))
		}
	}
	return &flightResult{result: res, duration: elapsed}, nil
}

func (h *LogoHandler) lookup(ctx context.Context, fingerprint string) *logo.AttemptResult {
	if h.cache == nil {
		return nil
	}
	res, err := h.cache.Get(ctx, fingerprint)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("result cache lookup failed", zap.Error(err))
		return nil
	case res == nil:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res
	}
}

// checkQuota writes a 429 and returns false when the user is over quota.
// Quota lookups that fail let the request through.
func (h *LogoHandler) checkQuota(c *gin.Context, userID uuid.UUID) bool {
	if h.quota == nil || h.dailyLimit <= 0 {
		return true
	}
	status, err := h.quota.CheckQuota(c.Request.Context(), userID, h.dailyLimit)
	if err != nil {
		h.logger.Warn("quota check failed, allowing request", zap.Error(err))
		return true
	}
	if !status.Allowed {
		middleware.QuotaExceeded(c, int(time.Until(status.ResetsAt).Milliseconds()))
		return false
	}
	return true
}

func (h *LogoHandler) accepted(res *logo.AttemptResult) bool {
	return res.Quality.Score >= h.generator.Config().QualityThreshold
}

func (h *LogoHandler) resultOf(fr *flightResult) models.GenerateLogoResult {
	return models.GenerateLogoResult{
		Result:     *fr.result,
		Accepted:   h.accepted(fr.result),
		DurationMs: fr.duration.Milliseconds(),
	}
}

// save stores the brand kit and its usage row.
func (h *LogoHandler) save(ctx context.Context, input models.GenerateLogoInput, result models.GenerateLogoResult, cached bool) (*models.BrandKit, error) {
	kit, _, err := h.recorder.Record(ctx, input, result, cached)
	if err != nil {
		h.logger.Error("failed to save brand kit", zap.Error(err))
	}
	return kit, err
}

func (h *LogoHandler) respond(c *gin.Context, input models.GenerateLogoInput, result models.GenerateLogoResult, cached bool) {
	kit, err := h.save(c.Request.Context(), input, result, cached)
	h.respondKit(c, kit, err, result.Accepted, cached)
}

func (h *LogoHandler) respondKit(c *gin.Context, kit *models.BrandKit, err error, accepted, cached bool) {
	if err != nil {
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to save brand kit")
		return
	}
	c.JSON(http.StatusCreated, GenerateLogoResponse{
		BrandKit: kit,
		Accepted: accepted,
		Cached:   cached,
	})
}

func (h *LogoHandler) markFailed(ctx context.Context, input models.GenerateLogoInput, err error) {
	msg := "failed to generate logo"
	var ge *logo.GenerationError
	if errors.As(err, &ge) {
		msg = ge.Message
	}
	_ = h.recorder.MarkFailed(ctx, orchestration.FailureInput{
		UserID:       input.UserID,
		BusinessName: input.Brief.BusinessName,
		Message:      msg,
	})
}

func (h *LogoHandler) respondError(c *gin.Context, err error) {
	var ge *logo.GenerationError
	switch {
	case errors.Is(err, completion.ErrCircuitOpen), errors.Is(err, completion.ErrUnauthorized):
		middleware.AIServiceUnavailable(c)
	case errors.As(err, &ge):
		middleware.GenerationFailed(c, ge.Message)
	default:
		h.logger.Error("unexpected generation error", zap.Error(err))
		middleware.InternalError(c, "failed to generate logo")
	}
}
