package orchestration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/eventbus"
	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

// Generator runs the logo pipeline. *logo.Pipeline implements it.
type Generator interface {
	Generate(ctx context.Context, b logo.Brief) (*logo.AttemptResult, error)
	Config() logo.Config
}

// BrandKitStore persists brand kits.
type BrandKitStore interface {
	Save(ctx context.Context, kit *models.BrandKit) error
}

// JobStore records async job status.
type JobStore interface {
	SetJob(ctx context.Context, job *models.Job) error
}

// UsageRecorder logs generation runs against the user's quota.
type UsageRecorder interface {
	RecordGeneration(ctx context.Context, entry *models.GenerationLog) error
}

// EventPublisher announces finished generations.
type EventPublisher interface {
	PublishGenerated(ctx context.Context, ev eventbus.GenerationEvent) error
	PublishFailed(ctx context.Context, ev eventbus.GenerationEvent) error
}

// SaveInput is the SaveBrandKit activity argument
type SaveInput struct {
	Input  models.GenerateLogoInput  `json:"input"`
	Result models.GenerateLogoResult `json:"result"`
}

// FailureInput is the MarkFailed activity argument
type FailureInput struct {
	JobID        string    `json:"job_id"`
	UserID       uuid.UUID `json:"user_id"`
	BusinessName string    `json:"business_name"`
	Message      string    `json:"message"`
}

// Activities holds the dependencies of the generation activities.
type Activities struct {
	Generator Generator
	Store     BrandKitStore
	Jobs      JobStore
	Usage     UsageRecorder
	Events    EventPublisher
	Logger    *zap.Logger
}

// GenerateLogo runs the pipeline. A pipeline GenerationError is returned as
// a non-retryable application error.
func (a *Activities) GenerateLogo(ctx context.Context, in models.GenerateLogoInput) (*models.GenerateLogoResult, error) {
	a.setJob(ctx, &models.Job{ID: in.JobID, UserID: in.UserID, State: models.JobRunning})

	stop := keepAlive(ctx, heartbeatInterval(ctx), recordHeartbeat)
	defer stop()

	start := time.Now()
	res, err := a.Generator.Generate(ctx, in.Brief)
	if err != nil {
		var ge *logo.GenerationError
		if errors.As(err, &ge) {
			return nil, temporal.NewNonRetryableApplicationError(ge.Message, generationErrorType, err, string(ge.Kind), ge.Attempts)
		}
		return nil, err
	}

	return &models.GenerateLogoResult{
		Result:     *res,
		Accepted:   res.Quality.Score >= a.Generator.Config().QualityThreshold,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// SaveBrandKit stores the result, records usage, publishes the event and
// marks the job succeeded.
func (a *Activities) SaveBrandKit(ctx context.Context, in SaveInput) (*models.GenerateLogoOutput, error) {
	_, out, err := a.Record(ctx, in.Input, in.Result, false)
	return out, err
}

// Record persists a pipeline result as a brand kit for the input's user and
// does the bookkeeping around it. cached marks results served from the
// result cache; they do not count against the quota.
func (a *Activities) Record(ctx context.Context, in models.GenerateLogoInput, result models.GenerateLogoResult, cached bool) (*models.BrandKit, *models.GenerateLogoOutput, error) {
	res := result.Result
	kit := models.NewBrandKit(in.UserID, in.Brief, &res)
	if err := a.Store.Save(ctx, kit); err != nil {
		return nil, nil, err
	}

	outcome := models.OutcomeBestEffort
	attempts := a.Generator.Config().MaxAttempts
	if result.Accepted {
		outcome = models.OutcomeAccepted
		attempts = res.Attempt
	}
	if cached {
		attempts = 0
	}
	score := res.Quality.Score

	if a.Usage != nil {
		entry := &models.GenerationLog{
			UserID:       in.UserID,
			BrandKitID:   &kit.ID,
			Outcome:      outcome,
			Attempts:     attempts,
			QualityScore: &score,
			DurationMs:   result.DurationMs,
			Cached:       cached,
		}
		if err := a.Usage.RecordGeneration(ctx, entry); err != nil {
			a.logger().Warn("failed to record generation usage", zap.Error(err))
		}
	}
	if a.Events != nil {
		ev := eventbus.GenerationEvent{
			UserID:       in.UserID,
			BrandKitID:   &kit.ID,
			BusinessName: kit.BusinessName,
			Score:        score,
			Attempts:     attempts,
			Cached:       cached,
		}
		if err := a.Events.PublishGenerated(ctx, ev); err != nil {
			a.logger().Warn("failed to publish generation event", zap.Error(err))
		}
	}
	a.setJob(ctx, &models.Job{ID: in.JobID, UserID: in.UserID, State: models.JobSucceeded, BrandKitID: &kit.ID})

	return kit, &models.GenerateLogoOutput{
		JobID:      in.JobID,
		BrandKitID: kit.ID,
		Outcome:    outcome,
		Score:      score,
		Attempts:   attempts,
	}, nil
}

// MarkFailed records a run that produced no logo.
func (a *Activities) MarkFailed(ctx context.Context, in FailureInput) error {
	if a.Usage != nil {
		entry := &models.GenerationLog{
			UserID:   in.UserID,
			Outcome:  models.OutcomeFailed,
			Attempts: a.Generator.Config().MaxAttempts,
		}
		if err := a.Usage.RecordGeneration(ctx, entry); err != nil {
			a.logger().Warn("failed to record generation usage", zap.Error(err))
		}
	}
	if a.Events != nil {
		ev := eventbus.GenerationEvent{UserID: in.UserID, BusinessName: in.BusinessName, Error: in.Message}
		if err := a.Events.PublishFailed(ctx, ev); err != nil {
			a.logger().Warn("failed to publish failure event", zap.Error(err))
		}
	}
	a.setJob(ctx, &models.Job{ID: in.JobID, UserID: in.UserID, State: models.JobFailed, Error: in.Message})
	return nil
}

// RunInline performs the workflow's steps in-process, for deployments
// without a Temporal frontend.
func (a *Activities) RunInline(ctx context.Context, in models.GenerateLogoInput) (*models.GenerateLogoOutput, error) {
	result, err := a.GenerateLogo(ctx, in)
	if err != nil {
		msg := "failed to generate logo"
		var ge *logo.GenerationError
		if errors.As(err, &ge) {
			msg = ge.Message
		}
		_ = a.MarkFailed(context.WithoutCancel(ctx), FailureInput{JobID: in.JobID, UserID: in.UserID, BusinessName: in.Brief.BusinessName, Message: msg})
		return nil, err
	}
	return a.SaveBrandKit(ctx, SaveInput{Input: in, Result: *result})
}

func (a *Activities) setJob(ctx context.Context, job *models.Job) {
	if a.Jobs == nil || job.ID == "" {
		return
	}
	if err := a.Jobs.SetJob(ctx, job); err != nil {
		a.logger().Warn("failed to update job status", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (a *Activities) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
