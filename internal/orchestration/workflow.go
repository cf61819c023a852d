package orchestration

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

// generationErrorType is the application error type of a pipeline
// GenerationError. Temporal never retries it.
const generationErrorType = "GenerationError"

// GenerateLogoWorkflow runs the pipeline once, then stores the brand kit or
// records the failure.
func GenerateLogoWorkflow(ctx workflow.Context, in models.GenerateLogoInput) (*models.GenerateLogoOutput, error) {
	logger := workflow.GetLogger(ctx)

	generateCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			MaximumAttempts:        2,
			NonRetryableErrorTypes: []string{generationErrorType},
		},
	})
	bookkeepingCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	})

	var a *Activities

	var result models.GenerateLogoResult
	err := workflow.ExecuteActivity(generateCtx, a.GenerateLogo, in).Get(ctx, &result)
	if err != nil {
		logger.Error("Logo generation failed", "job_id", in.JobID, "error", err)
		failure := FailureInput{JobID: in.JobID, UserID: in.UserID, BusinessName: in.Brief.BusinessName, Message: publicMessage(err)}
		if ferr := workflow.ExecuteActivity(bookkeepingCtx, a.MarkFailed, failure).Get(ctx, nil); ferr != nil {
			logger.Error("Failed to record generation failure", "job_id", in.JobID, "error", ferr)
		}
		return nil, err
	}

	var out models.GenerateLogoOutput
	save := SaveInput{Input: in, Result: result}
	if err := workflow.ExecuteActivity(bookkeepingCtx, a.SaveBrandKit, save).Get(ctx, &out); err != nil {
		return nil, err
	}

	logger.Info("Logo generation workflow finished", "job_id", in.JobID, "brand_kit_id", out.BrandKitID.String(), "score", out.Score)
	return &out, nil
}

// publicMessage keeps application error messages and hides everything else.
func publicMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == generationErrorType {
		return appErr.Message()
	}
	return "failed to generate logo"
}
