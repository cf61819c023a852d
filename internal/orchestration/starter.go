package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

// TemporalStarter starts GenerateLogoWorkflow executions.
type TemporalStarter struct {
	client client.Client
}

// NewTemporalStarter creates a starter backed by a Temporal client.
func NewTemporalStarter(c client.Client) *TemporalStarter {
	return &TemporalStarter{client: c}
}

// Start launches the workflow with the job id as workflow id.
func (s *TemporalStarter) Start(ctx context.Context, in models.GenerateLogoInput) error {
	opts := client.StartWorkflowOptions{
		ID:        "logo-" + in.JobID,
		TaskQueue: TaskQueue,
	}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, GenerateLogoWorkflow, in); err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	return nil
}

// InlineStarter runs jobs on goroutines in this process.
type InlineStarter struct {
	activities *Activities
	timeout    time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	stopping bool
}

// NewInlineStarter creates a starter that runs each job with the given timeout.
func NewInlineStarter(a *Activities, timeout time.Duration, logger *zap.Logger) *InlineStarter {
	return &InlineStarter{activities: a, timeout: timeout, logger: logger}
}

// Start runs the job in the background. It does not wait for it.
func (s *InlineStarter) Start(_ context.Context, in models.GenerateLogoInput) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return fmt.Errorf("job runner is shutting down")
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		out, err := s.activities.RunInline(ctx, in)
		if err != nil {
			s.logger.Warn("inline logo job failed", zap.String("job_id", in.JobID), zap.Error(err))
			return
		}
		s.logger.Info("inline logo job finished",
			zap.String("job_id", in.JobID),
			zap.String("brand_kit_id", out.BrandKitID.String()),
			zap.Float64("score", out.Score),
		)
	}()
	return nil
}

// Wait blocks new jobs and waits for running ones, or for ctx to end.
func (s *InlineStarter) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
