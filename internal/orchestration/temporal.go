// Package orchestration runs logo generation as a durable Temporal workflow.
package orchestration

import (
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

// TaskQueue is the queue the logo worker polls.
const TaskQueue = "brandkit-logo-generation"

// InitTemporalClient dials the Temporal frontend. The client is a heavyweight
// object that should be created once per process.
func InitTemporalClient(address string, logger *zap.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort: address,
		Logger:   newLogAdapter(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Temporal client: %w", err)
	}
	return c, nil
}

// StartWorker registers the workflow and activities and starts polling.
// Stop the returned worker on shutdown.
func StartWorker(c client.Client, activities *Activities) (worker.Worker, error) {
	w := worker.New(c, TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 4,
	})
	w.RegisterWorkflow(GenerateLogoWorkflow)
	w.RegisterActivityWithOptions(activities, activity.RegisterOptions{SkipInvalidStructFunctions: true})

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("start temporal worker: %w", err)
	}
	return w, nil
}

// logAdapter routes Temporal SDK logs through zap.
type logAdapter struct {
	l *zap.SugaredLogger
}

func newLogAdapter(logger *zap.Logger) *logAdapter {
	return &logAdapter{l: logger.Named("temporal").Sugar()}
}

func (a *logAdapter) Debug(msg string, keyvals ...interface{}) { a.l.Debugw(msg, keyvals...) }
func (a *logAdapter) Info(msg string, keyvals ...interface{})  { a.l.Infow(msg, keyvals...) }
func (a *logAdapter) Warn(msg string, keyvals ...interface{})  { a.l.Warnw(msg, keyvals...) }
func (a *logAdapter) Error(msg string, keyvals ...interface{}) { a.l.Errorw(msg, keyvals...) }
