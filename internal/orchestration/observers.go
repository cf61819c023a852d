package orchestration

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/metrics"
)

// HeartbeatObserver reports pipeline progress to Temporal while the
// GenerateLogo activity runs. Outside an activity it does nothing.
var HeartbeatObserver = logo.ObserverFunc(func(ctx context.Context, o logo.AttemptOutcome) {
	if activity.IsActivity(ctx) {
		activity.RecordHeartbeat(ctx, o.Attempt)
	}
})

const heartbeatEvery = 30 * time.Second

// heartbeatInterval is a third of the activity's HeartbeatTimeout, at most heartbeatEvery.
func heartbeatInterval(ctx context.Context) time.Duration {
	if !activity.IsActivity(ctx) {
		return heartbeatEvery
	}
	if t := activity.GetInfo(ctx).HeartbeatTimeout; t > 0 && t/3 < heartbeatEvery {
		return t / 3
	}
	return heartbeatEvery
}

func recordHeartbeat(ctx context.Context) {
	if activity.IsActivity(ctx) {
		activity.RecordHeartbeat(ctx)
	}
}

// keepAlive calls beat every interval until stop is called. One completion
// call with transport retries can outlast HeartbeatTimeout on its own.
func keepAlive(ctx context.Context, interval time.Duration, beat func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				beat(ctx)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// MetricsObserver counts attempts by outcome and stage and observes review scores.
var MetricsObserver = logo.ObserverFunc(func(_ context.Context, o logo.AttemptOutcome) {
	if !o.Completed() {
		metrics.Attempts.WithLabelValues("abandoned", string(o.Stage)).Inc()
		return
	}
	metrics.Attempts.WithLabelValues("completed", string(o.Stage)).Inc()
	metrics.QualityScores.Observe(o.Result.Quality.Score)
})
