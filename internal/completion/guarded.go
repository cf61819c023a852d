package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/renatodap/brandkit-generator-sub000/internal/metrics"
)

var tracer = otel.Tracer("github.com/renatodap/brandkit-generator-sub000/internal/completion")

// Guarded decorates a Client with a circuit breaker, a client-side rate
// limit, metrics and tracing. It never retries.
type Guarded struct {
	next    Client
	breaker *Breaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGuarded wraps next. A nil breaker or limiter disables that guard.
func NewGuarded(next Client, breaker *Breaker, limiter *rate.Limiter, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guarded{next: next, breaker: breaker, limiter: limiter, logger: logger}
}

// Breaker exposes the breaker for health reporting and HTTP middleware.
func (g *Guarded) Breaker() *Breaker {
	return g.breaker
}

// Complete runs one guarded completion call.
func (g *Guarded) Complete(ctx context.Context, req Request) (string, error) {
	tier := string(req.Tier)
	ctx, span := tracer.Start(ctx, "completion.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("completion.tier", tier),
		attribute.Float64("completion.temperature", req.Temperature),
		attribute.Int("completion.max_tokens", req.MaxTokens),
	)

	if g.breaker != nil && !g.breaker.Allow() {
		metrics.CompletionCalls.WithLabelValues(tier, "rejected").Inc()
		span.SetStatus(codes.Error, "circuit open")
		return "", ErrCircuitOpen
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			metrics.CompletionCalls.WithLabelValues(tier, "rejected").Inc()
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	text, err := g.next.Complete(ctx, req)
	metrics.CompletionLatency.WithLabelValues(tier).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CompletionCalls.WithLabelValues(tier, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Caller cancellation says nothing about the service's health.
		if g.breaker != nil && !errors.Is(err, context.Canceled) {
			g.breaker.RecordFailure()
		}
		g.logger.Warn("completion call failed", zap.String("tier", tier), zap.Error(err))
		return "", err
	}

	metrics.CompletionCalls.WithLabelValues(tier, "ok").Inc()
	if g.breaker != nil {
		g.breaker.RecordSuccess()
	}
	span.SetAttributes(attribute.Int("completion.response_len", len(text)))
	return text, nil
}
