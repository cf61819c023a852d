// Package logo generates vector symbol marks through a multi-stage,
// quality-gated completion pipeline: template expansion, SVG synthesis,
// refinement and review, retried under a bounded attempt budget.
package logo

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
)

var tracer = otel.Tracer("github.com/renatodap/brandkit-generator-sub000/internal/logo")

const (
	DefaultQualityThreshold     = 8.0
	DefaultMaxAttempts          = 5
	DefaultRefinementIterations = 2

	// NoRefinement as Config.RefinementIterations skips the refinement stage.
	NoRefinement = -1
)

// Config holds the pipeline's tuning knobs.
type Config struct {
	// QualityThreshold is the score at which an attempt is accepted at once.
	QualityThreshold float64
	// MaxAttempts bounds the number of full attempts.
	MaxAttempts int
	// RefinementIterations is the number of critique-and-improve calls per
	// attempt. Zero takes the default; NoRefinement (any negative value) turns
	// refinement off.
	RefinementIterations int
	// Timeout bounds a whole Generate call. Zero means no deadline beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns threshold 8.0, 5 attempts and 2 refinement iterations.
func DefaultConfig() Config {
	return Config{
		QualityThreshold:     DefaultQualityThreshold,
		MaxAttempts:          DefaultMaxAttempts,
		RefinementIterations: DefaultRefinementIterations,
	}
}

func (c Config) withDefaults() Config {
	if c.QualityThreshold <= 0 {
		c.QualityThreshold = DefaultQualityThreshold
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	switch {
	case c.RefinementIterations == 0:
		c.RefinementIterations = DefaultRefinementIterations
	case c.RefinementIterations < 0:
		c.RefinementIterations = 0
	}
	return c
}

// AttemptOutcome is the typed result of one attempt: either Completed with a
// Result, or Abandoned at Stage for Reason.
type AttemptOutcome struct {
	Attempt  int
	Result   *AttemptResult
	Stage    Stage
	Reason   error
	Duration time.Duration
}

// Completed reports whether the attempt produced a result.
func (o AttemptOutcome) Completed() bool {
	return o.Result != nil
}

// Observer is told about every finished attempt.
type Observer interface {
	AttemptFinished(ctx context.Context, o AttemptOutcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o AttemptOutcome)

// AttemptFinished calls f.
func (f ObserverFunc) AttemptFinished(ctx context.Context, o AttemptOutcome) {
	f(ctx, o)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithObserver adds an attempt observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

// Pipeline runs logo generation attempts against a completion client.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	client    completion.Client
	cfg       Config
	logger    *zap.Logger
	observers []Observer
}

// NewPipeline creates a pipeline. Zero or negative threshold and attempt
// budget, and zero refinement iterations, take their defaults.
func NewPipeline(client completion.Client, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		client: client,
		cfg:    cfg.withDefaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Generate runs attempts until one scores at least the quality threshold or
// the budget is spent, and returns the best completed attempt. It fails only
// with a *GenerationError, when no attempt completed. A credentials rejection
// ends the run at once.
func (p *Pipeline) Generate(ctx context.Context, b Brief) (*AttemptResult, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	ctx, span := tracer.Start(ctx, "logo.Generate")
	defer span.End()

	logger := p.logger.With(zap.String("business", b.BusinessName))

	var (
		best *AttemptResult
		last AttemptOutcome
		runs int
	)
	for attempt := 1; attempt <= p.cfg.MaxAttempts && ctx.Err() == nil; attempt++ {
		outcome := p.runAttempt(ctx, b, attempt)
		runs++
		last = outcome
		p.notify(ctx, outcome)

		if !outcome.Completed() {
			logger.Warn("attempt abandoned",
				zap.Int("attempt", attempt),
				zap.String("stage", string(outcome.Stage)),
				zap.Error(outcome.Reason),
			)
			if errors.Is(outcome.Reason, completion.ErrUnauthorized) {
				break
			}
			continue
		}

		best = pickBest(best, outcome)
		logger.Info("attempt completed",
			zap.Int("attempt", attempt),
			zap.Float64("score", outcome.Result.Quality.Score),
			zap.Bool("refined", outcome.Result.Refined),
			zap.Duration("duration", outcome.Duration),
		)
		if outcome.Result.Quality.Score >= p.cfg.QualityThreshold {
			span.SetAttributes(attribute.Int("logo.attempts", runs), attribute.Bool("logo.accepted", true))
			return outcome.Result, nil
		}
	}

	span.SetAttributes(attribute.Int("logo.attempts", runs), attribute.Bool("logo.accepted", false))
	if best != nil {
		logger.Info("attempts exhausted, returning best",
			zap.Int("attempt", best.Attempt),
			zap.Float64("score", best.Quality.Score),
		)
		return best, nil
	}

	if errors.Is(last.Reason, completion.ErrUnauthorized) {
		logger.Error("completion service rejected credentials", zap.Int("attempts", runs), zap.Error(last.Reason))
		return nil, &GenerationError{
			Kind:     KindConfiguration,
			Message:  "logo generation service is not configured correctly",
			Attempts: runs,
			Cause:    last.Reason,
		}
	}
	if err := ctx.Err(); err != nil {
		logger.Error("generation canceled before any attempt completed", zap.Int("attempts", runs), zap.Error(err))
		return nil, &GenerationError{
			Kind:     KindCanceled,
			Message:  "logo generation was canceled",
			Attempts: runs,
			Cause:    err,
		}
	}
	logger.Error("every logo attempt failed", zap.Int("attempts", runs), zap.Error(last.Reason))
	return nil, &GenerationError{
		Kind:     KindExhaustion,
		Message:  "failed to generate logo",
		Attempts: runs,
		Cause:    last.Reason,
	}
}

// pickBest folds one outcome into the best result so far. Ties keep the
// earlier attempt.
func pickBest(best *AttemptResult, o AttemptOutcome) *AttemptResult {
	if !o.Completed() {
		return best
	}
	if best == nil || o.Result.Quality.Score > best.Quality.Score {
		return o.Result
	}
	return best
}

// runAttempt drives one attempt through the state chain:
// Templating, Synthesizing, ValidatingCode, Refining, ValidatingRefined, Reviewing.
func (p *Pipeline) runAttempt(ctx context.Context, b Brief, attempt int) AttemptOutcome {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "logo.attempt")
	span.SetAttributes(attribute.Int("logo.attempt", attempt))
	defer span.End()

	abandon := func(stage Stage, err error) AttemptOutcome {
		span.RecordError(err)
		return AttemptOutcome{Attempt: attempt, Stage: stage, Reason: err, Duration: time.Since(start)}
	}

	parsed, err := p.expandTemplate(ctx, b)
	if err != nil {
		return abandon(StageTemplating, err)
	}
	if parsed.Status == Degraded {
		p.logger.Debug("template response had no section markers", zap.Int("attempt", attempt))
	}

	markup, err := p.synthesize(ctx, parsed.Spec, b.Palette)
	if err != nil {
		return abandon(StageSynthesizing, err)
	}
	if err := Validate(markup); err != nil {
		return abandon(StageValidatingCode, err)
	}
	candidate := Candidate{SVGMarkup: markup}

	refined := markup
	brief := b.short()
	for i := 1; i <= p.cfg.RefinementIterations; i++ {
		refined = p.refine(ctx, refined, brief, i, p.cfg.RefinementIterations)
	}
	if ctx.Err() != nil {
		return abandon(StageRefining, ctx.Err())
	}
	didRefine := refined != markup
	if didRefine {
		if err := Validate(refined); err != nil {
			p.logger.Debug("refined markup invalid, keeping synthesized candidate",
				zap.Int("attempt", attempt), zap.Error(err))
			didRefine = false
		} else {
			candidate = Candidate{SVGMarkup: refined}
		}
	}

	quality := p.review(ctx, candidate.SVGMarkup, b.BusinessName)
	if ctx.Err() != nil {
		return abandon(StageReviewing, ctx.Err())
	}

	return AttemptOutcome{
		Attempt: attempt,
		Stage:   StageRecorded,
		Result: &AttemptResult{
			Candidate: candidate,
			Template:  parsed.Spec,
			Quality:   quality,
			Attempt:   attempt,
			Refined:   didRefine,
		},
		Duration: time.Since(start),
	}
}

func (p *Pipeline) notify(ctx context.Context, o AttemptOutcome) {
	for _, obs := range p.observers {
		obs.AttemptFinished(ctx, o)
	}
}

// IsExhausted reports whether err is a GenerationError of kind exhaustion.
func IsExhausted(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == KindExhaustion
}
