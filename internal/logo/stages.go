package logo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
)

// stageParams are the decoding controls of one stage's completion call.
type stageParams struct {
	tier        completion.Tier
	temperature float64
	maxTokens   int
}

var (
	templateParams  = stageParams{tier: completion.TierReasoning, temperature: 0.9, maxTokens: 1500}
	synthesisParams = stageParams{tier: completion.TierFast, temperature: 0.2, maxTokens: 2000}
	refineParams    = stageParams{tier: completion.TierFast, temperature: 0.5, maxTokens: 2000}
	reviewParams    = stageParams{tier: completion.TierFast, temperature: 0.4, maxTokens: 400}
)

func (p *Pipeline) call(ctx context.Context, sp stageParams, system, user string) (string, error) {
	return p.client.Complete(ctx, completion.Request{
		Tier: sp.tier,
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: system},
			{Role: completion.RoleUser, Content: user},
		},
		Temperature: sp.temperature,
		MaxTokens:   sp.maxTokens,
	})
}

// expandTemplate turns the brief into a three-layer design specification.
// A response without section markers is Degraded, not an error.
func (p *Pipeline) expandTemplate(ctx context.Context, b Brief) (SpecParse, error) {
	ctx, span := tracer.Start(ctx, "logo.expandTemplate")
	defer span.End()

	raw, err := p.call(ctx, templateParams, templateSystemPrompt, templateUserPrompt(b))
	if err != nil {
		return SpecParse{}, &StageError{Stage: StageTemplating, Err: err}
	}
	return ParseDesignSpecification(raw), nil
}

// synthesize writes SVG markup for the specification. The markup is not
// validated here.
func (p *Pipeline) synthesize(ctx context.Context, spec DesignSpecification, palette ColorPalette) (string, error) {
	ctx, span := tracer.Start(ctx, "logo.synthesize")
	defer span.End()

	raw, err := p.call(ctx, synthesisParams, synthesisSystemPrompt, synthesisUserPrompt(spec, palette))
	if err != nil {
		return "", &StageError{Stage: StageSynthesizing, Err: err}
	}
	markup, ok := ExtractSVG(raw)
	if !ok {
		return "", &StageError{Stage: StageSynthesizing, Err: ErrNoMarkup}
	}
	return markup, nil
}

// refine asks for a critiqued, improved version of markup. Any failure
// returns markup unchanged.
func (p *Pipeline) refine(ctx context.Context, markup, brief string, iteration, total int) string {
	ctx, span := tracer.Start(ctx, "logo.refine")
	defer span.End()

	raw, err := p.call(ctx, refineParams, refineSystemPrompt, refineUserPrompt(markup, brief, iteration, total))
	if err != nil {
		p.logger.Debug("refinement call failed, keeping current markup",
			zap.Int("iteration", iteration), zap.Error(err))
		return markup
	}
	improved, ok := ExtractSVG(raw)
	if !ok {
		p.logger.Debug("refinement response held no markup, keeping current markup",
			zap.Int("iteration", iteration))
		return markup
	}
	return improved
}

// review scores the final markup. Failures yield the default score.
func (p *Pipeline) review(ctx context.Context, markup, businessName string) QualityScore {
	ctx, span := tracer.Start(ctx, "logo.review")
	defer span.End()

	raw, err := p.call(ctx, reviewParams, reviewSystemPrompt, reviewUserPrompt(markup, businessName))
	if err != nil {
		p.logger.Debug("review call failed, using default score", zap.Error(err))
		return QualityScore{Score: DefaultQuality, Feedback: "unavailable"}
	}
	q, ok := ParseReview(raw)
	if !ok {
		p.logger.Debug("review score unparseable, using default score",
			zap.String("response", fmt.Sprintf("%.120s", raw)))
	}
	return q
}
