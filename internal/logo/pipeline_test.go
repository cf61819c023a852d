package logo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	goodSVG    = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><circle cx="100" cy="100" r="60" fill="#1A2B3C"/><rect x="70" y="70" width="60" height="60" fill="#F5A623"/></svg>`
	refinedSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><circle cx="100" cy="100" r="70" fill="#1A2B3C"/><polygon points="100,40 150,150 50,150" fill="#F5A623"/></svg>`
	textSVG    = `<svg viewBox="0 0 200 200"><text x="10" y="10">AC</text><rect/><rect/></svg>`
	templateOK = "SCENE LEVEL: a rising sun\nOBJECT LEVEL: circle and rays\nLAYOUT LEVEL: centered"
)

// scriptedClient answers by stage, recognised from the system prompt.
type scriptedClient struct {
	mu       sync.Mutex
	calls    map[string]int
	requests []completion.Request

	template  func(n int) (string, error)
	synthesis func(n int) (string, error)
	refine    func(n int) (string, error)
	review    func(n int) (string, error)
}

func newScripted() *scriptedClient {
	return &scriptedClient{
		calls:     map[string]int{},
		template:  func(int) (string, error) { return templateOK, nil },
		synthesis: func(int) (string, error) { return goodSVG, nil },
		refine:    func(int) (string, error) { return "Better balance.\n" + refinedSVG, nil },
		review:    func(int) (string, error) { return "SCORE: 8.5\nFEEDBACK: strong", nil },
	}
}

func (c *scriptedClient) Complete(ctx context.Context, req completion.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stage, fn := c.route(req.Messages[0].Content)

	c.mu.Lock()
	c.calls[stage]++
	n := c.calls[stage]
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	return fn(n)
}

func (c *scriptedClient) route(system string) (string, func(int) (string, error)) {
	switch system {
	case templateSystemPrompt:
		return "template", c.template
	case synthesisSystemPrompt:
		return "synthesis", c.synthesis
	case refineSystemPrompt:
		return "refine", c.refine
	case reviewSystemPrompt:
		return "review", c.review
	}
	panic("unexpected system prompt")
}

func (c *scriptedClient) count(stage string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[stage]
}

func testBrief() Brief {
	return Brief{
		BusinessName: "Acme Cloud",
		Description:  "Managed cloud hosting for small teams",
		Industry:     "technology",
		Symbols:      SymbolSet{Primary: "cloud", Secondary: "shield", Mood: "trustworthy"},
		Palette:      ColorPalette{Primary: "#1A2B3C", Secondary: "#FFFFFF", Accent: "#F5A623"},
	}
}

func scores(values ...float64) func(int) (string, error) {
	return func(n int) (string, error) {
		return fmt.Sprintf("SCORE: %.1f\nFEEDBACK: attempt %d", values[n-1], n), nil
	}
}

func TestGenerateAcceptsFirstAttemptAboveThreshold(t *testing.T) {
	client := newScripted()
	client.review = scores(9.0)

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, 9.0, res.Quality.Score)
	assert.True(t, res.Refined)
	assert.Equal(t, refinedSVG, res.Candidate.SVGMarkup)
	assert.Equal(t, "a rising sun", res.Template.SceneLevel)

	assert.Equal(t, 1, client.count("template"))
	assert.Equal(t, 1, client.count("synthesis"))
	assert.Equal(t, DefaultRefinementIterations, client.count("refine"))
	assert.Equal(t, 1, client.count("review"))
}

func TestGenerateReturnsBestOfN(t *testing.T) {
	client := newScripted()
	client.review = scores(6.0, 7.5, 6.5)

	p := NewPipeline(client, Config{QualityThreshold: 8.0, MaxAttempts: 3, RefinementIterations: 1})
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt)
	assert.Equal(t, 7.5, res.Quality.Score)
	assert.Equal(t, 3, client.count("template"))
	assert.Equal(t, 3, client.count("review"))
}

func TestGenerateTieKeepsEarliest(t *testing.T) {
	client := newScripted()
	client.review = scores(7.0, 7.0)

	p := NewPipeline(client, Config{MaxAttempts: 2, RefinementIterations: NoRefinement})
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, 0, client.count("refine"))
	assert.False(t, res.Refined)
}

func TestGenerateRefinementFailureFallsBack(t *testing.T) {
	client := newScripted()
	client.refine = func(int) (string, error) { return "", errors.New("upstream 500") }
	client.review = scores(9.0)

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.False(t, res.Refined)
	assert.Equal(t, goodSVG, res.Candidate.SVGMarkup)
	assert.Equal(t, DefaultRefinementIterations, client.count("refine"))
}

func TestGenerateInvalidRefinementFallsBack(t *testing.T) {
	client := newScripted()
	client.refine = func(int) (string, error) { return textSVG, nil }
	client.review = scores(9.0)

	p := NewPipeline(client, Config{RefinementIterations: 1})
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.False(t, res.Refined)
	assert.Equal(t, goodSVG, res.Candidate.SVGMarkup)
}

func TestGenerateRefinementWithoutMarkupFallsBack(t *testing.T) {
	client := newScripted()
	client.refine = func(int) (string, error) {
		return "The mark already reads well at small sizes; I would keep it as is.", nil
	}
	client.review = scores(9.0)

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.False(t, res.Refined)
	assert.Equal(t, goodSVG, res.Candidate.SVGMarkup)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, 1, client.count("template"), "a prose-only refinement does not cost an attempt")
	assert.Equal(t, DefaultRefinementIterations, client.count("refine"))
}

func TestSynthesizedAndRefinedMarkupPassValidation(t *testing.T) {
	fenced := func(svg string) string {
		return "Here is the logo:\n```svg\n" + svg + "\n```\nLet me know if you want changes."
	}
	outputs := map[string]string{
		"synthesis":         goodSVG,
		"refinement":        "Better balance.\n" + refinedSVG,
		"fenced synthesis":  fenced(goodSVG),
		"fenced refinement": fenced(refinedSVG),
	}
	for name, raw := range outputs {
		t.Run(name, func(t *testing.T) {
			markup, ok := ExtractSVG(raw)
			require.True(t, ok)
			require.NoError(t, Validate(markup))
			assert.Contains(t, markup, `viewBox="0 0 200 200"`)
			n := CountShapes(markup)
			assert.GreaterOrEqual(t, n, 2)
			assert.LessOrEqual(t, n, 8)
		})
	}

	client := newScripted()
	client.synthesis = func(int) (string, error) { return fenced(goodSVG), nil }
	client.refine = func(int) (string, error) { return fenced(refinedSVG), nil }
	client.review = scores(9.0)

	res, err := NewPipeline(client, DefaultConfig()).Generate(context.Background(), testBrief())
	require.NoError(t, err)
	assert.True(t, res.Refined)
	assert.Equal(t, refinedSVG, res.Candidate.SVGMarkup)
	assert.NoError(t, Validate(res.Candidate.SVGMarkup))
}

func TestGenerateReviewFailureUsesDefaultScore(t *testing.T) {
	client := newScripted()
	client.review = func(int) (string, error) { return "", errors.New("timeout") }

	p := NewPipeline(client, Config{MaxAttempts: 2, RefinementIterations: 1})
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, DefaultQuality, res.Quality.Score)
	assert.Equal(t, "unavailable", res.Quality.Feedback)
	assert.Equal(t, 2, client.count("review"), "default score is below threshold so all attempts run")
}

func TestGenerateSkipsInvalidAttempts(t *testing.T) {
	client := newScripted()
	client.synthesis = func(n int) (string, error) {
		if n == 1 {
			return textSVG, nil
		}
		return goodSVG, nil
	}
	client.review = scores(8.0)

	var outcomes []AttemptOutcome
	obs := ObserverFunc(func(_ context.Context, o AttemptOutcome) { outcomes = append(outcomes, o) })

	p := NewPipeline(client, Config{MaxAttempts: 3, RefinementIterations: 1}, WithObserver(obs))
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Completed())
	assert.Equal(t, StageValidatingCode, outcomes[0].Stage)
	assert.ErrorIs(t, outcomes[0].Reason, ErrInvalidMarkup)
	assert.True(t, outcomes[1].Completed())
	assert.Equal(t, 1, client.count("review"), "abandoned attempt is never reviewed")
}

func TestGenerateExhaustion(t *testing.T) {
	client := newScripted()
	client.synthesis = func(int) (string, error) { return "I'm sorry, I can't draw.", nil }

	p := NewPipeline(client, Config{MaxAttempts: 4})
	res, err := p.Generate(context.Background(), testBrief())

	require.Nil(t, res)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindExhaustion, ge.Kind)
	assert.Equal(t, 4, ge.Attempts)
	assert.Equal(t, "failed to generate logo", ge.Error())
	assert.ErrorIs(t, err, ErrNoMarkup)
	assert.True(t, IsExhausted(err))
	assert.Equal(t, 4, client.count("template"))
	assert.Equal(t, 0, client.count("refine"))
	assert.Equal(t, 0, client.count("review"))
}

func TestGenerateTemplateFailureAbandonsAttempt(t *testing.T) {
	client := newScripted()
	client.template = func(n int) (string, error) {
		if n == 1 {
			return "", completion.ErrEmptyResponse
		}
		return "no markers at all, just a circle", nil
	}
	client.review = scores(8.2)

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(context.Background(), testBrief())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt)
	assert.Equal(t, "no markers at all, just a circle", res.Template.SceneLevel)
}

func TestGenerateStopsOnRejectedCredentials(t *testing.T) {
	client := newScripted()
	client.template = func(int) (string, error) {
		return "", fmt.Errorf("%w: status 401", completion.ErrUnauthorized)
	}

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(context.Background(), testBrief())

	require.Nil(t, res)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindConfiguration, ge.Kind)
	assert.Equal(t, 1, ge.Attempts)
	assert.ErrorIs(t, err, completion.ErrUnauthorized)
	assert.Equal(t, 1, client.count("template"), "no further attempts after a credentials rejection")
	assert.False(t, IsExhausted(err))
}

func TestGenerateCanceledBeforeAnyAttempt(t *testing.T) {
	client := newScripted()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(client, DefaultConfig())
	_, err := p.Generate(ctx, testBrief())

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindCanceled, ge.Kind)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, client.count("template"))
}

func TestGenerateCancellationDuringAttempt(t *testing.T) {
	client := newScripted()
	ctx, cancel := context.WithCancel(context.Background())
	client.synthesis = func(int) (string, error) {
		cancel()
		return "", context.Canceled
	}

	p := NewPipeline(client, DefaultConfig())
	_, err := p.Generate(ctx, testBrief())

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindCanceled, ge.Kind)
	assert.Equal(t, 1, ge.Attempts)
	assert.Equal(t, 1, client.count("template"))
}

func TestGenerateCancellationKeepsCompletedBest(t *testing.T) {
	client := newScripted()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.review = func(n int) (string, error) {
		if n == 1 {
			return "SCORE: 6.0\nFEEDBACK: ok", nil
		}
		cancel()
		return "", context.Canceled
	}

	p := NewPipeline(client, DefaultConfig())
	res, err := p.Generate(ctx, testBrief())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, 2, client.count("template"))
}

func TestGenerateTimeout(t *testing.T) {
	client := newScripted()
	client.template = func(int) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return templateOK, nil
	}

	p := NewPipeline(client, Config{Timeout: 10 * time.Millisecond})
	_, err := p.Generate(context.Background(), testBrief())

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, KindCanceled, ge.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStageRequestParameters(t *testing.T) {
	client := newScripted()
	client.review = scores(9.5)

	p := NewPipeline(client, Config{RefinementIterations: 1})
	_, err := p.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	require.Len(t, client.requests, 4)
	want := []stageParams{templateParams, synthesisParams, refineParams, reviewParams}
	for i, req := range client.requests {
		assert.Equal(t, want[i].tier, req.Tier, "request %d tier", i)
		assert.Equal(t, want[i].temperature, req.Temperature, "request %d temperature", i)
		assert.Equal(t, want[i].maxTokens, req.MaxTokens, "request %d max tokens", i)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, completion.RoleSystem, req.Messages[0].Role)
		assert.Equal(t, completion.RoleUser, req.Messages[1].Role)
	}
	assert.Contains(t, client.requests[1].Messages[1].Content, "#F5A623")
	assert.Contains(t, client.requests[2].Messages[1].Content, "iteration 1 of 1")
}

func TestPickBest(t *testing.T) {
	r := func(attempt int, score float64) AttemptOutcome {
		return AttemptOutcome{Attempt: attempt, Result: &AttemptResult{Attempt: attempt, Quality: QualityScore{Score: score}}}
	}

	var best *AttemptResult
	best = pickBest(best, AttemptOutcome{Attempt: 1, Stage: StageSynthesizing, Reason: ErrNoMarkup})
	assert.Nil(t, best)
	best = pickBest(best, r(2, 6.0))
	best = pickBest(best, r(3, 7.5))
	best = pickBest(best, r(4, 7.5))
	best = pickBest(best, r(5, 6.5))
	require.NotNil(t, best)
	assert.Equal(t, 3, best.Attempt)
}

func TestConfigDefaults(t *testing.T) {
	p := NewPipeline(newScripted(), Config{})
	cfg := p.Config()
	assert.Equal(t, DefaultQualityThreshold, cfg.QualityThreshold)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultRefinementIterations, cfg.RefinementIterations)
	assert.Zero(t, cfg.Timeout)

	cfg = NewPipeline(newScripted(), Config{QualityThreshold: 9}).Config()
	assert.Equal(t, DefaultRefinementIterations, cfg.RefinementIterations, "setting one knob keeps refinement on")

	cfg = NewPipeline(newScripted(), Config{RefinementIterations: NoRefinement}).Config()
	assert.Zero(t, cfg.RefinementIterations)
}
