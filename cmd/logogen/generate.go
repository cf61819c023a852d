package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
	"github.com/renatodap/brandkit-generator-sub000/internal/config"
	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/symbols"
)

type generateFlags struct {
	name        string
	description string
	industry    string
	primary     string
	secondary   string
	accent      string
	out         string
	threshold   float64
	attempts    int
	verbose     bool
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a logo for a business",
	Long: `Generate runs template expansion, synthesis, refinement and review
until an attempt reaches the quality threshold or the attempt budget is spent,
then writes the best SVG.

Examples:
  logogen generate --name "Harbor Coffee" --description "Small-batch roastery by the docks" \
    --industry food --primary "#1B3A4B" --secondary "#C8A97E" --accent "#F25C05"
  logogen generate ... --out harbor.svg --threshold 8.5 --attempts 3`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.name, "name", "", "Business name (required)")
	f.StringVar(&genFlags.description, "description", "", "What the business does (required)")
	f.StringVar(&genFlags.industry, "industry", "", "Industry (required)")
	f.StringVar(&genFlags.primary, "primary", "", "Primary palette color, #RRGGBB (required)")
	f.StringVar(&genFlags.secondary, "secondary", "", "Secondary palette color, #RRGGBB (required)")
	f.StringVar(&genFlags.accent, "accent", "", "Accent palette color, #RRGGBB (required)")
	f.StringVarP(&genFlags.out, "out", "o", "logo.svg", "Output file, - for stdout")
	f.Float64Var(&genFlags.threshold, "threshold", 0, "Quality threshold (default from QUALITY_THRESHOLD)")
	f.IntVar(&genFlags.attempts, "attempts", 0, "Maximum attempts (default from MAX_ATTEMPTS)")
	f.BoolVarP(&genFlags.verbose, "verbose", "v", false, "Log every attempt")
	for _, name := range []string{"name", "description", "industry", "primary", "secondary", "accent"} {
		_ = generateCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	brief := logo.Brief{
		BusinessName: genFlags.name,
		Description:  genFlags.description,
		Industry:     genFlags.industry,
		Symbols:      symbols.Extract(genFlags.description, genFlags.industry),
		Palette: logo.ColorPalette{
			Primary:   genFlags.primary,
			Secondary: genFlags.secondary,
			Accent:    genFlags.accent,
		},
	}
	if err := brief.Palette.Validate(); err != nil {
		return err
	}

	logger := zap.NewNop()
	if genFlags.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer l.Sync()
		logger = l
	}

	cfg := config.Load()
	pcfg := cfg.Pipeline()
	if genFlags.threshold > 0 {
		pcfg.QualityThreshold = genFlags.threshold
	}
	if genFlags.attempts > 0 {
		pcfg.MaxAttempts = genFlags.attempts
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := completion.NewProvider(ctx, cfg.Completion(), logger)
	if err != nil {
		return err
	}
	var limiter *rate.Limiter
	if cfg.LLMRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLMRatePerSec), 1)
	}
	client := completion.NewGuarded(provider, nil, limiter, logger)

	out := cmd.ErrOrStderr()
	pipeline := logo.NewPipeline(client, pcfg,
		logo.WithLogger(logger),
		logo.WithObserver(logo.ObserverFunc(func(_ context.Context, o logo.AttemptOutcome) {
			if o.Completed() {
				fmt.Fprintf(out, "  attempt %d: score %.1f (%s)\n", o.Attempt, o.Result.Quality.Score, o.Duration.Round(100*time.Millisecond))
				return
			}
			fmt.Fprintf(out, "  attempt %d: abandoned at %s: %v\n", o.Attempt, o.Stage, o.Reason)
		})),
	)

	fmt.Fprintf(out, "Generating logo for %s (threshold %.1f, up to %d attempts)\n",
		brief.BusinessName, pipeline.Config().QualityThreshold, pipeline.Config().MaxAttempts)

	res, err := pipeline.Generate(ctx, brief)
	if err != nil {
		return err
	}

	if err := writeSVG(cmd, genFlags.out, res.Candidate.SVGMarkup); err != nil {
		return err
	}
	status := "below threshold, best of run"
	if res.Quality.Score >= pipeline.Config().QualityThreshold {
		status = "accepted"
	}
	fmt.Fprintf(out, "Attempt %d scored %.1f (%s)\n%s\n", res.Attempt, res.Quality.Score, status, res.Quality.Feedback)
	return nil
}

func writeSVG(cmd *cobra.Command, path, markup string) error {
	if path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), markup)
		return err
	}
	if err := os.WriteFile(path, []byte(markup+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
