package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dshills/oasdoc/internal/config"
	"github.com/dshills/oasdoc/internal/docgen"
	"github.com/dshills/oasdoc/internal/llm"
	"github.com/dshills/oasdoc/internal/profile"
	"github.com/dshills/oasdoc/internal/render"
	"github.com/dshills/oasdoc/internal/runner"
	"github.com/dshills/oasdoc/internal/template"
)

// generateFlags holds the parsed flags for the generate command.
type generateFlags struct {
	input          string
	output         string
	templatePath   string
	model          string
	profileName    string
	threshold      int
	maxIterations  int
	timeoutMinutes int
	changedOnly    bool
	reportFormat   string
	reportOut      string
	rps            float64
}

func newGenerateCmd(cfg *config.Config) *cobra.Command {
	var gf generateFlags
	cmd := &cobra.Command{
		Use:   "generate [spec-file ...]",
		Short: "Generate markdown documentation from OpenAPI specs",
		Long:  "Generate renders each spec through the documentation template, scores the\nresult with the configured model and refines it until it clears the quality\nthreshold or the iteration budget runs out. Without arguments, every\n.yaml/.yml file under the input directory is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args, gf, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&gf.input, "input", cfg.InputPath, "Directory scanned for OpenAPI spec files")
	f.StringVar(&gf.output, "output", cfg.OutputPath, "Directory for generated markdown")
	f.StringVar(&gf.templatePath, "template", cfg.TemplatePath, "Documentation template file (empty selects the built-in layout)")
	f.StringVar(&gf.model, "model", cfg.Model, "Model: bare OpenAI name, openai:<model>, or anthropic:<model>")
	f.StringVar(&gf.profileName, "profile", "reference", "Validation rubric: reference, minimal, or strict")
	f.IntVar(&gf.threshold, "threshold", cfg.Threshold, "Minimum passing quality score (0-100)")
	f.IntVar(&gf.maxIterations, "max-iterations", cfg.MaxIterations, "Refinement budget per file")
	f.IntVar(&gf.timeoutMinutes, "timeout", cfg.TimeoutMinutes, "Wall-clock budget for the whole run, in minutes")
	f.BoolVar(&gf.changedOnly, "changed-only", cfg.ProcessChangedOnly, "Process only the files listed in CHANGED_FILES")
	f.StringVar(&gf.reportFormat, "report-format", "text", "Run summary format: text, json, or md")
	f.StringVar(&gf.reportOut, "report-out", "", "Write the run summary to a file instead of stderr")
	f.Float64Var(&gf.rps, "rps", 2, "Maximum LLM requests per second across all workers (0 disables)")
	return cmd
}

func runGenerate(ctx context.Context, args []string, gf generateFlags, cfg *config.Config) error {
	log := slog.Default()

	effective := *cfg
	effective.Threshold = gf.threshold
	effective.MaxIterations = gf.maxIterations
	effective.TimeoutMinutes = gf.timeoutMinutes
	if err := effective.Validate(); err != nil {
		return codeError(2, "invalid configuration: %s", err)
	}
	renderer, err := render.NewRenderer(gf.reportFormat)
	if err != nil {
		return codeError(2, "%s", err)
	}
	prof, err := profile.Get(gf.profileName)
	if err != nil {
		return codeError(2, "%s", err)
	}

	tplText := docgen.DefaultTemplate
	if gf.templatePath != "" {
		tplBytes, err := os.ReadFile(gf.templatePath)
		if err != nil {
			return codeError(3, "loading template: %s", err)
		}
		tplText = string(tplBytes)
	}
	tpl, err := template.Parse(tplText)
	if err != nil {
		return codeError(3, "parsing template %s: %s", gf.templatePath, err)
	}

	files := args
	if len(files) == 0 {
		files, err = runner.Files(gf.input, cfg.ChangedFiles, gf.changedOnly)
		if err != nil {
			return codeError(3, "%s", err)
		}
	}
	if len(files) == 0 {
		log.Warn("no spec files to process", "input", gf.input)
		return nil
	}
	log.Info("starting run", "files", len(files), "model", gf.model, "threshold", gf.threshold)

	provider, err := llm.NewProvider(gf.model)
	if err != nil {
		return codeError(4, "configuring model: %s", err)
	}
	if gf.rps > 0 {
		provider = llm.RateLimited(provider, rate.NewLimiter(rate.Limit(gf.rps), 1))
	}

	runCtx, cancel := context.WithTimeout(ctx, effective.Timeout())
	defer cancel()

	r := &runner.Runner{
		Provider:      provider,
		Template:      tpl,
		Profile:       prof,
		Threshold:     gf.threshold,
		MaxIterations: gf.maxIterations,
		OutputDir:     gf.output,
		Logger:        log,
	}
	results, runErr := r.Run(runCtx, files)

	// The summary is written even when the run was cut short; partial
	// results are exactly what the operator needs to see then.
	if err := writeSummary(renderer, results, gf.reportOut); err != nil {
		return err
	}

	if runErr != nil {
		switch {
		case llm.IsAuthError(runErr):
			return codeError(4, "%s", runErr)
		case errors.Is(runErr, context.DeadlineExceeded):
			log.Error("run timed out", "budget", effective.Timeout().String())
		case errors.Is(runErr, context.Canceled):
			log.Warn("run canceled")
		default:
			return codeError(5, "%s", runErr)
		}
	}
	if code := runner.ExitCode(results); code != 0 {
		t := render.Tally(results)
		return codeError(code, "%d of %d spec files failed", t.Failed, t.Files)
	}
	return nil
}

func writeSummary(renderer render.Renderer, results []runner.FileResult, outPath string) error {
	if len(results) == 0 {
		return nil
	}
	out, err := renderer.Render(results)
	if err != nil {
		return codeError(5, "rendering summary: %s", err)
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return codeError(3, "writing summary: %s", err)
		}
		return nil
	}
	_, err = os.Stderr.Write(out)
	return err
}
