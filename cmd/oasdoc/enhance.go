package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/oasdoc/internal/config"
	"github.com/dshills/oasdoc/internal/enhance"
	"github.com/dshills/oasdoc/internal/llm"
)

// enhanceFlags holds the parsed flags for the enhance command.
type enhanceFlags struct {
	model          string
	threshold      int
	maxIterations  int
	minDescription int
	write          bool
	out            string
}

func newEnhanceCmd(cfg *config.Config) *cobra.Command {
	var ef enhanceFlags
	cmd := &cobra.Command{
		Use:   "enhance <spec-file>",
		Short: "Fill missing descriptions in an OpenAPI spec",
		Long:  "Enhance analyzes a spec for missing or inadequate descriptions, asks the\nconfigured model to write them, reviews the result, and applies the accepted\nfills as minimal line edits so the rest of the file keeps its exact\nformatting. By default the proposed change is printed as a diff; --write\napplies it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnhance(cmd.Context(), args[0], ef, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&ef.model, "model", cfg.Model, "Model: bare OpenAI name, openai:<model>, or anthropic:<model>")
	f.IntVar(&ef.threshold, "threshold", enhance.DefaultThreshold, "Review score required to stop refining fills (0-100)")
	f.IntVar(&ef.maxIterations, "max-iterations", 2, "Fill refinement budget")
	f.IntVar(&ef.minDescription, "min-description", enhance.DefaultMinDescription, "Shortest description length considered adequate")
	f.BoolVar(&ef.write, "write", false, "Write the enhanced spec instead of printing a diff")
	f.StringVar(&ef.out, "out", "", "Destination for --write (default: overwrite the input file)")
	return cmd
}

func runEnhance(ctx context.Context, path string, ef enhanceFlags, cfg *config.Config) error {
	log := slog.Default()

	src, err := os.ReadFile(path)
	if err != nil {
		return codeError(3, "reading spec: %s", err)
	}

	provider, err := llm.NewProvider(ef.model)
	if err != nil {
		return codeError(4, "configuring model: %s", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	enh := &enhance.Enhancer{
		Provider:       provider,
		Threshold:      ef.threshold,
		MaxIterations:  ef.maxIterations,
		MinDescription: ef.minDescription,
		Logger:         log,
	}
	out, err := enh.Run(runCtx, src, filepath.Base(path))
	if err != nil {
		var ae *llm.APIError
		if llm.IsAuthError(err) || errors.As(err, &ae) {
			return codeError(4, "%s", err)
		}
		return codeError(3, "%s", err)
	}

	if !out.Report.HasGaps() {
		log.Info("no gaps found", "file", path)
		return nil
	}
	log.Info("enhancement finished",
		"file", path,
		"gaps", out.Report.Count(),
		"fills", len(out.Fills),
		"skipped", len(out.Skipped),
		"iterations", out.Iterations)
	for _, p := range out.Skipped {
		log.Warn("fill could not be applied", "path", p)
	}
	if out.Verdict != nil && !out.Verdict.Meets(ef.threshold) {
		log.Warn("fills accepted below review threshold",
			"overall", out.Verdict.Scores.Overall, "threshold", ef.threshold)
	}

	if out.Diff == "" {
		log.Info("no changes to apply", "file", path)
		return nil
	}

	if !ef.write {
		fmt.Fprintf(os.Stdout, "Proposed changes for %s (re-run with --write to apply):\n\n", path)
		fmt.Fprintln(os.Stdout, out.Diff)
		return nil
	}

	target := ef.out
	if target == "" {
		target = path
	}
	if err := os.WriteFile(target, out.Enhanced, 0o644); err != nil {
		return codeError(3, "writing %s: %s", target, err)
	}
	log.Info("enhanced spec written", "file", target, "descriptions", len(out.Fills)-len(out.Skipped))
	return nil
}
