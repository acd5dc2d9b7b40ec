// Package runner executes the documentation pipeline over a set of
// specification files with bounded concurrency. Each file is parsed,
// extracted, rendered and refined in isolation; one broken spec never stops
// the rest of the batch.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/oasdoc/internal/docgen"
	"github.com/dshills/oasdoc/internal/example"
	"github.com/dshills/oasdoc/internal/llm"
	"github.com/dshills/oasdoc/internal/openapi"
	"github.com/dshills/oasdoc/internal/profile"
	"github.com/dshills/oasdoc/internal/redact"
	"github.com/dshills/oasdoc/internal/refine"
	"github.com/dshills/oasdoc/internal/template"
)

// defaultWorkers caps parallel files. Five keeps API usage under provider
// rate limits while still overlapping the slow LLM round trips.
const defaultWorkers = 5

// Status classifies one file's outcome in the run summary.
type Status string

const (
	// StatusPassed: the document cleared the quality threshold.
	StatusPassed Status = "passed"
	// StatusExhausted: the refinement budget ran out below the threshold.
	// The best document is still written; this is a warning, not a failure.
	StatusExhausted Status = "exhausted"
	// StatusFailed: the file produced no output (unreadable, unparseable,
	// or the run was cut short).
	StatusFailed Status = "failed"
)

// FileResult is one specification file's outcome.
type FileResult struct {
	Path        string       `json:"path"`
	Status      Status       `json:"status"`
	Score       int          `json:"score"`
	Refinements int          `json:"refinements"`
	State       refine.State `json:"state,omitempty"`
	OutputPath  string       `json:"output_path,omitempty"`
	Err         string       `json:"error,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// Runner generates documentation for a batch of specification files.
type Runner struct {
	Provider      llm.Provider
	Template      *template.Template
	Profile       *profile.Profile
	Threshold     int
	MaxIterations int
	OutputDir     string

	// Workers overrides the default concurrency limit when positive.
	Workers int

	Logger *slog.Logger
}

// Files returns the spec files for a run. With changedOnly set and a
// non-empty changed list, the run is restricted to the YAML entries of that
// list, taken as paths verbatim; otherwise every .yaml/.yml file under
// inputDir is discovered recursively.
func Files(inputDir string, changed []string, changedOnly bool) ([]string, error) {
	if changedOnly && len(changed) > 0 {
		var files []string
		for _, f := range changed {
			if IsYAML(f) {
				files = append(files, f)
			}
		}
		return files, nil
	}
	return Discover(inputDir)
}

// Discover walks inputDir and returns every YAML file, sorted for a
// deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", inputDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// IsYAML reports whether path has a .yaml or .yml extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Run processes every file, at most Workers at a time. The returned slice
// matches the order of files regardless of completion order. The error is
// non-nil only for conditions that abort the whole batch: credential
// failures and context cancellation. Per-file problems are reported in the
// corresponding FileResult instead.
func (r *Runner) Run(ctx context.Context, files []string) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers(len(files)))

	for i, path := range files {
		g.Go(func() error {
			res, err := r.processFile(ctx, path)
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// processFile runs the full pipeline for one spec. The returned error is
// non-nil only when the batch should stop; everything else lands in the
// FileResult.
func (r *Runner) processFile(ctx context.Context, path string) (FileResult, error) {
	fr := FileResult{Path: path, Status: StatusFailed}
	log := r.logger()

	if err := ctx.Err(); err != nil {
		fr.Err = "run canceled before processing"
		return fr, err
	}
	log.Info("processing spec", "file", path)

	diags := &openapi.Diagnostics{}
	doc, err := openapi.Load(path, diags)
	if err != nil {
		fr.Err = err.Error()
		log.Error("spec rejected", "file", path, "error", err)
		return fr, nil
	}
	records, err := openapi.ExtractEndpoints(doc, openapi.NewResolver(doc, diags), example.New(), diags)
	if err != nil {
		fr.Err = err.Error()
		log.Error("endpoint extraction failed", "file", path, "error", err)
		return fr, nil
	}
	for _, d := range diags.Entries() {
		fr.Warnings = append(fr.Warnings, d.String())
	}

	engine := &refine.Engine{
		Provider:      r.Provider,
		Profile:       r.Profile,
		Threshold:     r.Threshold,
		MaxIterations: r.MaxIterations,
		SourceName:    filepath.Base(path),
		SpecContent:   redact.Redact(doc.Raw),
		Logger:        log,
	}
	render := func() (string, []string, error) {
		pages := docgen.RenderAll(r.Template, records, doc.ServerURL())
		return docgen.Combine(doc, pages), collectUnresolved(pages), nil
	}

	res, err := engine.Run(ctx, render)
	fr.State = res.State
	fr.Refinements = res.Refinements
	if res.Score != nil {
		fr.Score = res.Score.Overall
	}
	if err != nil {
		fr.Err = err.Error()
		if llm.IsAuthError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fr, err
		}
		return fr, nil
	}
	if len(res.Unresolved) > 0 {
		fr.Warnings = append(fr.Warnings, "unfilled placeholders: "+strings.Join(res.Unresolved, ", "))
	}

	outPath := OutputFile(path, r.OutputDir)
	if err := os.WriteFile(outPath, []byte(res.Document), 0o644); err != nil {
		fr.Err = fmt.Sprintf("writing %s: %v", outPath, err)
		log.Error("output write failed", "file", path, "error", err)
		return fr, nil
	}
	fr.OutputPath = outPath

	switch res.State {
	case refine.StatePassed:
		fr.Status = StatusPassed
		log.Info("documentation generated",
			"file", path, "output", outPath, "score", fr.Score, "refinements", fr.Refinements)
	case refine.StateExhausted:
		fr.Status = StatusExhausted
		fr.Warnings = append(fr.Warnings,
			fmt.Sprintf("quality threshold %d not met, best score %d", r.Threshold, fr.Score))
		log.Warn("documentation below threshold",
			"file", path, "output", outPath, "score", fr.Score, "refinements", fr.Refinements)
	}
	return fr, nil
}

// OutputFile maps a spec path to its markdown output path: the spec's base
// name with the extension swapped for .md, placed flat in outputDir.
func OutputFile(specPath, outputDir string) string {
	base := filepath.Base(specPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".md")
}

// ExitCode maps a finished run to a process exit code: 0 when every file
// produced output, 3 when any file failed. Files that merely missed the
// quality threshold do not fail the run.
func ExitCode(results []FileResult) int {
	for _, fr := range results {
		if fr.Status == StatusFailed {
			return 3
		}
	}
	return 0
}

// collectUnresolved merges the per-page placeholder gaps, deduplicated in
// first-appearance order.
func collectUnresolved(pages []*docgen.Page) []string {
	var names []string
	seen := map[string]bool{}
	for _, p := range pages {
		for _, n := range p.Unresolved {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

func (r *Runner) workers(n int) int {
	w := r.Workers
	if w <= 0 {
		w = defaultWorkers
	}
	if n < w {
		w = n
	}
	return w
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
