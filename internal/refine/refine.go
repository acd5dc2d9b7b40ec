// Package refine drives the render-validate-refine loop that gates generated
// documentation on LLM-scored quality. Rendering is deterministic and happens
// once; the loop then alternates scoring the current document and asking the
// model to improve it, until the score clears the threshold or the refinement
// budget runs out.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/oasdoc/internal/llm"
	"github.com/dshills/oasdoc/internal/profile"
	"github.com/dshills/oasdoc/internal/quality"
)

// State identifies where a run is in the loop, or how it ended.
type State string

const (
	StateRendering  State = "RENDERING"
	StateValidating State = "VALIDATING"
	StateRefining   State = "REFINING"
	StatePassed     State = "PASSED"
	StateExhausted  State = "EXHAUSTED"
)

// Terminal reports whether s is an end state.
func (s State) Terminal() bool { return s == StatePassed || s == StateExhausted }

const (
	validateTemperature = 0.1
	refineTemperature   = 0.4
	validateMaxTokens   = 1024
	refineMaxTokens     = 8192
)

// RenderFunc produces the initial document and the placeholder names the
// renderer could not fill.
type RenderFunc func() (doc string, unresolved []string, err error)

// Engine runs the loop for one document.
type Engine struct {
	Provider llm.Provider
	Profile  *profile.Profile

	// Threshold is the minimum overall score; passing also requires the
	// validator's own exit criteria.
	Threshold int

	// MaxIterations caps refinement calls, not validations. Zero means
	// validate once and stop.
	MaxIterations int

	// SourceName labels the document in prompts, typically the spec filename.
	SourceName string

	// SpecContent is the redacted source spec, given to the validator and
	// refiner as reference material.
	SpecContent string

	Logger *slog.Logger
}

// Step records one validation or refinement for the run trace.
type Step struct {
	State   State
	Score   *quality.Score // validation steps
	Err     string         // transient failure, if any
	Added   int            // characters added by a refinement
	Removed int            // characters removed by a refinement
}

// Result is the outcome of a run.
type Result struct {
	State       State
	Document    string
	Score       *quality.Score // score from the final validation
	Refinements int
	Unresolved  []string // renderer-reported placeholder gaps
	Trace       []Step
}

// Run executes the loop. It returns a non-nil Result even on error so
// callers can report partial progress; the error is non-nil only for
// failures that cannot be retried within the loop, such as rendering
// errors, credential problems and context cancellation.
func (e *Engine) Run(ctx context.Context, render RenderFunc) (*Result, error) {
	res := &Result{State: StateRendering}
	log := e.logger()

	doc, unresolved, err := render()
	if err != nil {
		return res, fmt.Errorf("rendering document: %w", err)
	}
	res.Document = doc
	res.Unresolved = unresolved
	if len(unresolved) > 0 {
		log.Warn("renderer left placeholders unfilled", "source", e.SourceName, "placeholders", unresolved)
	}

	// The renderer's gap list is only accurate for the initial document.
	hint := unresolved

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.State = StateValidating
		score, err := e.validate(ctx, res, doc, hint)
		if err != nil {
			return res, err
		}
		res.Score = score
		log.Info("validated document",
			"source", e.SourceName,
			"overall", score.Overall,
			"exit_criteria_met", score.ExitCriteriaMet,
			"refinements", res.Refinements)

		if score.Meets(e.Threshold) {
			res.State = StatePassed
			log.Info("document passed", "source", e.SourceName, "overall", score.Overall)
			return res, nil
		}
		if res.Refinements >= e.MaxIterations {
			res.State = StateExhausted
			log.Warn("refinement budget exhausted",
				"source", e.SourceName,
				"overall", score.Overall,
				"refinements", res.Refinements)
			return res, nil
		}

		res.State = StateRefining
		res.Refinements++
		newDoc, err := e.refine(ctx, doc, score)
		if err != nil {
			if llm.IsAuthError(err) || ctx.Err() != nil {
				return res, err
			}
			// Transient failure: the attempt still consumed budget.
			log.Warn("refinement attempt failed", "source", e.SourceName, "error", err)
			res.Trace = append(res.Trace, Step{State: StateRefining, Err: err.Error()})
			continue
		}

		added, removed := diffStats(doc, newDoc)
		res.Trace = append(res.Trace, Step{State: StateRefining, Added: added, Removed: removed})
		log.Info("refined document", "source", e.SourceName, "added", added, "removed", removed)

		doc = newDoc
		res.Document = doc
		hint = nil
	}
}

// validate scores the current document. Transport failures and unparseable
// responses degrade to the zero-score fallback so the loop keeps control of
// the budget; only credential errors and cancellation return an error.
func (e *Engine) validate(ctx context.Context, res *Result, doc string, hint []string) (*quality.Score, error) {
	req := &llm.Request{
		SystemPrompt: llm.BuildValidationSystemPrompt(e.Profile),
		UserPrompt:   llm.BuildValidationUserPrompt(doc, e.SourceName, e.SpecContent, hint),
		Temperature:  validateTemperature,
		MaxTokens:    validateMaxTokens,
	}

	resp, err := e.Provider.Complete(ctx, req)
	if err != nil {
		if llm.IsAuthError(err) || ctx.Err() != nil {
			return nil, err
		}
		e.logger().Warn("validation call failed, scoring zero", "source", e.SourceName, "error", err)
		score := quality.Fallback()
		res.Trace = append(res.Trace, Step{State: StateValidating, Score: score, Err: err.Error()})
		return score, nil
	}

	score, err := quality.Parse(resp.Content)
	if err != nil {
		e.logger().Warn("validation response unparseable, scoring zero", "source", e.SourceName, "error", err)
		score = quality.Fallback()
	}
	res.Trace = append(res.Trace, Step{State: StateValidating, Score: score})
	return score, nil
}

// refine asks the model for an improved document.
func (e *Engine) refine(ctx context.Context, doc string, score *quality.Score) (string, error) {
	req := &llm.Request{
		SystemPrompt: llm.BuildRefinementSystemPrompt(),
		UserPrompt:   llm.BuildRefinementUserPrompt(doc, score, e.SpecContent),
		Temperature:  refineTemperature,
		MaxTokens:    refineMaxTokens,
	}

	resp, err := e.Provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	content := unwrapFence(resp.Content)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("refinement returned empty document")
	}
	return content, nil
}

// unwrapFence strips a whole-document markdown fence some models insist on
// adding despite instructions.
func unwrapFence(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, open := range []string{"```markdown\n", "```md\n"} {
		if strings.HasPrefix(trimmed, open) && strings.HasSuffix(trimmed, "```") {
			return strings.TrimSuffix(strings.TrimPrefix(trimmed, open), "```")
		}
	}
	return s
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
