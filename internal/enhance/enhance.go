package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/oasdoc/internal/extract"
	"github.com/dshills/oasdoc/internal/llm"
	"github.com/dshills/oasdoc/internal/redact"
)

const (
	// DefaultThreshold is the verdict score required to accept the fills
	// without further refinement.
	DefaultThreshold = 85

	fillTemperature    = 0.4
	verdictTemperature = 0.1
	fillMaxTokens      = 4096
	verdictMaxTokens   = 1024
)

// Verdict is the reviewer's assessment of a set of generated fills.
type Verdict struct {
	Scores struct {
		Completeness int `json:"completeness"`
		Quality      int `json:"quality"`
		Consistency  int `json:"consistency"`
		Accuracy     int `json:"accuracy"`
		Overall      int `json:"overall"`
	} `json:"scores"`
	MissingEnhancements []string `json:"missing_enhancements"`
	QualityIssues       []string `json:"quality_issues"`
	Suggestions         []string `json:"suggestions"`
	ExitCriteriaMet     bool     `json:"exit_criteria_met"`
}

// Meets reports whether the verdict clears the threshold. Both the overall
// score and the reviewer's own exit assertion are required.
func (v *Verdict) Meets(threshold int) bool {
	return v.Scores.Overall >= threshold && v.ExitCriteriaMet
}

// Enhancer runs the gap-fill loop for one document: analyze, generate,
// review, refine within budget, then apply.
type Enhancer struct {
	Provider       llm.Provider
	Threshold      int // verdict score to accept; DefaultThreshold when zero
	MaxIterations  int // refinement budget; zero means accept the first generation
	MinDescription int // passed to Analyze
	Logger         *slog.Logger
}

// Outcome is everything the caller needs to preview or write the result.
type Outcome struct {
	Report     *Report
	Fills      []Fill
	Enhanced   []byte
	Skipped    []string // fill paths that could not be applied
	Diff       string   // patch text of the pending change, "" when nothing changed
	Iterations int      // refinement calls spent
	Verdict    *Verdict // last review, nil when no gaps were found
}

// Run analyzes src, generates and reviews fills, and applies the accepted
// set. Authentication and cancellation errors abort immediately; transient
// provider failures score zero and consume budget, matching the document
// generation loop.
func (e *Enhancer) Run(ctx context.Context, src []byte, source string) (*Outcome, error) {
	report, err := Analyze(src, source, e.MinDescription)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Report: report, Enhanced: src}
	if !report.HasGaps() {
		e.logger().Info("document is complete", "source", source)
		return out, nil
	}
	e.logger().Info("gap analysis", "source", source, "summary", report.Summary())

	// Secrets must not reach the provider. Redaction preserves line count,
	// so the gap line numbers in the prompt still point at the right rows.
	clean := redact.Redact(string(src))

	fills, err := e.generate(ctx, clean, source, report)
	if err != nil {
		return out, err
	}
	out.Fills = fills

	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		verdict, err := e.review(ctx, fills, report)
		if err != nil {
			return out, err
		}
		out.Verdict = verdict
		e.logger().Info("fills reviewed",
			"source", source,
			"overall", verdict.Scores.Overall,
			"exit_criteria_met", verdict.ExitCriteriaMet)

		if verdict.Meets(threshold) || out.Iterations >= e.MaxIterations {
			break
		}

		out.Iterations++
		refined, err := e.refine(ctx, fills, verdict)
		if err != nil {
			if llm.IsAuthError(err) || ctx.Err() != nil {
				return out, err
			}
			e.logger().Warn("refinement failed, keeping current fills", "source", source, "error", err)
			continue
		}
		fills = refined
		out.Fills = fills
	}

	enhanced, skipped, err := Apply(src, fills)
	if err != nil {
		return out, fmt.Errorf("applying fills to %s: %w", source, err)
	}
	out.Enhanced = enhanced
	out.Skipped = skipped
	out.Diff = Preview(string(src), string(enhanced))
	return out, nil
}

func (e *Enhancer) generate(ctx context.Context, specContent, source string, report *Report) ([]Fill, error) {
	resp, err := e.Provider.Complete(ctx, &llm.Request{
		SystemPrompt: fillSystemPrompt,
		UserPrompt:   buildFillUserPrompt(specContent, source, report),
		Temperature:  fillTemperature,
		MaxTokens:    fillMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating fills for %s: %w", source, err)
	}
	fills, err := parseFills(resp.Content, report)
	if err != nil {
		return nil, fmt.Errorf("reading fill response for %s: %w", source, err)
	}
	if len(fills) == 0 {
		return nil, fmt.Errorf("fill response for %s contained none of the requested paths", source)
	}
	return fills, nil
}

// review scores the fills. Transient provider failures and unparseable
// responses yield a zero verdict rather than an error, so the loop keeps
// its budget discipline.
func (e *Enhancer) review(ctx context.Context, fills []Fill, report *Report) (*Verdict, error) {
	resp, err := e.Provider.Complete(ctx, &llm.Request{
		SystemPrompt: verdictSystemPrompt,
		UserPrompt:   buildVerdictUserPrompt(fills, report),
		Temperature:  verdictTemperature,
		MaxTokens:    verdictMaxTokens,
	})
	if err != nil {
		if llm.IsAuthError(err) || ctx.Err() != nil {
			return nil, err
		}
		e.logger().Warn("review call failed, scoring zero", "error", err)
		return &Verdict{}, nil
	}

	verdict, err := parseVerdict(resp.Content)
	if err != nil {
		e.logger().Warn("review response unparseable, scoring zero", "error", err)
		return &Verdict{}, nil
	}
	return verdict, nil
}

func (e *Enhancer) refine(ctx context.Context, fills []Fill, verdict *Verdict) ([]Fill, error) {
	resp, err := e.Provider.Complete(ctx, &llm.Request{
		SystemPrompt: refineFillsSystemPrompt,
		UserPrompt:   buildRefineFillsUserPrompt(fills, verdict),
		Temperature:  fillTemperature,
		MaxTokens:    fillMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw, ok := extract.JSON(resp.Content)
	if !ok {
		return nil, errors.New("no JSON object in refinement response")
	}
	var refined map[string]string
	if err := json.Unmarshal(raw, &refined); err != nil {
		return nil, fmt.Errorf("decoding refinement response: %w", err)
	}
	return mergeFills(fills, refined), nil
}

// parseFills pulls the path→description object out of the response and keeps
// only requested paths, in report order, so the applied output is
// deterministic regardless of how the model ordered its answer.
func parseFills(text string, report *Report) ([]Fill, error) {
	raw, ok := extract.JSON(text)
	if !ok {
		return nil, errors.New("no JSON object in response")
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var fills []Fill
	for _, g := range report.Gaps {
		if v, ok := m[g.Path]; ok && strings.TrimSpace(v) != "" {
			fills = append(fills, Fill{Path: g.Path, Value: strings.TrimSpace(v)})
		}
	}
	return fills, nil
}

func parseVerdict(text string) (*Verdict, error) {
	raw, ok := extract.JSON(text)
	if !ok {
		return nil, errors.New("no JSON object in response")
	}
	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &v, nil
}

// mergeFills overlays refined values onto the current set. Paths the
// refinement did not mention keep their current text; paths outside the
// current set are dropped, mirroring parseFills.
func mergeFills(fills []Fill, refined map[string]string) []Fill {
	out := make([]Fill, len(fills))
	copy(out, fills)
	for i, f := range out {
		if v, ok := refined[f.Path]; ok && strings.TrimSpace(v) != "" {
			out[i].Value = strings.TrimSpace(v)
		}
	}
	return out
}

func (e *Enhancer) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
