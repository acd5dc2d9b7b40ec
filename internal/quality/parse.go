package quality

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/oasdoc/internal/extract"
)

// scorePayload mirrors the JSON contract the validation prompt asks the
// model to produce.
type scorePayload struct {
	Scores struct {
		Completeness     int `json:"completeness"`
		TemplateCoverage int `json:"template_coverage"`
		CodeQuality      int `json:"code_quality"`
		MarkdownSyntax   int `json:"markdown_syntax"`
		Overall          int `json:"overall"`
	} `json:"scores"`
	MissingPlaceholders    []string `json:"missing_placeholders"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	ExitCriteriaMet        bool     `json:"exit_criteria_met"`
}

// Parse extracts a Score from raw model output using the fallback chain.
// Metric values outside 0-100 are clamped, not rejected. The error is
// non-nil only when no JSON value could be recovered at all; callers are
// expected to substitute Fallback() and keep going.
func Parse(raw string) (*Score, error) {
	data, ok := extract.JSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON value found in validation response")
	}
	var payload scorePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding validation payload: %w", err)
	}
	return &Score{
		Completeness:           clamp(payload.Scores.Completeness),
		TemplateCoverage:       clamp(payload.Scores.TemplateCoverage),
		CodeQuality:            clamp(payload.Scores.CodeQuality),
		MarkdownSyntax:         clamp(payload.Scores.MarkdownSyntax),
		Overall:                clamp(payload.Scores.Overall),
		ExitCriteriaMet:        payload.ExitCriteriaMet,
		MissingPlaceholders:    payload.MissingPlaceholders,
		ImprovementSuggestions: payload.ImprovementSuggestions,
	}, nil
}

// Fallback is the score substituted when a validation response defeats
// every extraction strategy: all metrics zero and exit criteria unmet, so
// the iteration counts as failed and the loop continues.
func Fallback() *Score {
	return &Score{
		ExitCriteriaMet:        false,
		ImprovementSuggestions: []string{"validation response could not be parsed"},
	}
}

// clamp bounds a metric value to 0-100.
func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
