// Package render formats a finished run's summary for people and machines.
package render

import (
	"fmt"

	"github.com/dshills/oasdoc/internal/runner"
)

// Renderer formats the per-file results of one run.
type Renderer interface {
	Render(results []runner.FileResult) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "text" (default), "json", "md".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text":
		return &textRenderer{}, nil
	case "json":
		return &jsonRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q: supported formats are text, json, md", format)
	}
}

// Totals aggregates file statuses across a run.
type Totals struct {
	Files     int `json:"files"`
	Passed    int `json:"passed"`
	Exhausted int `json:"exhausted"`
	Failed    int `json:"failed"`
}

// Tally counts the statuses in results.
func Tally(results []runner.FileResult) Totals {
	t := Totals{Files: len(results)}
	for _, fr := range results {
		switch fr.Status {
		case runner.StatusPassed:
			t.Passed++
		case runner.StatusExhausted:
			t.Exhausted++
		case runner.StatusFailed:
			t.Failed++
		}
	}
	return t
}

// Report is the run summary handed to renderers.
type Report struct {
	Tool   string              `json:"tool"`
	Totals Totals              `json:"totals"`
	Files  []runner.FileResult `json:"files"`
}

// HasNotes reports whether any file carries an error or warnings.
func (r Report) HasNotes() bool {
	for _, fr := range r.Files {
		if fr.Err != "" || len(fr.Warnings) > 0 {
			return true
		}
	}
	return false
}

func report(results []runner.FileResult) Report {
	return Report{Tool: "oasdoc", Totals: Tally(results), Files: results}
}
