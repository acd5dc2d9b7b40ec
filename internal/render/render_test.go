package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/oasdoc/internal/refine"
	"github.com/dshills/oasdoc/internal/runner"
)

func sampleResults() []runner.FileResult {
	return []runner.FileResult{
		{
			Path:        "input/widgets.yaml",
			Status:      runner.StatusPassed,
			Score:       95,
			Refinements: 2,
			State:       refine.StatePassed,
			OutputPath:  "output/widgets.md",
		},
		{
			Path:        "input/legacy.yaml",
			Status:      runner.StatusExhausted,
			Score:       71,
			Refinements: 10,
			State:       refine.StateExhausted,
			OutputPath:  "output/legacy.md",
			Warnings:    []string{"quality threshold 90 not met, best score 71"},
		},
		{
			Path:   "input/broken.yaml",
			Status: runner.StatusFailed,
			Err:    "parsing document: yaml: line 3: did not find expected key",
		},
	}
}

func TestNewRenderer_Text(t *testing.T) {
	r, err := NewRenderer("text")
	if err != nil {
		t.Fatalf("NewRenderer text: %v", err)
	}
	out, err := r.Render(sampleResults())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"FILE", "STATUS", "SCORE",
		"input/widgets.yaml",
		"passed",
		"output/legacy.md",
		"quality threshold 90 not met",
		"error: parsing document",
		"3 files: 1 passed, 1 exhausted, 1 failed",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("text summary missing %q:\n%s", want, s)
		}
	}
	// Failed files have no score or output to show.
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "input/broken.yaml") && !strings.Contains(line, "-") {
			t.Errorf("failed row should use placeholders: %q", line)
		}
	}
}

func TestNewRenderer_JSON(t *testing.T) {
	r, err := NewRenderer("json")
	if err != nil {
		t.Fatalf("NewRenderer json: %v", err)
	}
	out, err := r.Render(sampleResults())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}
	if decoded.Tool != "oasdoc" {
		t.Errorf("tool = %q", decoded.Tool)
	}
	if decoded.Totals.Files != 3 || decoded.Totals.Failed != 1 {
		t.Errorf("totals = %+v", decoded.Totals)
	}
	if len(decoded.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(decoded.Files))
	}
	if decoded.Files[0].Status != runner.StatusPassed {
		t.Errorf("first status = %q", decoded.Files[0].Status)
	}
}

func TestNewRenderer_Markdown(t *testing.T) {
	r, err := NewRenderer("md")
	if err != nil {
		t.Fatalf("NewRenderer md: %v", err)
	}
	out, err := r.Render(sampleResults())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"# Documentation Run",
		"**Files:** 3",
		"| input/widgets.yaml | passed | 95 | 2 | output/widgets.md |",
		"## Notes",
		"- error: parsing document",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown summary missing %q:\n%s", want, s)
		}
	}
}

func TestNewRenderer_MarkdownNoNotes(t *testing.T) {
	r, _ := NewRenderer("md")
	out, err := r.Render([]runner.FileResult{{
		Path:       "input/clean.yaml",
		Status:     runner.StatusPassed,
		Score:      97,
		OutputPath: "output/clean.md",
	}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), "## Notes") {
		t.Errorf("notes section should be omitted when empty:\n%s", out)
	}
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	_, err := NewRenderer("xml")
	if err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}

func TestTally(t *testing.T) {
	totals := Tally(sampleResults())
	if totals.Files != 3 || totals.Passed != 1 || totals.Exhausted != 1 || totals.Failed != 1 {
		t.Errorf("Tally = %+v", totals)
	}
	empty := Tally(nil)
	if empty.Files != 0 {
		t.Errorf("empty Tally = %+v", empty)
	}
}
