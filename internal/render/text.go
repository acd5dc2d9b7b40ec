package render

import (
	"fmt"
	"strings"

	"github.com/dshills/oasdoc/internal/runner"
)

type textRenderer struct{}

func (r *textRenderer) Render(results []runner.FileResult) ([]byte, error) {
	rep := report(results)

	fileW := len("FILE")
	for _, fr := range rep.Files {
		if len(fr.Path) > fileW {
			fileW = len(fr.Path)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-9s  %5s  %11s  %s\n", fileW, "FILE", "STATUS", "SCORE", "REFINEMENTS", "OUTPUT")
	for _, fr := range rep.Files {
		score, refinements, output := "-", "-", "-"
		if fr.Status != runner.StatusFailed {
			score = fmt.Sprintf("%d", fr.Score)
			refinements = fmt.Sprintf("%d", fr.Refinements)
			output = fr.OutputPath
		}
		fmt.Fprintf(&b, "%-*s  %-9s  %5s  %11s  %s\n", fileW, fr.Path, fr.Status, score, refinements, output)
	}

	for _, fr := range rep.Files {
		if fr.Err == "" && len(fr.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", fr.Path)
		if fr.Err != "" {
			fmt.Fprintf(&b, "  error: %s\n", fr.Err)
		}
		for _, w := range fr.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	t := rep.Totals
	fmt.Fprintf(&b, "\n%d files: %d passed, %d exhausted, %d failed\n",
		t.Files, t.Passed, t.Exhausted, t.Failed)
	return []byte(b.String()), nil
}
