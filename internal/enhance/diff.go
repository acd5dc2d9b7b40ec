package enhance

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Preview renders the pending change as patch text. Both sides are
// normalized the same way first so the preview shows real edits, not
// whitespace drift.
func Preview(before, after string) string {
	nb := normalize(before)
	na := normalize(after)
	if nb == na {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(nb, na, false)
	patches := dmp.PatchMake(nb, diffs)
	return dmp.PatchToText(patches)
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
