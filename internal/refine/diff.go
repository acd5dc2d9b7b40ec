package refine

import "github.com/sergi/go-diff/diffmatchpatch"

// diffStats measures how much a refinement changed the document, in
// characters added and removed. The counts go into the run trace so a
// summary can show whether refinements are converging or thrashing.
func diffStats(before, after string) (added, removed int) {
	if before == after {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(before, after, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
		}
	}
	return added, removed
}
