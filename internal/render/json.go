package render

import (
	"encoding/json"

	"github.com/dshills/oasdoc/internal/runner"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(results []runner.FileResult) ([]byte, error) {
	return json.MarshalIndent(report(results), "", "  ")
}
