package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/oasdoc/internal/runner"
)

type markdownRenderer struct{}

// mdTemplate targets GitHub step summaries, where a compact table beats the
// text layout.
var mdTemplate = template.Must(template.New("summary").Parse(`# Documentation Run

**Files:** {{ .Totals.Files }} | **Passed:** {{ .Totals.Passed }} | **Exhausted:** {{ .Totals.Exhausted }} | **Failed:** {{ .Totals.Failed }}

| File | Status | Score | Refinements | Output |
|------|--------|------:|------------:|--------|
{{ range .Files }}| {{ .Path }} | {{ .Status }} | {{ .Score }} | {{ .Refinements }} | {{ .OutputPath }} |
{{ end }}{{ if .HasNotes }}
## Notes
{{ range .Files }}{{ if or .Err .Warnings }}
**{{ .Path }}**
{{ if .Err }}- error: {{ .Err }}
{{ end }}{{ range .Warnings }}- {{ . }}
{{ end }}{{ end }}{{ end }}{{ end }}`))

func (r *markdownRenderer) Render(results []runner.FileResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report(results)); err != nil {
		return nil, fmt.Errorf("rendering markdown summary: %w", err)
	}
	return buf.Bytes(), nil
}
