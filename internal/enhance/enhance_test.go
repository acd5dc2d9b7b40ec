package enhance

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/oasdoc/internal/llm"
)

const completeSpec = `openapi: 3.0.0
info:
  title: Widget Catalog
  description: Manages the widget catalog including creation, search, and retirement of widgets.
  version: 1.0.0
tags:
  - name: Widgets
    description: Operations for creating and listing catalog widgets.
paths:
  /widgets:
    get:
      description: Retrieves all widgets in the catalog with pagination support.
      responses:
        '200':
          description: Paged list of catalog widgets
components:
  schemas:
    Widget:
      description: A single catalog widget with its pricing metadata.
      properties:
        id:
          description: Unique identifier assigned at creation time.
          type: string
`

const gappySpec = `openapi: 3.0.0
info:
  title: W
  version: 1.0.0
tags:
  - name: Widgets
paths:
  /widgets:
    get:
      summary: List widgets
      parameters:
        - name: limit
          in: query
      responses:
        '200':
          description: Paged list of catalog widgets
components:
  schemas:
    Widget:
      properties:
        id:
          type: string
`

func TestAnalyze_CompleteSpecHasNoGaps(t *testing.T) {
	report, err := Analyze([]byte(completeSpec), "widgets.yaml", 0)
	require.NoError(t, err)
	assert.False(t, report.HasGaps(), "gaps: %+v", report.Gaps)
	assert.Equal(t, "no gaps found", report.Summary())
}

func TestAnalyze_FindsEveryGapKind(t *testing.T) {
	report, err := Analyze([]byte(gappySpec), "widgets.yaml", 0)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Count())
	counts := report.ByKind()
	assert.Equal(t, 2, counts[KindInfo], "short title and missing description")
	assert.Equal(t, 1, counts[KindTag])
	assert.Equal(t, 1, counts[KindEndpoint])
	assert.Equal(t, 1, counts[KindParameter])
	assert.Equal(t, 1, counts[KindSchema])
	assert.Equal(t, 1, counts[KindProperty])

	paths := make(map[string]Gap)
	for _, g := range report.Gaps {
		paths[g.Path] = g
	}
	assert.Contains(t, paths, "info.description")
	assert.Contains(t, paths, "tags.0.description")
	assert.Contains(t, paths, "paths./widgets.get.description")
	assert.Contains(t, paths, "paths./widgets.get.parameters.limit.description")
	assert.Contains(t, paths, "components.schemas.Widget.description")
	assert.Contains(t, paths, "components.schemas.Widget.properties.id.description")

	assert.Equal(t, 3, paths["info.title"].Line)
	assert.Equal(t, 2, paths["info.description"].Line, "missing keys anchor to the section key")
	assert.Equal(t, 9, paths["paths./widgets.get.description"].Line)
	assert.Equal(t, 12, paths["paths./widgets.get.parameters.limit.description"].Line)
	assert.Equal(t, `GET /widgets parameter "limit"`, paths["paths./widgets.get.parameters.limit.description"].Detail)
}

func TestAnalyze_GenericDescriptionIsInadequate(t *testing.T) {
	spec := strings.Replace(completeSpec,
		"description: Retrieves all widgets in the catalog with pagination support.",
		"description: api endpoint service", 1)
	report, err := Analyze([]byte(spec), "widgets.yaml", 0)
	require.NoError(t, err)

	var found bool
	for _, g := range report.Gaps {
		if g.Path == "paths./widgets.get.description" {
			found = true
		}
	}
	assert.True(t, found, "generic filler words should count as missing")
}

func TestAnalyze_RefParametersSkipped(t *testing.T) {
	spec := `openapi: 3.0.0
info:
  title: Widget Catalog
  description: Manages the widget catalog including creation, search, and retirement.
  version: 1.0.0
paths:
  /widgets:
    get:
      description: Retrieves all widgets in the catalog with pagination support.
      parameters:
        - $ref: '#/components/parameters/Limit'
      responses:
        '200':
          description: Paged list of catalog widgets
`
	report, err := Analyze([]byte(spec), "widgets.yaml", 0)
	require.NoError(t, err)
	for _, g := range report.Gaps {
		assert.NotEqual(t, KindParameter, g.Kind, "shared $ref parameters are described at their definition")
	}
}

func TestAnalyze_MissingInfoSection(t *testing.T) {
	report, err := Analyze([]byte("openapi: 3.0.0\npaths: {}\n"), "bare.yaml", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ByKind()[KindInfo])
}

func TestAnalyze_InvalidYAML(t *testing.T) {
	_, err := Analyze([]byte("paths: [unclosed\n"), "broken.yaml", 0)
	require.Error(t, err)
}

func TestApply_InsertAndResolveGaps(t *testing.T) {
	fills := []Fill{
		{Path: "info.description", Value: "Manages the widget catalog including creation and search."},
		{Path: "paths./widgets.get.description", Value: "Retrieves all widgets with pagination support."},
		{Path: "paths./widgets.get.parameters.limit.description", Value: "Maximum number of results to return per page."},
		{Path: "components.schemas.Widget.properties.id.description", Value: "Unique identifier assigned at creation time."},
		{Path: "paths./nope.get.description", Value: "unreachable"},
	}

	out, skipped, err := Apply([]byte(gappySpec), fills)
	require.NoError(t, err)
	assert.Equal(t, []string{"paths./nope.get.description"}, skipped)

	text := string(out)
	assert.Contains(t, text, `  description: "Manages the widget catalog including creation and search."`)
	assert.Contains(t, text, `      description: "Retrieves all widgets with pagination support."`)
	assert.Contains(t, text, `          description: "Maximum number of results to return per page."`)

	// The parameter description must land inside the sequence item, after
	// the dash line.
	idx := strings.Index(text, "- name: limit")
	require.GreaterOrEqual(t, idx, 0)
	after := text[idx:]
	assert.Less(t, strings.Index(after, "description:"), strings.Index(after, "in: query"))

	// Filled gaps are gone on re-analysis; the short title, tag, and schema
	// descriptions were not filled and remain.
	report, err := Analyze(out, "widgets.yaml", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(), "remaining gaps: %+v", report.Gaps)
}

func TestApply_ReplaceShortDescription(t *testing.T) {
	spec := `info:
  title: Widget Catalog
  description: Short
  version: 1.0.0
`
	out, skipped, err := Apply([]byte(spec), []Fill{
		{Path: "info.description", Value: "A complete catalog management interface for widgets."},
	})
	require.NoError(t, err)
	assert.Empty(t, skipped)

	text := string(out)
	assert.NotContains(t, text, "Short")
	assert.Contains(t, text, `  description: "A complete catalog management interface for widgets."`)
	assert.Contains(t, text, "  title: Widget Catalog\n")
	assert.Contains(t, text, "  version: 1.0.0\n")
}

func TestApply_DottedURLPath(t *testing.T) {
	spec := `paths:
  /v1.0/users:
    get:
      summary: List users
`
	out, skipped, err := Apply([]byte(spec), []Fill{
		{Path: "paths./v1.0/users.get.description", Value: "Retrieves all registered users."},
	})
	require.NoError(t, err)
	assert.Empty(t, skipped, "URL segments containing dots must still resolve")
	assert.Contains(t, string(out), `      description: "Retrieves all registered users."`)
}

func TestApply_LiteralBlockDeclined(t *testing.T) {
	spec := `info:
  title: Widget Catalog
  description: |
    short
  version: 1.0.0
`
	out, skipped, err := Apply([]byte(spec), []Fill{
		{Path: "info.description", Value: "replacement"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"info.description"}, skipped)
	assert.Equal(t, spec, string(out), "declined fills must leave the document untouched")
}

func TestApply_PreservesComments(t *testing.T) {
	spec := `# inventory service spec
info:
  # the public title
  title: Widget Catalog
  version: 1.0.0
`
	out, _, err := Apply([]byte(spec), []Fill{
		{Path: "info.description", Value: "Catalog operations for the inventory service."},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "# inventory service spec")
	assert.Contains(t, string(out), "  # the public title")
}

func TestPreview(t *testing.T) {
	before := "info:\n  title: Widgets\n"
	after := "info:\n  description: \"x\"\n  title: Widgets\n"
	patch := Preview(before, after)
	assert.Contains(t, patch, "@@")

	assert.Empty(t, Preview(before, before))
	assert.Empty(t, Preview("a \r\nb", "a\nb"), "whitespace-only drift is not a change")
}

type reply struct {
	kind    string // "fill", "verdict", "refine"
	content string
	err     error
}

type scriptedProvider struct {
	t       *testing.T
	replies []reply
	calls   int
	prompts []string
}

func (p *scriptedProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.t.Helper()
	if p.calls >= len(p.replies) {
		p.t.Fatalf("unexpected provider call %d", p.calls+1)
	}
	r := p.replies[p.calls]
	p.calls++
	p.prompts = append(p.prompts, req.UserPrompt)

	var kind string
	switch req.SystemPrompt {
	case fillSystemPrompt:
		kind = "fill"
	case verdictSystemPrompt:
		kind = "verdict"
	case refineFillsSystemPrompt:
		kind = "refine"
	default:
		p.t.Fatalf("call %d: unknown system prompt", p.calls)
	}
	if kind != r.kind {
		p.t.Fatalf("call %d: got %s request, scripted %s", p.calls, kind, r.kind)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Response{Content: r.content}, nil
}

const runSpec = `openapi: 3.0.0
info:
  title: Widget Catalog
  version: 1.0.0
paths:
  /widgets:
    get:
      summary: List widgets
      responses:
        '200':
          description: Paged list of catalog widgets
`

const fillsReply = `{
  "info.description": "Manages the widget catalog including creation and search.",
  "paths./widgets.get.description": "Retrieves all widgets with pagination support."
}`

const verdictPass = `{"scores":{"completeness":95,"quality":92,"consistency":90,"accuracy":94,"overall":93},"exit_criteria_met":true}`
const verdictLow = `{"scores":{"completeness":70,"quality":50,"consistency":60,"accuracy":65,"overall":60},"quality_issues":["info.description is vague"],"exit_criteria_met":false}`

func newEnhancer(p llm.Provider, maxIter int) *Enhancer {
	return &Enhancer{
		Provider:      p,
		MaxIterations: maxIter,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_AcceptsFirstGeneration(t *testing.T) {
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: fillsReply},
		{kind: "verdict", content: verdictPass},
	}}
	out, err := newEnhancer(p, 3).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.NoError(t, err)

	assert.Equal(t, 0, out.Iterations)
	assert.Len(t, out.Fills, 2)
	assert.Empty(t, out.Skipped)
	assert.Equal(t, 93, out.Verdict.Scores.Overall)
	assert.Contains(t, string(out.Enhanced), `"Manages the widget catalog including creation and search."`)
	assert.Contains(t, string(out.Enhanced), `"Retrieves all widgets with pagination support."`)
	assert.Contains(t, out.Diff, "@@")
	assert.Equal(t, len(p.replies), p.calls)
}

func TestRun_RefinesBelowThreshold(t *testing.T) {
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: fillsReply},
		{kind: "verdict", content: verdictLow},
		{kind: "refine", content: `{"info.description": "Create, search, and retire widgets in one catalog."}`},
		{kind: "verdict", content: verdictPass},
	}}
	out, err := newEnhancer(p, 3).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1, out.Iterations)
	require.Len(t, out.Fills, 2)
	byPath := map[string]string{}
	for _, f := range out.Fills {
		byPath[f.Path] = f.Value
	}
	assert.Equal(t, "Create, search, and retire widgets in one catalog.", byPath["info.description"])
	assert.Equal(t, "Retrieves all widgets with pagination support.", byPath["paths./widgets.get.description"],
		"unmentioned fills keep their text")
}

func TestRun_ExhaustsBudgetThenApplies(t *testing.T) {
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: fillsReply},
		{kind: "verdict", content: verdictLow},
		{kind: "refine", content: `{}`},
		{kind: "verdict", content: verdictLow},
	}}
	out, err := newEnhancer(p, 1).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, 60, out.Verdict.Scores.Overall)
	assert.Contains(t, string(out.Enhanced), "Manages the widget catalog",
		"the best available fills are still applied after budget runs out")
}

func TestRun_TransientRefineFailureConsumesIteration(t *testing.T) {
	serverErr := &llm.APIError{Provider: "openai", StatusCode: http.StatusInternalServerError, Message: "upstream"}
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: fillsReply},
		{kind: "verdict", content: verdictLow},
		{kind: "refine", err: serverErr},
		{kind: "verdict", content: verdictLow},
	}}
	out, err := newEnhancer(p, 1).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Iterations)
}

func TestRun_NoGapsSkipsProvider(t *testing.T) {
	p := &scriptedProvider{t: t}
	out, err := newEnhancer(p, 3).Run(context.Background(), []byte(completeSpec), "widgets.yaml")
	require.NoError(t, err)

	assert.False(t, out.Report.HasGaps())
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, completeSpec, string(out.Enhanced))
	assert.Empty(t, out.Diff)
}

func TestRun_AuthErrorPropagates(t *testing.T) {
	authErr := &llm.APIError{Provider: "openai", StatusCode: http.StatusUnauthorized, Message: "bad key"}
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", err: authErr},
	}}
	_, err := newEnhancer(p, 3).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.Error(t, err)
	assert.True(t, llm.IsAuthError(err))
}

func TestRun_RedactsSpecInPrompt(t *testing.T) {
	secretSpec := strings.Replace(runSpec,
		"      summary: List widgets",
		"      summary: List widgets\n      x-note: password = hunter2hunter2hunter2", 1)

	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: fillsReply},
		{kind: "verdict", content: verdictPass},
	}}
	out, err := newEnhancer(p, 3).Run(context.Background(), []byte(secretSpec), "widgets.yaml")
	require.NoError(t, err)

	assert.Contains(t, p.prompts[0], "[REDACTED]")
	assert.NotContains(t, p.prompts[0], "hunter2")
	assert.Contains(t, string(out.Enhanced), "hunter2", "the written file keeps its original content")
}

func TestRun_GarbageFillResponse(t *testing.T) {
	p := &scriptedProvider{t: t, replies: []reply{
		{kind: "fill", content: "Sure! Here are some ideas for your API."},
	}}
	_, err := newEnhancer(p, 3).Run(context.Background(), []byte(runSpec), "widgets.yaml")
	require.Error(t, err)
}

func TestVerdictMeets(t *testing.T) {
	v := &Verdict{ExitCriteriaMet: true}
	v.Scores.Overall = 90
	assert.True(t, v.Meets(85))

	v.ExitCriteriaMet = false
	assert.False(t, v.Meets(85), "a high score without the exit assertion does not pass")

	v.ExitCriteriaMet = true
	v.Scores.Overall = 80
	assert.False(t, v.Meets(85))
}
