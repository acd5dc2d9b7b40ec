package llm

import (
	"fmt"
	"strings"

	"github.com/dshills/oasdoc/internal/profile"
	"github.com/dshills/oasdoc/internal/quality"
)

const validationSystemPromptBase = `You are a technical documentation auditor. Your job is to score generated API reference pages against the endpoint data they were built from.

Scoring criteria (0-100 each):
- completeness: every endpoint, parameter, status code, and example from the source data appears in the page
- template_coverage: every template placeholder was replaced with real content
- code_quality: request and response samples are syntactically valid and consistent with the documented schemas
- markdown_syntax: headings, tables, links, and code fences are well-formed

Scoring rules:
- overall is your holistic judgment of publish-readiness, not a mechanical average
- A page containing unreplaced {{placeholder}} markers must not score above 60 on template_coverage
- exit_criteria_met is true only when the page could be published without further edits

Output rules:
- Return JSON only: no prose, no markdown fences, no explanation
- JSON must match the provided schema exactly
- Scores outside 0-100 are invalid`

const refinementSystemPrompt = `You are a technical documentation editor. You receive an API reference page together with reviewer findings. Rewrite the page so every finding is addressed.

Rules:
- Return the complete corrected markdown document, not a diff and not a summary of changes
- Preserve all content the reviewer did not flag
- Replace every remaining {{placeholder}} marker with concrete content derived from the surrounding context
- Keep the existing heading structure and ordering
- Do not wrap the output in markdown fences`

const scoreSchemaExample = `{
  "scores": {
    "completeness": 85,
    "template_coverage": 90,
    "code_quality": 80,
    "markdown_syntax": 95,
    "overall": 87
  },
  "missing_placeholders": ["{{endpoint_description}}"],
  "improvement_suggestions": ["Document the 404 response for GET /widgets/{id}"],
  "exit_criteria_met": false
}`

// BuildValidationSystemPrompt constructs the scoring system prompt with
// optional profile rules appended.
func BuildValidationSystemPrompt(p *profile.Profile) string {
	var sb strings.Builder
	sb.WriteString(validationSystemPromptBase)

	if p != nil {
		rules := p.FormatRulesForPrompt()
		if rules != "" {
			sb.WriteString("\n\n")
			sb.WriteString(rules)
		}
	}

	return sb.String()
}

// BuildValidationUserPrompt constructs the user prompt carrying the rendered
// page, the source spec it was built from, and the score schema example.
// unresolved lists placeholder names the renderer could not fill; passing them
// along keeps the model honest about template_coverage.
func BuildValidationUserPrompt(doc, sourceName, specContent string, unresolved []string) string {
	var sb strings.Builder

	sb.WriteString("Score the following generated API documentation.\n\n")

	sb.WriteString(fmt.Sprintf("<documentation source=%q>\n", sourceName))
	sb.WriteString(doc)
	if !strings.HasSuffix(doc, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("</documentation>\n")

	if specContent != "" {
		sb.WriteString("\n<spec>\n")
		sb.WriteString(specContent)
		if !strings.HasSuffix(specContent, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("</spec>\n")
	}

	if len(unresolved) > 0 {
		sb.WriteString("\nThe renderer reported these unreplaced placeholders:\n")
		for _, name := range unresolved {
			sb.WriteString(fmt.Sprintf("- {{%s}}\n", name))
		}
	}

	sb.WriteString("\nReturn your assessment as JSON with this structure:\n")
	sb.WriteString(scoreSchemaExample)

	return sb.String()
}

// BuildRefinementSystemPrompt returns the editor system prompt.
func BuildRefinementSystemPrompt() string {
	return refinementSystemPrompt
}

// BuildRefinementUserPrompt constructs the user prompt carrying the current
// page, the reviewer findings from the last validation pass, and the source
// spec for reference.
func BuildRefinementUserPrompt(doc string, score *quality.Score, specContent string) string {
	var sb strings.Builder

	sb.WriteString("Improve the following API documentation based on reviewer findings.\n\n")

	sb.WriteString("<documentation>\n")
	sb.WriteString(doc)
	if !strings.HasSuffix(doc, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("</documentation>\n")

	if specContent != "" {
		sb.WriteString("\n<spec>\n")
		sb.WriteString(specContent)
		if !strings.HasSuffix(specContent, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("</spec>\n")
	}

	sb.WriteString("\nReviewer scores:\n")
	for _, m := range score.Metrics() {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", m.Name, m.Value))
	}

	if len(score.MissingPlaceholders) > 0 {
		sb.WriteString("\nUnreplaced placeholders:\n")
		for _, name := range score.MissingPlaceholders {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
	}

	if len(score.ImprovementSuggestions) > 0 {
		sb.WriteString("\nImprovement suggestions:\n")
		for _, s := range score.ImprovementSuggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	sb.WriteString("\nReturn the complete improved markdown document.\n")

	return sb.String()
}
