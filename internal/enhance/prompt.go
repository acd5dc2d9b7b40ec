package enhance

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fillSystemPrompt = `You are an expert API documentation writer filling gaps in an OpenAPI specification.

Rules:
- Write one or two sentences per description. Present tense, specific, professional.
- Titles are short noun phrases (2-5 words) naming what the API does.
- Versions use semantic version format, for example "1.0.0".
- Describe what each field does or represents; never just restate the field name.
- Return JSON only: a single object mapping each requested path to its description string.
- Use exactly the paths given. Do not invent paths and do not add commentary.`

const verdictSystemPrompt = `You are an expert API documentation reviewer evaluating generated descriptions for an OpenAPI specification.

Score each criterion 0-100:
1. completeness: were all identified gaps addressed?
2. quality: are descriptions meaningful, clear, and of appropriate length?
3. consistency: do descriptions follow professional API documentation standards?
4. accuracy: do descriptions accurately reflect what each field represents?

The overall score is the weighted average: completeness*0.4 + quality*0.3 + consistency*0.2 + accuracy*0.1.
exit_criteria_met is true only when the descriptions could be merged as-is.

Return JSON only - no prose, no code fences.`

const refineFillsSystemPrompt = `You are an expert API documentation writer improving descriptions based on review feedback.

Rules:
- Improve only the descriptions the feedback flags; leave good ones out of your answer.
- Keep the same paths as the input.
- Return JSON only: an object mapping each improved path to its new description.`

const verdictSchemaExample = `{
  "scores": {
    "completeness": 90,
    "quality": 85,
    "consistency": 88,
    "accuracy": 92,
    "overall": 89
  },
  "missing_enhancements": [],
  "quality_issues": ["paths./widgets.get.description is vague"],
  "suggestions": ["name the returned fields"],
  "exit_criteria_met": false
}`

// buildFillUserPrompt carries the (already redacted) spec and the gap list.
// Line numbers anchor each gap so the model can read the surrounding context.
func buildFillUserPrompt(specContent, source string, report *Report) string {
	var sb strings.Builder

	sb.WriteString("Fill the missing descriptions in this OpenAPI specification.\n\n")

	sb.WriteString(fmt.Sprintf("<spec file=%q>\n", source))
	sb.WriteString(specContent)
	if !strings.HasSuffix(specContent, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("</spec>\n\n")

	sb.WriteString("Fields needing descriptions:\n")
	for _, g := range report.Gaps {
		sb.WriteString(fmt.Sprintf("- %s (%s, line %d)\n", g.Path, g.Detail, g.Line))
	}

	sb.WriteString("\nReturn a JSON object mapping each path above to its new description.\n")
	return sb.String()
}

func buildVerdictUserPrompt(fills []Fill, report *Report) string {
	var sb strings.Builder

	sb.WriteString("Evaluate the quality of these generated descriptions.\n\n")
	sb.WriteString(fmt.Sprintf("Gaps identified: %d\nDescriptions generated: %d\n\n", report.Count(), len(fills)))

	sb.WriteString("Generated descriptions:\n")
	sb.WriteString(fillsJSON(fills))
	sb.WriteString("\n\nReturn your assessment as JSON with this structure:\n")
	sb.WriteString(verdictSchemaExample)
	return sb.String()
}

func buildRefineFillsUserPrompt(fills []Fill, verdict *Verdict) string {
	var sb strings.Builder

	sb.WriteString("Improve these descriptions based on the review feedback.\n\n")
	sb.WriteString("Current descriptions:\n")
	sb.WriteString(fillsJSON(fills))
	sb.WriteString("\n")

	if len(verdict.QualityIssues) > 0 {
		sb.WriteString("\nQuality issues:\n")
		for _, issue := range verdict.QualityIssues {
			sb.WriteString("- " + issue + "\n")
		}
	}
	if len(verdict.MissingEnhancements) > 0 {
		sb.WriteString("\nStill missing:\n")
		for _, m := range verdict.MissingEnhancements {
			sb.WriteString("- " + m + "\n")
		}
	}
	if len(verdict.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range verdict.Suggestions {
			sb.WriteString("- " + s + "\n")
		}
	}

	sb.WriteString("\nReturn the improved descriptions as a JSON object with the same paths.\n")
	return sb.String()
}

func fillsJSON(fills []Fill) string {
	m := make(map[string]string, len(fills))
	for _, f := range fills {
		m[f.Path] = f.Value
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
