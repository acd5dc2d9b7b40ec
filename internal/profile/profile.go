package profile

import (
	"fmt"
	"strings"
)

// Profile defines the rubric for a named documentation standard. Its rules
// are injected into the validator's system prompt and steer how strictly a
// page is scored.
type Profile struct {
	Name             string
	RequiredSections []string
	ForbiddenPhrases []string
	StyleRules       []string
}

// Get returns the built-in profile for the given name.
func Get(name string) (*Profile, error) {
	switch name {
	case "reference", "":
		return reference(), nil
	case "minimal":
		return minimal(), nil
	case "strict":
		return strict(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q: valid profiles are reference, minimal, strict", name)
	}
}

// FormatRulesForPrompt returns a string suitable for injection into the LLM system prompt.
func (p *Profile) FormatRulesForPrompt() string {
	if len(p.RequiredSections) == 0 && len(p.ForbiddenPhrases) == 0 && len(p.StyleRules) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Documentation standard: %s\n", p.Name))

	if len(p.RequiredSections) > 0 {
		sb.WriteString("\nRequired sections (lower completeness when absent):\n")
		for _, s := range p.RequiredSections {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	if len(p.ForbiddenPhrases) > 0 {
		sb.WriteString("\nForbidden placeholder phrases (treat as unreplaced content):\n")
		for _, ph := range p.ForbiddenPhrases {
			sb.WriteString(fmt.Sprintf("- %q\n", ph))
		}
	}

	if len(p.StyleRules) > 0 {
		sb.WriteString("\nStyle rules (lower code_quality or markdown_syntax when violated):\n")
		for _, r := range p.StyleRules {
			sb.WriteString(fmt.Sprintf("- %s\n", r))
		}
	}

	return sb.String()
}
