package profile

import (
	"strings"
	"testing"
)

func TestGet_AllNamedProfiles(t *testing.T) {
	names := []string{"reference", "minimal", "strict"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p, err := Get(name)
			if err != nil {
				t.Fatalf("Get(%q): %v", name, err)
			}
			if p == nil {
				t.Fatalf("Get(%q) returned nil profile", name)
			}
			if p.Name == "" {
				t.Errorf("profile name is empty")
			}
		})
	}
}

func TestGet_EmptyNameReturnsReference(t *testing.T) {
	p, err := Get("")
	if err != nil {
		t.Fatalf("Get(''): %v", err)
	}
	if p.Name != "reference" {
		t.Errorf("expected reference, got %q", p.Name)
	}
}

func TestGet_UnknownName(t *testing.T) {
	_, err := Get("nonexistent-profile")
	if err == nil {
		t.Error("expected error for unknown profile, got nil")
	}
}

func TestFormatRulesForPrompt_ContainsStyleRules(t *testing.T) {
	p, _ := Get("reference")
	rules := p.FormatRulesForPrompt()
	if !strings.Contains(rules, "curl") {
		t.Errorf("expected reference style rules in prompt rules: %q", rules)
	}
}

func TestFormatRulesForPrompt_MinimalHasNoRequiredSections(t *testing.T) {
	p, _ := Get("minimal")
	rules := p.FormatRulesForPrompt()
	if rules == "" {
		t.Error("expected non-empty rules for minimal profile")
	}
	if strings.Contains(rules, "Required sections") {
		t.Errorf("minimal profile should not list required sections: %q", rules)
	}
}

func TestFormatRulesForPrompt_StrictIsSuperset(t *testing.T) {
	ref, _ := Get("reference")
	str, _ := Get("strict")
	if len(str.RequiredSections) <= len(ref.RequiredSections) {
		t.Errorf("strict should require more sections than reference: %d vs %d",
			len(str.RequiredSections), len(ref.RequiredSections))
	}
}
