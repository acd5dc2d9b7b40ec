package quality

// Score is one validation verdict over a rendered document. All five
// metrics are 0-100. A fresh Score is produced each iteration and evaluated
// independently; scores are never merged or accumulated across iterations.
type Score struct {
	Completeness     int `json:"completeness"`
	TemplateCoverage int `json:"template_coverage"`
	CodeQuality      int `json:"code_quality"`
	MarkdownSyntax   int `json:"markdown_syntax"`
	Overall          int `json:"overall"`

	ExitCriteriaMet        bool     `json:"exit_criteria_met"`
	MissingPlaceholders    []string `json:"missing_placeholders,omitempty"`
	ImprovementSuggestions []string `json:"improvement_suggestions,omitempty"`
}

// Metric is one named score for feedback rendering.
type Metric struct {
	Name  string
	Value int
}

// Metrics returns the named metric values in report order.
func (s *Score) Metrics() []Metric {
	return []Metric{
		{"completeness", s.Completeness},
		{"template_coverage", s.TemplateCoverage},
		{"code_quality", s.CodeQuality},
		{"markdown_syntax", s.MarkdownSyntax},
		{"overall", s.Overall},
	}
}

// Meets reports whether this score passes: the overall metric reaches the
// threshold AND the validator asserted its exit criteria. Both are required;
// a high score with unmet criteria keeps refining.
func (s *Score) Meets(threshold int) bool {
	return s.Overall >= threshold && s.ExitCriteriaMet
}

// Weakest returns the lowest-scoring metric, used to focus refinement
// feedback. The overall metric is excluded because it aggregates the others.
func (s *Score) Weakest() Metric {
	metrics := s.Metrics()
	weakest := metrics[0]
	for _, m := range metrics[:4] {
		if m.Value < weakest.Value {
			weakest = m
		}
	}
	return weakest
}
