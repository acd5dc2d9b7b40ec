package profile

func reference() *Profile {
	return &Profile{
		Name: "reference",
		RequiredSections: []string{
			"Parameters", "Response", "Example Request",
		},
		ForbiddenPhrases: []string{
			"TODO", "TBD", "lorem ipsum", "INSERT_DESCRIPTION",
			"description goes here", "coming soon",
		},
		StyleRules: []string{
			"Every endpoint heading must name the HTTP method and path",
			"Parameter tables must state name, type, required flag, and description",
			"Every code fence must declare a language",
			"Request examples must use curl with a complete URL",
			"Response examples must be valid JSON",
		},
	}
}
