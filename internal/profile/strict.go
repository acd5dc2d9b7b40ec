package profile

func strict() *Profile {
	return &Profile{
		Name: "strict",
		RequiredSections: []string{
			"Parameters", "Request Body", "Response", "Example Request",
			"Error Responses",
		},
		ForbiddenPhrases: []string{
			"TODO", "TBD", "lorem ipsum", "INSERT_DESCRIPTION",
			"description goes here", "coming soon", "example-string",
			"as needed", "as appropriate",
		},
		StyleRules: []string{
			"Every endpoint heading must name the HTTP method and path",
			"Parameter tables must state name, type, required flag, and description",
			"Every parameter description must be a full sentence",
			"Every code fence must declare a language",
			"Request examples must use curl with a complete URL and all required headers",
			"Response examples must be valid JSON matching the documented schema",
			"Every 4xx and 5xx response must state when it occurs",
		},
	}
}
