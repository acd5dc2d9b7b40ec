package profile

func minimal() *Profile {
	return &Profile{
		Name: "minimal",
		ForbiddenPhrases: []string{
			"TODO", "TBD", "lorem ipsum",
		},
		StyleRules: []string{
			"Every endpoint must name its HTTP method and path",
			"At least one request example per endpoint",
		},
	}
}
