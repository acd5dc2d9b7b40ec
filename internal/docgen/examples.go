package docgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/oasdoc/internal/openapi"
)

// FormatJSON renders a value as indented JSON for a fenced code block.
// Values that cannot be marshaled render as "{}" rather than breaking the
// surrounding document.
func FormatJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// CurlExample builds a runnable curl command for the endpoint. Path
// parameters stay in {braces} so readers see where their values go; the
// auth header uses a placeholder the redaction rules are known to keep.
func CurlExample(rec *openapi.EndpointRecord, baseURL string) string {
	if baseURL == "" {
		baseURL = "https://api.example.com"
	}
	url := strings.TrimSuffix(baseURL, "/") + rec.Path
	if q := exampleQuery(rec.QueryParams); q != "" {
		url += "?" + q
	}

	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s \"%s\" \\\n", rec.Method, url)
	b.WriteString("  -H \"Authorization: Bearer YOUR_API_KEY\"")

	if rec.RequestBodyExample != nil {
		b.WriteString(" \\\n  -H \"Content-Type: application/json\" \\\n")
		body, err := json.Marshal(rec.RequestBodyExample)
		if err != nil {
			body = []byte("{}")
		}
		fmt.Fprintf(&b, "  -d '%s'", string(body))
	}

	return b.String()
}

// exampleQuery joins the required query parameters into a sample query
// string. Optional parameters are left out to keep the example minimal.
func exampleQuery(params []openapi.ParameterRecord) string {
	var parts []string
	for _, p := range params {
		if !p.Required {
			continue
		}
		value := "{" + p.Name + "}"
		if p.Default != nil {
			value = fmt.Sprintf("%v", p.Default)
		} else if len(p.Enum) > 0 {
			value = fmt.Sprintf("%v", p.Enum[0])
		}
		parts = append(parts, p.Name+"="+value)
	}
	return strings.Join(parts, "&")
}
