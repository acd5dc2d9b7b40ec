// Package docgen turns extracted endpoint records into the placeholder data
// and markdown fragments the documentation templates consume, and combines
// rendered endpoint pages into one publishable document.
package docgen

import (
	"fmt"

	"github.com/dshills/oasdoc/internal/openapi"
	"github.com/dshills/oasdoc/internal/template"
)

// Page is one rendered endpoint document.
type Page struct {
	Record     *openapi.EndpointRecord
	Output     string
	Unresolved []string
}

// RenderEndpoint fills the template with one endpoint's data.
func RenderEndpoint(tpl *template.Template, rec *openapi.EndpointRecord, baseURL string) *Page {
	res := tpl.Render(TemplateData(rec, baseURL))
	return &Page{Record: rec, Output: res.Output, Unresolved: res.Unresolved}
}

// RenderAll renders every record against the same template, in order.
func RenderAll(tpl *template.Template, records []openapi.EndpointRecord, baseURL string) []*Page {
	pages := make([]*Page, len(records))
	for i := range records {
		pages[i] = RenderEndpoint(tpl, &records[i], baseURL)
	}
	return pages
}

// TemplateData builds the placeholder map for one endpoint. Key names are
// fixed by the existing template corpus; templates iterate the *_PARAMETERS
// lists with {{#each}} or drop in the pre-rendered *_TABLE strings.
func TemplateData(rec *openapi.EndpointRecord, baseURL string) map[string]any {
	name := rec.Summary
	if name == "" {
		name = fmt.Sprintf("%s %s", rec.Method, rec.Path)
	}
	apiName := rec.Summary
	if apiName == "" {
		apiName = "API Endpoint"
	}

	requestExample := "N/A"
	if rec.RequestBodyExample != nil {
		requestExample = FormatJSON(rec.RequestBodyExample)
	}

	responseExample := "{}"
	if success, ok := rec.SuccessResponse(); ok && success.Example != nil {
		responseExample = FormatJSON(success.Example)
	}

	successStatus := rec.SuccessStatusCode
	if successStatus == "" {
		successStatus = "200"
	}

	return map[string]any{
		"API_NAME":        apiName,
		"ENDPOINT_NAME":   name,
		"HTTP_METHOD":     rec.Method,
		"ENDPOINT_PATH":   rec.Path,
		"API_DESCRIPTION": rec.Description,
		"OPERATION_ID":    rec.OperationID,
		"TAG":             rec.PrimaryTag(),
		"BASE_URL":        baseURL,

		"PATH_PARAMETERS_TABLE":   ParameterTable(rec.PathParams),
		"QUERY_PARAMETERS_TABLE":  ParameterTable(rec.QueryParams),
		"HEADER_PARAMETERS_TABLE": ParameterTable(rec.HeaderParams),
		"REQUEST_BODY_TABLE":      ParameterTable(rec.RequestBodyParams),
		"NESTED_OBJECT_TABLES":    NestedObjectTables(rec.RequestBodySchema),

		"PATH_PARAMETERS":         paramList(rec.PathParams),
		"QUERY_PARAMETERS":        paramList(rec.QueryParams),
		"HEADER_PARAMETERS":       paramList(rec.HeaderParams),
		"REQUEST_BODY_PARAMETERS": paramList(rec.RequestBodyParams),

		"REQUEST_BODY_DESCRIPTION": rec.RequestBodyDescription,
		"REQUEST_BODY_EXAMPLE":     requestExample,
		"RESPONSE_EXAMPLE":         responseExample,
		"SUCCESS_STATUS_CODE":      successStatus,
		"ERROR_RESPONSES":          ErrorResponsesTable(rec.Responses),
		"CURL_EXAMPLE":             CurlExample(rec, baseURL),
	}
}

// paramList exposes parameters to {{#each}} blocks as plain maps.
func paramList(params []openapi.ParameterRecord) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		m := map[string]any{
			"name":        p.Name,
			"type":        p.Type,
			"required":    p.Required,
			"description": p.Description,
		}
		if p.Default != nil {
			m["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			m["enum"] = p.Enum
		}
		out = append(out, m)
	}
	return out
}

// DefaultTemplate documents a single endpoint. It is used when no template
// file is configured and doubles as the reference for the placeholder names
// custom templates can use.
const DefaultTemplate = `## {{ENDPOINT_NAME}}

` + "`{{HTTP_METHOD}} {{ENDPOINT_PATH}}`" + `

{{#if API_DESCRIPTION}}{{API_DESCRIPTION}}

{{/if}}### Path Parameters

{{PATH_PARAMETERS_TABLE}}

### Query Parameters

{{QUERY_PARAMETERS_TABLE}}

### Request Body

{{#if REQUEST_BODY_DESCRIPTION}}{{REQUEST_BODY_DESCRIPTION}}

{{/if}}{{REQUEST_BODY_TABLE}}

{{#if NESTED_OBJECT_TABLES}}{{NESTED_OBJECT_TABLES}}

{{/if}}### Example Request

` + "```bash\n{{CURL_EXAMPLE}}\n```" + `

### Response

**Status:** ` + "`{{SUCCESS_STATUS_CODE}}`" + `

` + "```json\n{{RESPONSE_EXAMPLE}}\n```" + `

### Error Responses

{{ERROR_RESPONSES}}
`
