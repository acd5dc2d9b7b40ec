package docgen

import (
	"strings"
	"testing"

	"github.com/dshills/oasdoc/internal/openapi"
	"github.com/dshills/oasdoc/internal/template"
)

func TestParameterTable_Empty(t *testing.T) {
	if got := ParameterTable(nil); got != "_None_" {
		t.Errorf("ParameterTable(nil) = %q", got)
	}
}

func TestParameterTable_RowFormat(t *testing.T) {
	params := []openapi.ParameterRecord{
		{Name: "id", Type: "string (uuid)", Required: true, Description: "Widget identifier"},
		{Name: "limit", Type: "integer", Description: "Page size", Default: 20},
	}
	got := ParameterTable(params)

	if !strings.Contains(got, "| Parameter | Type | Required | Description |") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "| `id` | string (uuid) | ✓ Yes | Widget identifier |") {
		t.Errorf("missing id row: %q", got)
	}
	if !strings.Contains(got, "| `limit` | integer | No | Page size (Default: `20`) |") {
		t.Errorf("missing limit row with default: %q", got)
	}
}

func TestParameterTable_EnumCappedAtFive(t *testing.T) {
	params := []openapi.ParameterRecord{
		{Name: "state", Type: "string", Enum: []any{"a", "b", "c", "d", "e", "f", "g"}},
	}
	got := ParameterTable(params)

	if !strings.Contains(got, "Allowed values: `a`, `b`, `c`, `d`, `e`") {
		t.Errorf("enum values not listed: %q", got)
	}
	if strings.Contains(got, "`f`") {
		t.Errorf("enum list should cap at five values: %q", got)
	}
}

func TestParameterTable_EscapesPipesAndNewlines(t *testing.T) {
	params := []openapi.ParameterRecord{
		{Name: "q", Type: "string", Description: "Either a|b\nor c"},
	}
	got := ParameterTable(params)

	if !strings.Contains(got, `Either a\|b or c`) {
		t.Errorf("cell not escaped: %q", got)
	}
}

func TestParameterTable_ObjectLinksToSchemaDropdown(t *testing.T) {
	params := []openapi.ParameterRecord{
		{Name: "owner", Type: "object", SchemaName: "Owner"},
	}
	got := ParameterTable(params)

	if !strings.Contains(got, "[Owner](#schema-owner)") {
		t.Errorf("object parameter should link to schema anchor: %q", got)
	}
}

func TestErrorResponsesTable_FiltersAndSorts(t *testing.T) {
	responses := []openapi.ResponseRecord{
		{StatusCode: "500", Description: "Server error"},
		{StatusCode: "200", Description: "OK"},
		{StatusCode: "404", Description: "Not found"},
		{StatusCode: "400"},
	}
	got := ErrorResponsesTable(responses)

	if strings.Contains(got, "200") {
		t.Errorf("success code leaked into error table: %q", got)
	}
	i400 := strings.Index(got, "`400`")
	i404 := strings.Index(got, "`404`")
	i500 := strings.Index(got, "`500`")
	if !(i400 < i404 && i404 < i500) {
		t.Errorf("error codes not sorted: %q", got)
	}
	if !strings.Contains(got, "| `400` | Error |") {
		t.Errorf("empty description should fall back to Error: %q", got)
	}
}

func TestErrorResponsesTable_NoErrors(t *testing.T) {
	responses := []openapi.ResponseRecord{{StatusCode: "200", Description: "OK"}}
	if got := ErrorResponsesTable(responses); got != "_None_" {
		t.Errorf("ErrorResponsesTable = %q", got)
	}
}

func ownerSchema() *openapi.SchemaNode {
	return &openapi.SchemaNode{
		Kind: openapi.KindObject,
		Type: "object",
		Ref:  "#/components/schemas/Owner",
		Properties: []openapi.Property{
			{Name: "name", Schema: &openapi.SchemaNode{Kind: openapi.KindScalar, Type: "string", Description: "Full name"}},
			{Name: "email", Schema: &openapi.SchemaNode{Kind: openapi.KindScalar, Type: "string", Format: "email"}},
		},
		Required: []string{"name"},
	}
}

func TestNestedObjectTables_NamedObjectDropdown(t *testing.T) {
	body := &openapi.SchemaNode{
		Kind: openapi.KindObject,
		Type: "object",
		Properties: []openapi.Property{
			{Name: "title", Schema: &openapi.SchemaNode{Kind: openapi.KindScalar, Type: "string"}},
			{Name: "owner", Schema: ownerSchema()},
		},
	}
	got := NestedObjectTables(body)

	if !strings.Contains(got, "<summary><strong>Owner Object</strong></summary>") {
		t.Errorf("missing dropdown summary: %q", got)
	}
	if !strings.Contains(got, "| `name` | string | ✓ Yes | Full name |") {
		t.Errorf("missing property row: %q", got)
	}
	if !strings.Contains(got, "| `email` | string (email) | No |") {
		t.Errorf("missing email row: %q", got)
	}
}

func TestNestedObjectTables_DeduplicatesRepeatedSchema(t *testing.T) {
	body := &openapi.SchemaNode{
		Kind: openapi.KindObject,
		Type: "object",
		Properties: []openapi.Property{
			{Name: "owner", Schema: ownerSchema()},
			{Name: "previous_owner", Schema: ownerSchema()},
		},
	}
	got := NestedObjectTables(body)

	if strings.Count(got, "Owner Object") != 1 {
		t.Errorf("repeated schema should render one dropdown: %q", got)
	}
}

func TestNestedObjectTables_ArrayOfNamedObjects(t *testing.T) {
	body := &openapi.SchemaNode{
		Kind: openapi.KindObject,
		Type: "object",
		Properties: []openapi.Property{
			{Name: "owners", Schema: &openapi.SchemaNode{
				Kind:  openapi.KindArray,
				Type:  "array",
				Items: ownerSchema(),
			}},
		},
	}
	got := NestedObjectTables(body)

	if !strings.Contains(got, "Owner Object") {
		t.Errorf("array item schema should produce a dropdown: %q", got)
	}
}

func TestNestedObjectTables_InlineObjectsSkipped(t *testing.T) {
	body := &openapi.SchemaNode{
		Kind: openapi.KindObject,
		Type: "object",
		Properties: []openapi.Property{
			{Name: "meta", Schema: &openapi.SchemaNode{
				Kind: openapi.KindObject,
				Type: "object",
				Properties: []openapi.Property{
					{Name: "key", Schema: &openapi.SchemaNode{Kind: openapi.KindScalar, Type: "string"}},
				},
			}},
		},
	}
	if got := NestedObjectTables(body); got != "" {
		t.Errorf("unnamed inline object should not get a dropdown: %q", got)
	}
}

func sampleRecord() *openapi.EndpointRecord {
	return &openapi.EndpointRecord{
		Path:        "/widgets/{id}",
		Method:      "PUT",
		OperationID: "updateWidget",
		Summary:     "Update a widget",
		Description: "Replaces the widget.",
		Tags:        []string{"Widgets"},
		PathParams: []openapi.ParameterRecord{
			{Name: "id", Type: "string (uuid)", Required: true, Description: "Widget identifier"},
		},
		QueryParams: []openapi.ParameterRecord{
			{Name: "dry_run", Type: "boolean", Description: "Validate only"},
		},
		RequestBodyExample: map[string]any{"name": "Example Name"},
		Responses: []openapi.ResponseRecord{
			{StatusCode: "200", Description: "Updated", Example: map[string]any{"id": "w_1"}},
			{StatusCode: "404", Description: "Not found"},
		},
		SuccessStatusCode: "200",
	}
}

func TestCurlExample_WithBody(t *testing.T) {
	got := CurlExample(sampleRecord(), "https://api.widgets.dev/")

	if !strings.Contains(got, `curl -X PUT "https://api.widgets.dev/widgets/{id}"`) {
		t.Errorf("curl line wrong: %q", got)
	}
	if !strings.Contains(got, `-H "Authorization: Bearer YOUR_API_KEY"`) {
		t.Errorf("missing auth header: %q", got)
	}
	if !strings.Contains(got, `-H "Content-Type: application/json"`) {
		t.Errorf("missing content type: %q", got)
	}
	if !strings.Contains(got, `-d '{"name":"Example Name"}'`) {
		t.Errorf("missing body: %q", got)
	}
}

func TestCurlExample_GetWithRequiredQuery(t *testing.T) {
	rec := &openapi.EndpointRecord{
		Path:   "/widgets",
		Method: "GET",
		QueryParams: []openapi.ParameterRecord{
			{Name: "state", Type: "string", Required: true, Enum: []any{"active", "retired"}},
			{Name: "limit", Type: "integer"},
		},
	}
	got := CurlExample(rec, "")

	if !strings.Contains(got, `"https://api.example.com/widgets?state=active"`) {
		t.Errorf("required query parameter missing from URL: %q", got)
	}
	if strings.Contains(got, "limit=") {
		t.Errorf("optional parameter should be omitted: %q", got)
	}
	if strings.Contains(got, "Content-Type") {
		t.Errorf("bodyless request should not set content type: %q", got)
	}
}

func TestTemplateData_Fallbacks(t *testing.T) {
	rec := &openapi.EndpointRecord{Path: "/health", Method: "GET", Tags: []string{openapi.UntaggedGroup}}
	data := TemplateData(rec, "https://api.example.com")

	if data["ENDPOINT_NAME"] != "GET /health" {
		t.Errorf("ENDPOINT_NAME = %v", data["ENDPOINT_NAME"])
	}
	if data["REQUEST_BODY_EXAMPLE"] != "N/A" {
		t.Errorf("REQUEST_BODY_EXAMPLE = %v", data["REQUEST_BODY_EXAMPLE"])
	}
	if data["RESPONSE_EXAMPLE"] != "{}" {
		t.Errorf("RESPONSE_EXAMPLE = %v", data["RESPONSE_EXAMPLE"])
	}
	if data["SUCCESS_STATUS_CODE"] != "200" {
		t.Errorf("SUCCESS_STATUS_CODE = %v", data["SUCCESS_STATUS_CODE"])
	}
	if data["TAG"] != openapi.UntaggedGroup {
		t.Errorf("TAG = %v", data["TAG"])
	}
}

func TestRenderEndpoint_DefaultTemplateResolvesFully(t *testing.T) {
	tpl, err := template.Parse(DefaultTemplate)
	if err != nil {
		t.Fatalf("Parse(DefaultTemplate): %v", err)
	}

	page := RenderEndpoint(tpl, sampleRecord(), "https://api.widgets.dev")
	if len(page.Unresolved) != 0 {
		t.Errorf("default template left unresolved placeholders: %v", page.Unresolved)
	}
	if !strings.Contains(page.Output, "## Update a widget") {
		t.Errorf("missing endpoint heading: %q", page.Output)
	}
	if !strings.Contains(page.Output, "`PUT /widgets/{id}`") {
		t.Errorf("missing method line: %q", page.Output)
	}
	if !strings.Contains(page.Output, "```bash\ncurl -X PUT") {
		t.Errorf("missing curl block: %q", page.Output)
	}
	if !strings.Contains(page.Output, "| `404` | Not found |") {
		t.Errorf("missing error table row: %q", page.Output)
	}
}

func TestCombine_StructureAndTOC(t *testing.T) {
	doc := mustDocument(t, `
openapi: 3.0.0
info:
  title: Widgets
  version: 2.1.0
  description: Manage widgets.
paths: {}
`)

	pages := []*Page{
		{Output: "## Update a widget\n\nbody one\n\n---"},
		{Output: "## List widgets\n\nbody two"},
	}
	got := Combine(doc, pages)

	if !strings.HasPrefix(got, "# Widgets API\n") {
		t.Errorf("missing title: %q", got)
	}
	if !strings.Contains(got, "> **Version:** 2.1.0") {
		t.Errorf("missing version blockquote: %q", got)
	}
	if !strings.Contains(got, "> Manage widgets.") {
		t.Errorf("missing description blockquote: %q", got)
	}
	if !strings.Contains(got, "1. [Update a widget](#update-a-widget)") {
		t.Errorf("missing first TOC entry: %q", got)
	}
	if !strings.Contains(got, "2. [List widgets](#list-widgets)") {
		t.Errorf("missing second TOC entry: %q", got)
	}
	// The page's own trailing rule must not double up with the separator.
	if strings.Contains(got, "---\n\n\n\n---") || strings.Contains(got, "---\n\n---\n\n---") {
		t.Errorf("duplicated separators: %q", got)
	}
	if strings.Count(got, "body one") != 1 || strings.Count(got, "body two") != 1 {
		t.Errorf("page bodies mangled: %q", got)
	}
}

func TestHeadingAnchor(t *testing.T) {
	cases := map[string]string{
		"Update a widget":    "update-a-widget",
		"GET /widgets/{id}":  "get-widgetsid",
		"  Spaced   Out  ":   "spaced-out",
		"Already-hyphenated": "already-hyphenated",
	}
	for in, want := range cases {
		if got := headingAnchor(in); got != want {
			t.Errorf("headingAnchor(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustDocument(t *testing.T, text string) *openapi.Document {
	t.Helper()
	var diags openapi.Diagnostics
	doc, err := openapi.Parse([]byte(text), &diags)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}
