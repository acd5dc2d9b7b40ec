package docgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/oasdoc/internal/openapi"
)

// noneCell is rendered in place of an empty table so templates never show a
// bare heading with nothing under it.
const noneCell = "_None_"

// maxEnumValues caps how many allowed values a description lists.
const maxEnumValues = 5

// ParameterTable renders parameters as a markdown table. Object-typed
// parameters with a named schema link to that schema's dropdown anchor.
func ParameterTable(params []openapi.ParameterRecord) string {
	if len(params) == 0 {
		return noneCell
	}

	var b strings.Builder
	b.WriteString("| Parameter | Type | Required | Description |\n")
	b.WriteString("|-----------|------|----------|-------------|\n")

	for _, p := range params {
		typeCell := p.Type
		if p.SchemaName != "" && strings.Contains(p.Type, "object") {
			typeCell = fmt.Sprintf("[%s](#%s)", p.SchemaName, schemaAnchor(p.SchemaName))
		}

		desc := cellText(p.Description)
		if p.Default != nil {
			desc += fmt.Sprintf(" (Default: `%v`)", p.Default)
		}
		if len(p.Enum) > 0 {
			values := p.Enum
			if len(values) > maxEnumValues {
				values = values[:maxEnumValues]
			}
			quoted := make([]string, len(values))
			for i, v := range values {
				quoted[i] = fmt.Sprintf("`%v`", v)
			}
			desc += " Allowed values: " + strings.Join(quoted, ", ")
		}

		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, typeCell, requiredCell(p.Required), strings.TrimSpace(desc))
	}

	return b.String()
}

// ErrorResponsesTable renders the non-2xx responses sorted by status code.
// The template supplies the section heading.
func ErrorResponsesTable(responses []openapi.ResponseRecord) string {
	var errors []openapi.ResponseRecord
	for _, r := range responses {
		if !strings.HasPrefix(r.StatusCode, "2") {
			errors = append(errors, r)
		}
	}
	if len(errors) == 0 {
		return noneCell
	}

	// Declared order is preserved on the record; error tables read better sorted.
	sort.Slice(errors, func(i, j int) bool { return errors[i].StatusCode < errors[j].StatusCode })

	var b strings.Builder
	b.WriteString("| Status Code | Description |\n")
	b.WriteString("|-------------|-------------|\n")
	for _, r := range errors {
		desc := cellText(r.Description)
		if desc == "" {
			desc = "Error"
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", r.StatusCode, desc)
	}
	return b.String()
}

// NestedObjectTables renders one <details> dropdown per named object schema
// reachable from the given schema's properties, deduplicated by name. The
// dropdowns let parameter tables link object types without flattening whole
// trees into the primary table.
func NestedObjectTables(schema *openapi.SchemaNode) string {
	if schema == nil {
		return ""
	}

	var blocks []string
	seen := map[string]bool{}

	var walk func(n *openapi.SchemaNode)
	walk = func(n *openapi.SchemaNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case openapi.KindArray:
			walk(n.Items)
		case openapi.KindObject:
			for _, p := range n.Properties {
				target := p.Schema
				if target == nil {
					continue
				}
				if target.Kind == openapi.KindArray {
					target = target.Items
				}
				if target == nil || target.Kind != openapi.KindObject || len(target.Properties) == 0 {
					continue
				}
				name := target.Name()
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				blocks = append(blocks, objectDropdown(name, target))
				walk(target)
			}
		}
	}
	walk(schema)

	return strings.Join(blocks, "\n\n")
}

func objectDropdown(name string, schema *openapi.SchemaNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<details>\n<summary><strong>%s Object</strong></summary>\n\n", name)
	b.WriteString("| Parameter | Type | Required | Description |\n")
	b.WriteString("|-----------|------|----------|-------------|\n")
	for _, p := range schema.Properties {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			p.Name, p.Schema.TypeLabel(), requiredCell(schema.IsRequired(p.Name)), cellText(p.Schema.Description))
	}
	b.WriteString("\n</details>")
	return b.String()
}

// schemaAnchor converts a schema name to the dropdown anchor used in links.
func schemaAnchor(name string) string {
	return "schema-" + strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

func requiredCell(required bool) string {
	if required {
		return "✓ Yes"
	}
	return "No"
}

// cellText makes free text safe inside a table cell: newlines become spaces
// and pipes are escaped.
func cellText(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return strings.ReplaceAll(s, "|", "\\|")
}
