package example

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/oasdoc/internal/openapi"
)

// maxOptionalProps bounds how many non-required object properties appear in
// a synthesized example, keeping generated payloads scannable.
const maxOptionalProps = 3

// Synthesizer produces representative example values for resolved schemas.
// Output is always deterministic for a given schema, with identifier-style
// strings drawn from a UUIDv5 of the property name rather than random, so
// repeated extraction of the same document yields identical examples.
type Synthesizer struct{}

// New returns a Synthesizer. It satisfies openapi.ExampleSynthesizer.
func New() *Synthesizer { return &Synthesizer{} }

// Synthesize returns an example value for n. Priority: an explicit example
// on the node, then the first enum value, then recursion into object
// properties and array items, then a type-driven scalar default. Circular
// and unresolved placeholders synthesize to nil, which guarantees
// termination on self-referential schemas. The result contains only
// JSON-serializable values.
func (s *Synthesizer) Synthesize(n *openapi.SchemaNode) any {
	return s.value(n, "")
}

func (s *Synthesizer) value(n *openapi.SchemaNode, name string) any {
	if n == nil {
		return nil
	}
	if n.Example != nil {
		return n.Example
	}
	if len(n.Enum) > 0 {
		return n.Enum[0]
	}

	switch n.Kind {
	case openapi.KindUnresolved:
		return nil
	case openapi.KindObject:
		return s.object(n)
	case openapi.KindArray:
		item := s.value(n.Items, name)
		if item == nil && n.Items != nil && n.Items.Kind == openapi.KindUnresolved {
			return []any{}
		}
		return []any{item}
	case openapi.KindScalar:
		return scalarValue(n, name)
	}
	return nil
}

// object synthesizes required properties first, then up to maxOptionalProps
// optional ones, preserving declaration order within each group.
func (s *Synthesizer) object(n *openapi.SchemaNode) any {
	out := make(map[string]any)
	optional := 0
	for _, p := range n.Properties {
		if n.IsRequired(p.Name) {
			out[p.Name] = s.value(p.Schema, p.Name)
		}
	}
	for _, p := range n.Properties {
		if n.IsRequired(p.Name) {
			continue
		}
		if optional >= maxOptionalProps {
			break
		}
		out[p.Name] = s.value(p.Schema, p.Name)
		optional++
	}
	return out
}

func scalarValue(n *openapi.SchemaNode, name string) any {
	switch n.Type {
	case "string":
		return stringValue(n.Format, name)
	case "integer":
		return integerValue(n.Format, name)
	case "number":
		return numberValue(n.Format, name)
	case "boolean":
		return false
	}
	return nil
}

func stringValue(format, name string) string {
	switch format {
	case "uuid":
		return deterministicUUID(name)
	case "date-time":
		return "2024-01-15T10:30:00Z"
	case "date":
		return "2024-01-15"
	case "email":
		return "user@example.com"
	case "uri", "url":
		return "https://example.com/resource"
	case "binary", "byte":
		return "(binary data)"
	case "int64":
		return "1234567890"
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "id"):
		return deterministicUUID(name)
	case strings.Contains(lower, "email"):
		return "user@example.com"
	case strings.Contains(lower, "name"):
		return "Example Name"
	case strings.Contains(lower, "description"):
		return "Example description"
	case strings.Contains(lower, "path"):
		return "/example/path"
	case strings.Contains(lower, "url"), strings.Contains(lower, "uri"):
		return "https://example.com"
	case strings.Contains(lower, "token"):
		return "tok_example123"
	}
	return "example-string"
}

func integerValue(format, name string) int64 {
	if format == "int64" {
		return 1234567890
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "count"), strings.Contains(lower, "limit"):
		return 10
	case strings.Contains(lower, "offset"):
		return 0
	case strings.Contains(lower, "port"):
		return 8080
	case strings.Contains(lower, "id"):
		return 12345
	}
	return 42
}

func numberValue(format, name string) float64 {
	if format == "double" {
		return 3.14159
	}
	if strings.Contains(strings.ToLower(name), "score") {
		return 0.85
	}
	return 2.5
}

// deterministicUUID derives a stable UUIDv5 from the property name, so two
// runs over the same document produce the same identifiers.
func deterministicUUID(name string) string {
	if name == "" {
		name = "example"
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
