package openapi

// EndpointRecord is the extracted, flattened representation of one API
// operation. Path and Method together uniquely identify a record within one
// document.
type EndpointRecord struct {
	Path        string
	Method      string // upper-case HTTP method
	OperationID string
	Summary     string
	Description string
	Tags        []string // never empty: "Untagged" is assigned when the document declares none

	PathParams   []ParameterRecord
	QueryParams  []ParameterRecord
	HeaderParams []ParameterRecord

	RequestBodySchema      *SchemaNode
	RequestBodyParams      []ParameterRecord // flattened top-level properties for table rendering
	RequestBodyExample     any
	RequestBodyDescription string
	RequestBodyRequired    bool

	Responses         []ResponseRecord // declared status-code order
	SuccessStatusCode string           // lexicographically-first 2xx, "" when none declared
}

// PrimaryTag returns the first declared tag, used for grouping.
func (e *EndpointRecord) PrimaryTag() string {
	if len(e.Tags) == 0 {
		return UntaggedGroup
	}
	return e.Tags[0]
}

// SuccessResponse returns the response record matching SuccessStatusCode.
func (e *EndpointRecord) SuccessResponse() (ResponseRecord, bool) {
	for _, r := range e.Responses {
		if r.StatusCode == e.SuccessStatusCode && e.SuccessStatusCode != "" {
			return r, true
		}
	}
	return ResponseRecord{}, false
}

// ParameterRecord is one parameter or flattened body property.
type ParameterRecord struct {
	Name        string
	Type        string // composite type label, e.g. "string (uuid)" or "array of string"
	Required    bool
	Description string
	Enum        []any
	Default     any
	// SchemaName is the component name when this parameter's schema resolved
	// from a named reference, wrapper suffix stripped. Table renderers link
	// object parameters to their schema dropdown through it.
	SchemaName string
	// Schema is retained for object-typed body properties so nested tables
	// can be generated. Nil for plain scalar parameters.
	Schema *SchemaNode
}

// ResponseRecord is one declared response of an operation.
type ResponseRecord struct {
	StatusCode  string
	Description string
	Example     any
	Schema      *SchemaNode
}

// ExampleSynthesizer produces a representative example value for a resolved
// schema. The extractor uses it to fill request/response examples the
// document does not provide.
type ExampleSynthesizer interface {
	Synthesize(n *SchemaNode) any
}

// UntaggedGroup is the sentinel tag assigned to endpoints that declare no
// tags, so grouping always has a bucket.
const UntaggedGroup = "Untagged"
