package openapi

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// methodOrder fixes the per-path extraction order so output is stable
// across runs regardless of how the document orders its operations.
var methodOrder = []string{"get", "post", "put", "delete", "patch", "options", "head"}

// preferredMediaType is used when an operation declares several request or
// response content types.
const preferredMediaType = "application/json"

// ExtractEndpoints walks the document's paths section and produces one
// EndpointRecord per (path, method) pair in source order. It is a pure
// transform: no endpoint present in the document is silently dropped, and
// repeated runs yield identical records. synth fills request/response
// examples the document does not provide; it may be nil.
func ExtractEndpoints(doc *Document, res *Resolver, synth ExampleSynthesizer, diags *Diagnostics) ([]EndpointRecord, error) {
	paths := mapGet(doc.Root, "paths")
	if paths == nil {
		return nil, specErrorf(ParseError, doc.Path, "document has no paths section")
	}

	var records []EndpointRecord
	for _, pathPair := range mapPairs(paths) {
		path := pathPair[0].Value
		item := pathPair[1]
		if item == nil || item.Kind != yaml.MappingNode {
			continue
		}
		shared := mapGet(item, "parameters")
		for _, method := range methodOrder {
			op := mapGet(item, method)
			if op == nil {
				continue
			}
			records = append(records, buildEndpoint(path, method, op, shared, res, synth, diags))
		}
	}
	return records, nil
}

func buildEndpoint(path, method string, op, sharedParams *yaml.Node, res *Resolver, synth ExampleSynthesizer, diags *Diagnostics) EndpointRecord {
	where := fmt.Sprintf("paths.%s.%s", path, method)

	rec := EndpointRecord{
		Path:        path,
		Method:      strings.ToUpper(method),
		OperationID: stringAt(op, "operationId"),
		Summary:     stringAt(op, "summary"),
		Description: stringAt(op, "description"),
		Tags:        stringsAt(op, "tags"),
	}
	if len(rec.Tags) == 0 {
		rec.Tags = []string{UntaggedGroup}
	}

	for _, p := range mergeParameters(sharedParams, mapGet(op, "parameters"), res) {
		in := stringAt(p, "in")
		param := buildParameter(p, where, res)
		switch in {
		case "path":
			rec.PathParams = append(rec.PathParams, param)
		case "query":
			rec.QueryParams = append(rec.QueryParams, param)
		case "header":
			rec.HeaderParams = append(rec.HeaderParams, param)
		default:
			diags.add(DiagSkippedParam, where, lineOf(p), "parameter %q has unrecognized location %q, skipped", param.Name, in)
		}
	}

	extractRequestBody(&rec, mapGet(op, "requestBody"), where, res, synth)
	extractResponses(&rec, mapGet(op, "responses"), where, res, synth, diags)

	return rec
}

// mergeParameters overlays operation-level parameters on path-level ones.
// The operation wins when both declare the same (in, name) pair.
func mergeParameters(shared, own *yaml.Node, res *Resolver) []*yaml.Node {
	key := func(p *yaml.Node) string {
		return stringAt(p, "in") + "\x00" + stringAt(p, "name")
	}

	var merged []*yaml.Node
	index := make(map[string]int)
	for _, p := range append(resolvedParams(shared, res), resolvedParams(own, res)...) {
		k := key(p)
		if idx, ok := index[k]; ok {
			merged[idx] = p
			continue
		}
		index[k] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

// resolvedParams expands parameter-level $refs (#/components/parameters/...)
// so merging and extraction always see concrete parameter mappings.
func resolvedParams(list *yaml.Node, res *Resolver) []*yaml.Node {
	items := seqItems(list)
	out := make([]*yaml.Node, 0, len(items))
	for _, p := range items {
		if ref := stringAt(p, "$ref"); ref != "" {
			if target := res.lookup(ref); target != nil {
				out = append(out, target)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func buildParameter(p *yaml.Node, where string, res *Resolver) ParameterRecord {
	name := stringAt(p, "name")
	schema := res.ResolveSchema(mapGet(p, "schema"), where+".parameters."+name)
	desc := stringAt(p, "description")
	if desc == "" {
		desc = schema.Description
	}
	rec := ParameterRecord{
		Name:        name,
		Type:        schema.TypeLabel(),
		Required:    boolAt(p, "required"),
		Description: desc,
		Enum:        schema.Enum,
		Default:     schema.Default,
	}
	if schema.Kind == KindObject {
		rec.SchemaName = schema.Name()
		rec.Schema = schema
	}
	return rec
}

// extractRequestBody fills the request-side fields of rec. When several
// content types are declared, application/json wins, then source order.
func extractRequestBody(rec *EndpointRecord, body *yaml.Node, where string, res *Resolver, synth ExampleSynthesizer) {
	if body == nil {
		return
	}
	if ref := stringAt(body, "$ref"); ref != "" {
		body = res.lookup(ref)
		if body == nil {
			return
		}
	}
	rec.RequestBodyDescription = stringAt(body, "description")
	rec.RequestBodyRequired = boolAt(body, "required")

	media := pickMediaType(mapGet(body, "content"))
	if media == nil {
		return
	}

	schema := res.ResolveSchema(mapGet(media, "schema"), where+".requestBody")
	rec.RequestBodySchema = schema
	rec.RequestBodyParams = flattenProperties(schema)

	rec.RequestBodyExample = mediaExample(media)
	if rec.RequestBodyExample == nil && synth != nil {
		rec.RequestBodyExample = synth.Synthesize(schema)
	}
}

// flattenProperties turns an object schema's top-level properties into
// parameter records for table rendering. Non-object schemas flatten to nil;
// their full tree stays available on the record.
func flattenProperties(schema *SchemaNode) []ParameterRecord {
	if schema == nil || schema.Kind != KindObject {
		return nil
	}
	var out []ParameterRecord
	for _, p := range schema.Properties {
		rec := ParameterRecord{
			Name:        p.Name,
			Type:        p.Schema.TypeLabel(),
			Required:    schema.IsRequired(p.Name),
			Description: p.Schema.Description,
			Enum:        p.Schema.Enum,
			Default:     p.Schema.Default,
		}
		if p.Schema.Kind == KindObject || p.Schema.Kind == KindArray {
			rec.SchemaName = p.Schema.Name()
			rec.Schema = p.Schema
		}
		out = append(out, rec)
	}
	return out
}

func extractResponses(rec *EndpointRecord, responses *yaml.Node, where string, res *Resolver, synth ExampleSynthesizer, diags *Diagnostics) {
	for _, pair := range mapPairs(responses) {
		status := pair[0].Value
		resp := pair[1]
		if ref := stringAt(resp, "$ref"); ref != "" {
			resp = res.lookup(ref)
		}

		record := ResponseRecord{
			StatusCode:  status,
			Description: stringAt(resp, "description"),
		}
		if media := pickMediaType(mapGet(resp, "content")); media != nil {
			record.Schema = res.ResolveSchema(mapGet(media, "schema"), fmt.Sprintf("%s.responses.%s", where, status))
			record.Example = mediaExample(media)
		}
		rec.Responses = append(rec.Responses, record)

		if isSuccessStatus(status) && (rec.SuccessStatusCode == "" || status < rec.SuccessStatusCode) {
			rec.SuccessStatusCode = status
		}
	}

	if rec.SuccessStatusCode == "" {
		diags.add(DiagNoSuccess, where, lineOf(responses), "operation declares no 2xx response")
		return
	}

	// Synthesize the primary example for the success response only; other
	// responses keep whatever the document provides.
	if synth != nil {
		for i := range rec.Responses {
			r := &rec.Responses[i]
			if r.StatusCode == rec.SuccessStatusCode && r.Example == nil && r.Schema != nil {
				r.Example = synth.Synthesize(r.Schema)
			}
		}
	}
}

// pickMediaType selects the media-type mapping to extract from a content
// node: application/json when present, otherwise the first declared.
func pickMediaType(content *yaml.Node) *yaml.Node {
	if content == nil {
		return nil
	}
	if m := mapGet(content, preferredMediaType); m != nil {
		return m
	}
	pairs := mapPairs(content)
	if len(pairs) == 0 {
		return nil
	}
	return pairs[0][1]
}

// mediaExample pulls an explicit example off a media-type node: a direct
// example first, then the first entry of a named examples mapping (sorted by
// name for stability).
func mediaExample(media *yaml.Node) any {
	if ex := mapGet(media, "example"); ex != nil {
		return decodeAny(ex)
	}
	examples := mapGet(media, "examples")
	pairs := mapPairs(examples)
	if len(pairs) == 0 {
		return nil
	}
	names := make([]string, 0, len(pairs))
	byName := make(map[string]*yaml.Node, len(pairs))
	for _, p := range pairs {
		names = append(names, p[0].Value)
		byName[p[0].Value] = p[1]
	}
	sort.Strings(names)
	entry := byName[names[0]]
	if v := mapGet(entry, "value"); v != nil {
		return decodeAny(v)
	}
	return decodeAny(entry)
}

// isSuccessStatus reports whether a status-code string is in the 2xx range.
// Ranged codes ("2XX") count as success.
func isSuccessStatus(status string) bool {
	return strings.HasPrefix(status, "2")
}
