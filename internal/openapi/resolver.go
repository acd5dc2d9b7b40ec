package openapi

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxResolveDepth bounds schema nesting during reference resolution. Going
// deeper gets the same placeholder treatment as a detected cycle, so a
// pathological document degrades instead of failing.
const MaxResolveDepth = 12

// nullableSuffix is the naming convention for synthetic nullable wrappers:
// a schema named <Base>_Nullable shaped {oneOf: [<Base>, null]} resolves to
// Base with the nullable flag set.
const nullableSuffix = "_Nullable"

// Resolver dereferences $ref pointers inside one Document. It never fails a
// document: cycles, depth overflow and dangling pointers all become
// Unresolved placeholder nodes plus a diagnostic, and resolution continues
// around them.
type Resolver struct {
	doc    *Document
	diags  *Diagnostics
	active map[string]bool // pointers on the current resolution path
}

// NewResolver builds a resolver over doc, recording warnings on diags.
func NewResolver(doc *Document, diags *Diagnostics) *Resolver {
	return &Resolver{
		doc:    doc,
		diags:  diags,
		active: make(map[string]bool),
	}
}

// Resolve dereferences a pointer string such as "#/components/schemas/Pet"
// into a fully resolved SchemaNode.
func (r *Resolver) Resolve(ref string) *SchemaNode {
	return r.resolveRef(ref, 0)
}

// ResolveSchema resolves an inline schema node. where names the location for
// diagnostics ("paths./pets.get.requestBody").
func (r *Resolver) ResolveSchema(n *yaml.Node, where string) *SchemaNode {
	return r.resolve(n, where, 0)
}

func (r *Resolver) resolveRef(ref string, depth int) *SchemaNode {
	if r.active[ref] {
		r.diags.add(DiagCycle, ref, 0, "reference cycle detected, substituting placeholder")
		return circularNode(ref)
	}

	target := r.lookup(ref)
	if target == nil {
		reason := fmt.Sprintf("unresolved reference %s", ref)
		if !strings.HasPrefix(ref, "#/") {
			reason = fmt.Sprintf("external reference %s not supported", ref)
		}
		r.diags.add(DiagDangling, ref, 0, "%s", reason)
		return unresolvedNode(ref, reason)
	}

	r.active[ref] = true
	node := r.resolve(target, ref, depth+1)
	delete(r.active, ref)

	// Keep the innermost pointer name; synthetic wrappers and alias chains
	// must not shadow the schema they resolve to.
	if node.Ref == "" {
		node.Ref = ref
	}
	return node
}

func (r *Resolver) resolve(n *yaml.Node, where string, depth int) *SchemaNode {
	if n == nil {
		return unresolvedNode(where, "missing schema")
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if depth > MaxResolveDepth {
		r.diags.add(DiagDepth, where, n.Line, "resolution depth exceeded %d, substituting placeholder", MaxResolveDepth)
		return unresolvedNode(where, fmt.Sprintf("maximum resolution depth %d exceeded", MaxResolveDepth))
	}
	if n.Kind != yaml.MappingNode {
		// A bare `true`/`{}` schema or stray scalar: treat as an
		// unconstrained object rather than failing.
		return &SchemaNode{Kind: KindObject}
	}

	if ref := stringAt(n, "$ref"); ref != "" {
		return r.resolveRef(ref, depth)
	}

	if variants := compositionVariants(n); variants != nil {
		return r.resolveComposition(n, variants, where, depth)
	}

	if allOf := seqItems(mapGet(n, "allOf")); len(allOf) > 0 {
		return r.resolveAllOf(n, allOf, where, depth)
	}

	typ, nullable := schemaType(n)

	switch {
	case typ == "object" || (typ == "" && mapGet(n, "properties") != nil):
		return r.resolveObject(n, where, depth, nullable)
	case typ == "array":
		items := r.resolve(mapGet(n, "items"), where+"[]", depth+1)
		return &SchemaNode{
			Kind:        KindArray,
			Description: stringAt(n, "description"),
			Nullable:    nullable,
			Example:     decodeAny(mapGet(n, "example")),
			Items:       items,
		}
	case typ == "":
		// No type, no properties: unconstrained.
		return &SchemaNode{Kind: KindObject, Description: stringAt(n, "description"), Nullable: nullable}
	default:
		return &SchemaNode{
			Kind:        KindScalar,
			Type:        typ,
			Format:      stringAt(n, "format"),
			Description: stringAt(n, "description"),
			Nullable:    nullable,
			Enum:        decodeSeq(mapGet(n, "enum")),
			Example:     decodeAny(mapGet(n, "example")),
			Default:     decodeAny(mapGet(n, "default")),
		}
	}
}

// resolveObject builds an Object node, resolving each property in
// declaration order.
func (r *Resolver) resolveObject(n *yaml.Node, where string, depth int, nullable bool) *SchemaNode {
	node := &SchemaNode{
		Kind:        KindObject,
		Description: stringAt(n, "description"),
		Nullable:    nullable,
		Required:    stringsAt(n, "required"),
		Example:     decodeAny(mapGet(n, "example")),
	}
	for _, pair := range mapPairs(mapGet(n, "properties")) {
		name := pair[0].Value
		node.Properties = append(node.Properties, Property{
			Name:   name,
			Schema: r.resolve(pair[1], where+"."+name, depth+1),
		})
	}
	return node
}

// resolveComposition handles oneOf/anyOf. The nullable-wrapper shape,
// variants reducing to one real schema plus a null type, resolves to the
// real schema with Nullable set, so wrapper structure never leaks
// downstream. Other compositions resolve to their first variant.
func (r *Resolver) resolveComposition(n *yaml.Node, variants []*yaml.Node, where string, depth int) *SchemaNode {
	nonNull := make([]*yaml.Node, 0, len(variants))
	for _, v := range variants {
		if !isNullVariant(v) {
			nonNull = append(nonNull, v)
		}
	}

	nullable := len(nonNull) < len(variants)
	if len(nonNull) == 0 {
		return &SchemaNode{Kind: KindScalar, Type: "string", Nullable: true, Description: stringAt(n, "description")}
	}

	node := r.resolve(nonNull[0], where, depth+1)
	if nullable {
		node.Nullable = true
	}
	if node.Description == "" {
		node.Description = stringAt(n, "description")
	}
	return node
}

// resolveAllOf merges every object member of an allOf composition into a
// single Object node. Later members win on property-name collisions.
func (r *Resolver) resolveAllOf(n *yaml.Node, members []*yaml.Node, where string, depth int) *SchemaNode {
	merged := &SchemaNode{
		Kind:        KindObject,
		Description: stringAt(n, "description"),
		Example:     decodeAny(mapGet(n, "example")),
	}
	seen := make(map[string]int)
	for _, m := range members {
		part := r.resolve(m, where, depth+1)
		if part.Kind != KindObject {
			continue
		}
		for _, p := range part.Properties {
			if idx, ok := seen[p.Name]; ok {
				merged.Properties[idx] = p
				continue
			}
			seen[p.Name] = len(merged.Properties)
			merged.Properties = append(merged.Properties, p)
		}
		for _, req := range part.Required {
			if !merged.IsRequired(req) {
				merged.Required = append(merged.Required, req)
			}
		}
		if merged.Description == "" {
			merged.Description = part.Description
		}
		if merged.Example == nil {
			merged.Example = part.Example
		}
	}
	return merged
}

// lookup walks a local JSON pointer through the node tree. Returns nil for
// external or dangling pointers.
func (r *Resolver) lookup(ref string) *yaml.Node {
	if !strings.HasPrefix(ref, "#/") {
		return nil
	}
	cur := r.doc.Root
	for _, seg := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		cur = mapGet(cur, unescapePointer(seg))
		if cur == nil {
			return nil
		}
	}
	return cur
}

// unescapePointer reverses JSON-pointer escaping: ~1 is "/", ~0 is "~".
func unescapePointer(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	return strings.ReplaceAll(seg, "~0", "~")
}

// compositionVariants returns the oneOf or anyOf variant nodes, or nil when
// the schema is not a composition.
func compositionVariants(n *yaml.Node) []*yaml.Node {
	if items := seqItems(mapGet(n, "oneOf")); len(items) > 0 {
		return items
	}
	if items := seqItems(mapGet(n, "anyOf")); len(items) > 0 {
		return items
	}
	return nil
}

// isNullVariant reports whether a composition member denotes the null type.
func isNullVariant(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind != yaml.MappingNode {
		return isNullNode(n)
	}
	t := mapGet(n, "type")
	return t != nil && (scalarOf(t) == "null" || isNullNode(t))
}

// schemaType reads the type of a schema, handling both the 3.0 scalar form
// with a separate nullable flag and the 3.1 type-list form where "null"
// appears as a member.
func schemaType(n *yaml.Node) (typ string, nullable bool) {
	nullable = boolAt(n, "nullable")
	t := mapGet(n, "type")
	if t == nil {
		return "", nullable
	}
	if t.Kind == yaml.SequenceNode {
		for _, item := range t.Content {
			if scalarOf(item) == "null" {
				nullable = true
				continue
			}
			if typ == "" {
				typ = scalarOf(item)
			}
		}
		return typ, nullable
	}
	return scalarOf(t), nullable
}

// decodeSeq converts a sequence node into plain Go values.
func decodeSeq(n *yaml.Node) []any {
	items := seqItems(n)
	if len(items) == 0 {
		return nil
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, decodeAny(item))
	}
	return out
}
