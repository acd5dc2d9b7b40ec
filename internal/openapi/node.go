package openapi

import (
	"fmt"
	"strings"
)

// NodeKind tags the variant of a SchemaNode.
type NodeKind string

const (
	KindObject     NodeKind = "object"
	KindArray      NodeKind = "array"
	KindScalar     NodeKind = "scalar"
	KindUnresolved NodeKind = "unresolved"
)

// SchemaNode is the fully resolved, typed form of one schema subtree.
// Downstream code switches on Kind instead of probing raw map shapes.
// Unresolved covers dangling references, detected cycles, and depth
// overflow; the Ref field keeps the pointer for diagnostics and the
// Description carries the placeholder text.
type SchemaNode struct {
	Kind        NodeKind
	Type        string // scalar type name: string, integer, number, boolean
	Format      string // uuid, date-time, int64, ...
	Description string
	Nullable    bool
	Enum        []any
	Example     any // explicit example from the document, nil when absent
	Default     any

	// Object variant.
	Properties []Property // declaration order
	Required   []string

	// Array variant.
	Items *SchemaNode

	// Pointer that produced this node, when it came from a $ref.
	Ref string
}

// Property is one named member of an object node.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// circularNode builds the stable placeholder substituted for a reference
// that is already on the active resolution path.
func circularNode(ref string) *SchemaNode {
	return &SchemaNode{
		Kind:        KindUnresolved,
		Ref:         ref,
		Description: fmt.Sprintf("circular reference to %s", ref),
	}
}

// unresolvedNode builds the placeholder for a pointer that cannot be resolved.
func unresolvedNode(ref, reason string) *SchemaNode {
	return &SchemaNode{
		Kind:        KindUnresolved,
		Ref:         ref,
		Description: reason,
	}
}

// IsCircular reports whether the node is a circular-reference placeholder.
func (n *SchemaNode) IsCircular() bool {
	return n != nil && n.Kind == KindUnresolved && strings.HasPrefix(n.Description, "circular reference to ")
}

// IsRequired reports whether name appears in the object's required list.
func (n *SchemaNode) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property returns the schema of the named object member.
func (n *SchemaNode) Property(name string) (*SchemaNode, bool) {
	if n == nil {
		return nil, false
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Name returns the schema name from the node's source pointer ("Pet" for
// "#/components/schemas/Pet"), with any nullable-wrapper suffix stripped.
// Inline schemas have no name.
func (n *SchemaNode) Name() string {
	if n == nil || n.Ref == "" {
		return ""
	}
	name := n.Ref[strings.LastIndex(n.Ref, "/")+1:]
	return strings.TrimSuffix(name, nullableSuffix)
}

// TypeLabel renders a human-readable composite type name for parameter
// tables: "string (uuid)", "array of string", "object".
func (n *SchemaNode) TypeLabel() string {
	if n == nil {
		return "unknown"
	}
	switch n.Kind {
	case KindObject:
		return "object"
	case KindArray:
		return "array of " + n.Items.TypeLabel()
	case KindScalar:
		if n.Format != "" {
			return fmt.Sprintf("%s (%s)", n.Type, n.Format)
		}
		if n.Type == "" {
			return "unknown"
		}
		return n.Type
	case KindUnresolved:
		return "object"
	}
	return "unknown"
}
