package openapi

import "gopkg.in/yaml.v3"

// Low-level yaml.Node accessors. The document tree is kept as raw nodes so
// that mapping order and source line numbers survive all the way into
// extraction and diagnostics.

// mapGet looks up a key in a YAML mapping node and returns the value node.
func mapGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// mapPairs returns the (key, value) node pairs of a mapping in source order.
func mapPairs(m *yaml.Node) [][2]*yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	pairs := make([][2]*yaml.Node, 0, len(m.Content)/2)
	for i := 0; i < len(m.Content)-1; i += 2 {
		pairs = append(pairs, [2]*yaml.Node{m.Content[i], m.Content[i+1]})
	}
	return pairs
}

// seqItems returns the element nodes of a sequence node.
func seqItems(s *yaml.Node) []*yaml.Node {
	if s == nil || s.Kind != yaml.SequenceNode {
		return nil
	}
	return s.Content
}

// scalarOf returns the string value of a scalar node, or "" for nil and
// non-scalar nodes.
func scalarOf(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// stringAt returns the scalar string value for key in mapping m.
func stringAt(m *yaml.Node, key string) string {
	return scalarOf(mapGet(m, key))
}

// boolAt returns the boolean value for key in mapping m, defaulting to false.
func boolAt(m *yaml.Node, key string) bool {
	v := mapGet(m, key)
	if v == nil {
		return false
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false
	}
	return b
}

// stringsAt returns the scalar elements of the sequence at key.
func stringsAt(m *yaml.Node, key string) []string {
	var out []string
	for _, item := range seqItems(mapGet(m, key)) {
		if s := scalarOf(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeAny converts a node into a plain Go value (map[string]any, []any,
// scalars). Returns nil when the node is nil or cannot be decoded.
func decodeAny(n *yaml.Node) any {
	if n == nil {
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil
	}
	return v
}

// isNullNode reports whether n is an explicit YAML null.
func isNullNode(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "null" || n.Value == "~" || n.Value == "")
}

// lineOf returns the source line of a node, 0 for nil.
func lineOf(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}
