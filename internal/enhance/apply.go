package enhance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fill is one description to install at a dot path in the document.
type Fill struct {
	Path  string
	Value string
}

type edit struct {
	idx     int
	path    string
	line    int // 1-based
	replace bool
	indent  string
	key     string
	value   string
}

// Apply installs the fills into src by editing individual lines, so every
// line the fills do not touch keeps its exact original bytes, comments
// included. New keys are inserted at the head of their parent mapping: that
// is the one position whose line number is known precisely without tracking
// the extent of nested blocks. Values are written double-quoted, which is
// valid YAML for any string strconv can quote.
//
// Fills that cannot be located, or whose edit would break the document, are
// reported in skipped rather than applied.
func Apply(src []byte, fills []Fill) (out []byte, skipped []string, err error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, nil, fmt.Errorf("parsing document: %w", err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("document root is not a mapping")
	}
	doc := root.Content[0]

	var edits []edit
	for i, f := range fills {
		e, ok := planEdit(doc, f)
		if !ok {
			skipped = append(skipped, f.Path)
			continue
		}
		e.idx = i
		edits = append(edits, e)
	}

	// Bottom-up, so an applied edit never shifts the line numbers of the
	// ones still pending. On a shared line, replacements go first (they
	// target the original content); inserts in reverse fill order keep the
	// final key order matching the fill order.
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].line != edits[j].line {
			return edits[i].line > edits[j].line
		}
		if edits[i].replace != edits[j].replace {
			return edits[i].replace
		}
		return edits[i].idx > edits[j].idx
	})

	lines := strings.Split(string(src), "\n")
	for _, e := range edits {
		candidate := applyEdit(lines, e)
		var check yaml.Node
		if err := yaml.Unmarshal([]byte(strings.Join(candidate, "\n")), &check); err != nil {
			skipped = append(skipped, e.path)
			continue
		}
		lines = candidate
	}

	return []byte(strings.Join(lines, "\n")), skipped, nil
}

func applyEdit(lines []string, e edit) []string {
	text := e.indent + e.key + ": " + strconv.Quote(e.value)
	result := make([]string, 0, len(lines)+1)
	if e.replace {
		result = append(result, lines...)
		result[e.line-1] = text
		return result
	}
	result = append(result, lines[:e.line-1]...)
	result = append(result, text)
	result = append(result, lines[e.line-1:]...)
	return result
}

// planEdit resolves a fill to a concrete line edit. Flow-style mappings,
// block scalars, and values spanning multiple source lines are declined:
// a single-line edit cannot preserve them.
func planEdit(doc *yaml.Node, f Fill) (edit, bool) {
	parent, key, seqItem, ok := locateParent(doc, f.Path)
	if !ok || parent.Kind != yaml.MappingNode || parent.Style != 0 {
		return edit{}, false
	}

	keyNode, valNode := entry(parent, key)
	if keyNode != nil {
		if valNode == nil || valNode.Kind != yaml.ScalarNode {
			return edit{}, false
		}
		if valNode.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 ||
			valNode.Line != keyNode.Line ||
			strings.Contains(valNode.Value, "\n") {
			return edit{}, false
		}
		return edit{
			path:    f.Path,
			line:    keyNode.Line,
			replace: true,
			indent:  strings.Repeat(" ", keyNode.Column-1),
			key:     key,
			value:   f.Value,
		}, true
	}

	if len(parent.Content) < 2 {
		return edit{}, false
	}
	first := parent.Content[0]
	line := first.Line
	if seqItem {
		// The first key of a sequence-item mapping shares its line with the
		// "- " marker, so the new key goes after that pair instead of before
		// it. That only works when the pair fits on one line.
		firstVal := parent.Content[1]
		if firstVal.Kind != yaml.ScalarNode || firstVal.Line != first.Line {
			return edit{}, false
		}
		line = first.Line + 1
	}
	return edit{
		path:   f.Path,
		line:   line,
		indent: strings.Repeat(" ", first.Column-1),
		key:    key,
		value:  f.Value,
	}, true
}

// locateParent walks the dot path down to the mapping that should hold the
// final key. Path segments may themselves contain dots (URL paths like
// /v1.0/users do), so at each mapping the longest joinable prefix wins.
// seqItem reports whether the returned mapping is an element of a sequence,
// which changes where a new key can be inserted.
func locateParent(doc *yaml.Node, path string) (parent *yaml.Node, key string, seqItem bool, ok bool) {
	segs := strings.Split(path, ".")
	node := doc
	fromSeq := false
	for len(segs) > 1 {
		next, consumed := step(node, segs)
		if next == nil {
			return nil, "", false, false
		}
		fromSeq = node.Kind == yaml.SequenceNode
		node = next
		segs = segs[consumed:]
	}
	if len(segs) != 1 || node == nil || node.Kind != yaml.MappingNode {
		return nil, "", false, false
	}
	return node, segs[0], fromSeq, true
}

func step(node *yaml.Node, segs []string) (*yaml.Node, int) {
	switch node.Kind {
	case yaml.MappingNode:
		for n := len(segs) - 1; n >= 1; n-- {
			key := strings.Join(segs[:n], ".")
			if _, v := entry(node, key); v != nil {
				return v, n
			}
		}
	case yaml.SequenceNode:
		seg := segs[0]
		if i, err := strconv.Atoi(seg); err == nil {
			if i >= 0 && i < len(node.Content) {
				return node.Content[i], 1
			}
			return nil, 0
		}
		// Parameter lists are sequences of mappings addressed by their
		// name field rather than by index.
		for _, item := range node.Content {
			if _, name := entry(item, "name"); name != nil && name.Value == seg {
				return item, 1
			}
		}
	}
	return nil, 0
}
