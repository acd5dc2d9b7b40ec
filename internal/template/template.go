// Package template implements the placeholder syntax used by the
// documentation template files: {{name}} substitution with dotted paths,
// {{#each list}} iteration, and {{#if name}} conditionals. The syntax is
// fixed by the existing template corpus, so this is a purpose-built parser
// rather than an off-the-shelf engine.
package template

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeEach
	nodeIf
)

type node struct {
	kind     nodeKind
	text     string // nodeText
	path     string // nodeVar, nodeEach, nodeIf
	children []node // nodeEach, nodeIf
}

// Template is a parsed template ready for rendering.
type Template struct {
	nodes []node
}

// Parse compiles template text. Block tags must be balanced; an unclosed
// {{#each}} or {{#if}} is an error, as is a dangling close tag.
func Parse(text string) (*Template, error) {
	p := &parser{src: text}
	nodes, err := p.parseNodes("")
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

// Placeholders returns the unique variable names referenced by the template,
// in first-appearance order. Block tags are not included.
func (t *Template) Placeholders() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(nodes []node)
	walk = func(nodes []node) {
		for _, n := range nodes {
			if n.kind == nodeVar && !seen[n.path] {
				seen[n.path] = true
				out = append(out, n.path)
			}
			walk(n.children)
		}
	}
	walk(t.nodes)
	return out
}

type parser struct {
	src string
	pos int
}

// parseNodes consumes nodes until EOF or until the close tag named by until
// ("each" or "if") is consumed. An empty until means parse to EOF.
func (p *parser) parseNodes(until string) ([]node, error) {
	var nodes []node

	for p.pos < len(p.src) {
		open := strings.Index(p.src[p.pos:], "{{")
		if open < 0 {
			nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos:]})
			p.pos = len(p.src)
			break
		}
		if open > 0 {
			nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos : p.pos+open]})
		}
		tagStart := p.pos + open
		p.pos = tagStart + 2

		end := strings.Index(p.src[p.pos:], "}}")
		if end < 0 {
			return nil, fmt.Errorf("unclosed placeholder at offset %d", tagStart)
		}
		tag := strings.TrimSpace(p.src[p.pos : p.pos+end])
		p.pos += end + 2

		switch {
		case strings.HasPrefix(tag, "#each"):
			path := strings.TrimSpace(strings.TrimPrefix(tag, "#each"))
			if path == "" {
				return nil, fmt.Errorf("{{#each}} missing list name at offset %d", tagStart)
			}
			children, err := p.parseNodes("each")
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node{kind: nodeEach, path: path, children: children})

		case strings.HasPrefix(tag, "#if"):
			path := strings.TrimSpace(strings.TrimPrefix(tag, "#if"))
			if path == "" {
				return nil, fmt.Errorf("{{#if}} missing condition name at offset %d", tagStart)
			}
			children, err := p.parseNodes("if")
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node{kind: nodeIf, path: path, children: children})

		case tag == "/each", tag == "/if":
			name := strings.TrimPrefix(tag, "/")
			if until != name {
				if until == "" {
					return nil, fmt.Errorf("unexpected {{/%s}} at offset %d", name, tagStart)
				}
				return nil, fmt.Errorf("expected {{/%s}}, found {{/%s}} at offset %d", until, name, tagStart)
			}
			return nodes, nil

		case tag == "":
			return nil, fmt.Errorf("empty placeholder at offset %d", tagStart)

		default:
			nodes = append(nodes, node{kind: nodeVar, path: tag})
		}
	}

	if until != "" {
		return nil, fmt.Errorf("unclosed {{#%s}}", until)
	}
	return nodes, nil
}
