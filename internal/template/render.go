package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result holds the rendered output plus the variable placeholders that had
// no value. Unresolved names feed the template_coverage check downstream.
type Result struct {
	Output     string
	Unresolved []string
}

// Render substitutes data into the template. Missing variables render as
// empty strings and are collected in Result.Unresolved, deduplicated in
// first-appearance order. Missing block names are not reported: a falsy
// {{#if}} and an absent {{#each}} list are ordinary control flow.
func (t *Template) Render(data map[string]any) *Result {
	st := &renderState{
		scopes: []any{data},
		seen:   map[string]bool{},
	}
	var sb strings.Builder
	st.renderNodes(&sb, t.nodes)
	return &Result{Output: sb.String(), Unresolved: st.unresolved}
}

type renderState struct {
	scopes     []any // innermost last
	unresolved []string
	seen       map[string]bool
}

func (st *renderState) renderNodes(sb *strings.Builder, nodes []node) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			sb.WriteString(n.text)

		case nodeVar:
			v, ok := st.lookup(n.path)
			if !ok {
				if !st.seen[n.path] {
					st.seen[n.path] = true
					st.unresolved = append(st.unresolved, n.path)
				}
				continue
			}
			sb.WriteString(stringify(v))

		case nodeEach:
			v, _ := st.lookup(n.path)
			for _, item := range iterate(v) {
				st.scopes = append(st.scopes, item)
				st.renderNodes(sb, n.children)
				st.scopes = st.scopes[:len(st.scopes)-1]
			}

		case nodeIf:
			v, _ := st.lookup(n.path)
			if truthy(v) {
				st.renderNodes(sb, n.children)
			}
		}
	}
}

// lookup resolves a dotted path against the scope stack, innermost first.
// "." names the current scope value itself. Once a scope claims the first
// path segment, the full path must resolve within that scope.
func (st *renderState) lookup(path string) (any, bool) {
	if path == "." {
		return st.scopes[len(st.scopes)-1], true
	}

	segments := strings.Split(path, ".")
	for i := len(st.scopes) - 1; i >= 0; i-- {
		m, ok := st.scopes[i].(map[string]any)
		if !ok {
			continue
		}
		v, ok := m[segments[0]]
		if !ok {
			continue
		}
		for _, seg := range segments[1:] {
			inner, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			if v, ok = inner[seg]; !ok {
				return nil, false
			}
		}
		return v, true
	}
	return nil, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		// Lists and maps only appear here when a template misuses a block
		// value as a variable. JSON is the least surprising rendering.
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

func iterate(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
