// Package enhance finds missing or inadequate descriptions in OpenAPI
// documents and fills them with model-generated text, applied so that
// untouched lines keep their original formatting.
package enhance

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMinDescription is the shortest description length considered
// adequate for tags, endpoints, parameters, and schemas.
const DefaultMinDescription = 10

// adequateInfoDescription is the stricter bar for the top-level API
// description; anything shorter reads as boilerplate.
const adequateInfoDescription = 30

// GapKind classifies where in the document a description is missing.
type GapKind string

const (
	KindInfo      GapKind = "info"
	KindTag       GapKind = "tag"
	KindEndpoint  GapKind = "endpoint"
	KindParameter GapKind = "parameter"
	KindSchema    GapKind = "schema"
	KindProperty  GapKind = "property"
)

// Gap is one missing or inadequate description. Path is a dot path into the
// document suitable for Apply; Line is the 1-based line of the nearest
// anchoring node in the source file.
type Gap struct {
	Kind   GapKind
	Path   string
	Line   int
	Detail string
}

// Report collects the gaps found in one document.
type Report struct {
	Source string
	Gaps   []Gap
}

func (r *Report) Count() int    { return len(r.Gaps) }
func (r *Report) HasGaps() bool { return len(r.Gaps) > 0 }

// ByKind counts gaps per kind.
func (r *Report) ByKind() map[GapKind]int {
	counts := make(map[GapKind]int)
	for _, g := range r.Gaps {
		counts[g.Kind]++
	}
	return counts
}

// Summary renders a one-line account of the gaps, suitable for logs.
func (r *Report) Summary() string {
	if !r.HasGaps() {
		return "no gaps found"
	}

	counts := r.ByKind()
	var parts []string
	for _, g := range r.Gaps {
		if g.Kind == KindInfo {
			parts = append(parts, g.Path)
		}
	}
	for _, kind := range []struct {
		kind  GapKind
		label string
	}{
		{KindTag, "tag description"},
		{KindEndpoint, "endpoint description"},
		{KindParameter, "parameter description"},
		{KindSchema, "schema description"},
		{KindProperty, "property description"},
	} {
		if n := counts[kind.kind]; n > 0 {
			label := kind.label
			if n > 1 {
				label += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}

	return fmt.Sprintf("%d gaps: %s", r.Count(), strings.Join(parts, ", "))
}

var httpMethods = []string{"get", "put", "post", "delete", "patch", "options", "head", "trace"}

var genericWords = map[string]bool{
	"api": true, "service": true, "endpoint": true, "request": true,
	"response": true, "documentation": true, "specification": true,
}

// Analyze parses src and walks the raw node tree looking for missing
// descriptions. Working on nodes rather than a decoded struct keeps source
// line numbers, which the fill prompt and the textual apply both rely on.
// minLen <= 0 selects DefaultMinDescription.
func Analyze(src []byte, source string, minLen int) (*Report, error) {
	if minLen <= 0 {
		minLen = DefaultMinDescription
	}

	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	report := &Report{Source: source}
	if len(root.Content) == 0 {
		return report, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: document root is not a mapping", source)
	}

	a := &analyzer{minLen: minLen, report: report}
	a.info(doc)
	a.tags(doc)
	a.paths(doc)
	a.schemas(doc)
	return report, nil
}

type analyzer struct {
	minLen int
	report *Report
}

func (a *analyzer) add(kind GapKind, path string, line int, detail string) {
	a.report.Gaps = append(a.report.Gaps, Gap{Kind: kind, Path: path, Line: line, Detail: detail})
}

func (a *analyzer) info(doc *yaml.Node) {
	infoKey, info := entry(doc, "info")
	base := doc.Line
	if infoKey != nil {
		base = infoKey.Line
	}

	titleKey, title := entry(info, "title")
	if a.inadequate(scalar(title), "title") {
		a.add(KindInfo, "info.title", lineOf(titleKey, base), "info.title")
	}

	descKey, desc := entry(info, "description")
	text := scalar(desc)
	if a.inadequate(text, "description") || len(strings.TrimSpace(text)) < adequateInfoDescription {
		a.add(KindInfo, "info.description", lineOf(descKey, base), "info.description")
	}

	_, version := entry(info, "version")
	if strings.TrimSpace(scalar(version)) == "" {
		a.add(KindInfo, "info.version", base, "info.version")
	}
}

func (a *analyzer) tags(doc *yaml.Node) {
	_, seq := entry(doc, "tags")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return
	}
	for i, tag := range seq.Content {
		nameKey, name := entry(tag, "name")
		descKey, desc := entry(tag, "description")
		if a.inadequate(scalar(desc), "") {
			line := lineOf(descKey, lineOf(nameKey, tag.Line))
			a.add(KindTag, fmt.Sprintf("tags.%d.description", i), line, scalar(name))
		}
	}
}

func (a *analyzer) paths(doc *yaml.Node) {
	_, paths := entry(doc, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		item := paths.Content[i+1]

		a.parameters(item, "paths."+path+".parameters", path)

		for _, method := range httpMethods {
			opKey, op := entry(item, method)
			if op == nil {
				continue
			}
			id := strings.ToUpper(method) + " " + path

			descKey, desc := entry(op, "description")
			if a.inadequate(scalar(desc), "") {
				a.add(KindEndpoint, fmt.Sprintf("paths.%s.%s.description", path, method),
					lineOf(descKey, opKey.Line), id)
			}

			a.parameters(op, fmt.Sprintf("paths.%s.%s.parameters", path, method), id)
		}
	}
}

func (a *analyzer) parameters(owner *yaml.Node, basePath, context string) {
	_, seq := entry(owner, "parameters")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return
	}
	for _, param := range seq.Content {
		if _, ref := entry(param, "$ref"); ref != nil {
			continue // shared parameter, described at its definition
		}
		nameKey, name := entry(param, "name")
		if scalar(name) == "" {
			continue
		}
		descKey, desc := entry(param, "description")
		if a.inadequate(scalar(desc), "") {
			line := lineOf(descKey, lineOf(nameKey, param.Line))
			a.add(KindParameter, basePath+"."+scalar(name)+".description", line,
				fmt.Sprintf("%s parameter %q", context, scalar(name)))
		}
	}
}

func (a *analyzer) schemas(doc *yaml.Node) {
	_, comps := entry(doc, "components")
	_, schemas := entry(comps, "schemas")
	if schemas == nil || schemas.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		nameNode := schemas.Content[i]
		schema := schemas.Content[i+1]
		name := nameNode.Value

		descKey, desc := entry(schema, "description")
		if a.inadequate(scalar(desc), "") {
			a.add(KindSchema, "components.schemas."+name+".description",
				lineOf(descKey, nameNode.Line), name)
		}

		_, props := entry(schema, "properties")
		if props == nil || props.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(props.Content); j += 2 {
			propNode := props.Content[j]
			prop := props.Content[j+1]
			if prop.Kind != yaml.MappingNode {
				continue
			}
			pdKey, pd := entry(prop, "description")
			if a.inadequate(scalar(pd), "") {
				a.add(KindProperty,
					fmt.Sprintf("components.schemas.%s.properties.%s.description", name, propNode.Value),
					lineOf(pdKey, propNode.Line), name+"."+propNode.Value)
			}
		}
	}
}

// inadequate reports whether a description is missing, too short, made of
// generic filler words, or merely repeats the field name.
func (a *analyzer) inadequate(desc, fieldName string) bool {
	trimmed := strings.TrimSpace(desc)
	if len(trimmed) < a.minLen {
		return true
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)
	if len(words) <= 3 {
		generic := true
		for _, w := range words {
			if !genericWords[w] {
				generic = false
				break
			}
		}
		if generic {
			return true
		}
	}

	if fieldName != "" {
		field := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(fieldName))
		if strings.Contains(lower, field) && len(trimmed) < 30 {
			return true
		}
	}

	return false
}

// entry returns the key and value nodes for key within mapping m. Both are
// nil when m is not a mapping or the key is absent.
func entry(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

func scalar(v *yaml.Node) string {
	if v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func lineOf(key *yaml.Node, fallback int) int {
	if key != nil {
		return key.Line
	}
	return fallback
}
