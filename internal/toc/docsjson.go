package toc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Default location names for the navigation walk. They match the
// documentation site layout this tool maintains; override the Manager fields
// for other layouts.
const (
	DefaultLanguage = "en"
	DefaultTab      = "Developer Portal"
	DefaultSection  = "API Reference"
	DefaultTarget   = "Product APIs"
)

// Manager reads a Mintlify docs.json, replaces or appends navigation groups
// under one target group, and writes the file back. Everything outside the
// navigation walk is carried through untouched.
type Manager struct {
	Path     string
	Language string
	Tab      string
	Section  string
	Target   string

	data map[string]any
}

func NewManager(path string) *Manager {
	return &Manager{
		Path:     path,
		Language: DefaultLanguage,
		Tab:      DefaultTab,
		Section:  DefaultSection,
		Target:   DefaultTarget,
	}
}

// Load reads and decodes the docs.json file. Numbers are kept as raw
// literals so saving does not rewrite them in float notation.
func (m *Manager) Load() error {
	raw, err := os.ReadFile(m.Path)
	if err != nil {
		return fmt.Errorf("reading docs.json: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("parsing %s: %w", m.Path, err)
	}
	m.data = data
	return nil
}

// Save writes the current document back with two-space indentation. HTML
// escaping is disabled so URLs and prose elsewhere in the file are not
// rewritten into \u escapes.
func (m *Manager) Save() error {
	if m.data == nil {
		return fmt.Errorf("docs.json not loaded")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.data); err != nil {
		return fmt.Errorf("encoding docs.json: %w", err)
	}
	if err := os.WriteFile(m.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing docs.json: %w", err)
	}
	return nil
}

// InsertOrReplace installs the entry under the target group, replacing any
// existing group with the same name.
func (m *Manager) InsertOrReplace(entry Group) error {
	target, err := m.findTarget()
	if err != nil {
		return err
	}

	pages, _ := target["pages"].([]any)
	for i, page := range pages {
		if groupName(page) == entry.Group {
			pages[i] = entry
			target["pages"] = pages
			return nil
		}
	}
	target["pages"] = append(pages, entry)
	return nil
}

// InsertAll applies InsertOrReplace to each entry and reports how many
// landed. The first navigation error aborts: later entries would fail the
// same walk.
func (m *Manager) InsertAll(entries []Group) (int, error) {
	n := 0
	for _, entry := range entries {
		if err := m.InsertOrReplace(entry); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Groups lists the group names currently under the target group.
func (m *Manager) Groups() ([]string, error) {
	target, err := m.findTarget()
	if err != nil {
		return nil, err
	}

	pages, _ := target["pages"].([]any)
	var names []string
	for _, page := range pages {
		if name := groupName(page); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// findTarget walks navigation.languages → tabs → menu → groups down to the
// target group's object. Each missing hop is reported by name so a layout
// mismatch is diagnosable from the error alone.
func (m *Manager) findTarget() (map[string]any, error) {
	if m.data == nil {
		return nil, fmt.Errorf("docs.json not loaded")
	}

	nav, ok := m.data["navigation"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("docs.json has no navigation object")
	}

	// Both published layouts occur in the wild: a list of language objects
	// and a map keyed by language code.
	var lang map[string]any
	switch langs := nav["languages"].(type) {
	case []any:
		lang = findInList(langs, "language", m.Language)
	case map[string]any:
		lang, _ = langs[m.Language].(map[string]any)
	}
	if lang == nil {
		return nil, fmt.Errorf("language %q not found in navigation", m.Language)
	}

	tabs, _ := lang["tabs"].([]any)
	tab := findInList(tabs, "tab", m.Tab)
	if tab == nil {
		return nil, fmt.Errorf("tab %q not found in navigation", m.Tab)
	}

	menu, _ := tab["menu"].([]any)
	if len(menu) == 0 {
		return nil, fmt.Errorf("tab %q has no menu", m.Tab)
	}
	first, ok := menu[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tab %q menu entry is not an object", m.Tab)
	}

	groups, _ := first["groups"].([]any)
	section := findInList(groups, "group", m.Section)
	if section == nil {
		return nil, fmt.Errorf("group %q not found in navigation", m.Section)
	}

	pages, _ := section["pages"].([]any)
	target := findInList(pages, "group", m.Target)
	if target == nil {
		return nil, fmt.Errorf("group %q not found under %q", m.Target, m.Section)
	}
	return target, nil
}

func findInList(items []any, key, value string) map[string]any {
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, _ := obj[key].(string); s == value {
			return obj
		}
	}
	return nil
}

// groupName reads the group title from either a freshly built Group or a
// decoded docs.json object.
func groupName(v any) string {
	switch g := v.(type) {
	case Group:
		return g.Group
	case map[string]any:
		s, _ := g["group"].(string)
		return s
	}
	return ""
}
