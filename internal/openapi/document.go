package openapi

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"gopkg.in/yaml.v3"
)

// defaultServerURL replaces server entries whose url is missing or empty.
const defaultServerURL = "https://api.example.com"

// Document holds one loaded specification file with derived metadata.
// Root is the raw YAML node tree: keeping nodes instead of maps preserves
// mapping order and source line numbers for extraction and diagnostics.
type Document struct {
	Path    string
	Hash    string // "sha256:<hex>"
	Raw     string // original content as read from disk
	Version int    // detected spec version: 2 (converted to 3 on load) or 3
	Root    *yaml.Node
}

// Load reads a specification file, detects its version, converts Swagger 2.0
// input to OpenAPI 3 and applies the malformed-spec repairs. Repairs are
// recorded on diags; hard failures come back as *SpecError.
func Load(path string, diags *Diagnostics) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("reading spec file: %v", err), Path: path, Cause: err}
	}
	doc, err := Parse(data, diags)
	if err != nil {
		var se *SpecError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse builds a Document from raw bytes. Exposed separately from Load so
// tests and in-memory callers can skip the filesystem.
func Parse(data []byte, diags *Diagnostics) (*Document, error) {
	version, err := detectVersion(data)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Cause: err}
	}

	effective := data
	if version == 2 {
		converted, cerr := convertV2ToV3(data)
		if cerr != nil {
			return nil, &SpecError{Code: ConvertError, Message: fmt.Sprintf("converting swagger 2.0 document: %v", cerr), Cause: cerr}
		}
		effective = converted
	}

	var tree yaml.Node
	if err := yaml.Unmarshal(effective, &tree); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parsing document: %v", err), Cause: err}
	}
	root := documentRoot(&tree)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, specErrorf(ParseError, "", "document root is not a mapping")
	}

	repairServers(root, diags)

	sum := sha256.Sum256(data)
	return &Document{
		Hash:    fmt.Sprintf("sha256:%x", sum),
		Raw:     string(data),
		Version: version,
		Root:    root,
	}, nil
}

// Title returns the API title from the info block, or "API" when absent.
func (d *Document) Title() string {
	if t := stringAt(mapGet(d.Root, "info"), "title"); t != "" {
		return t
	}
	return "API"
}

// APIVersion returns the declared info.version, or "" when absent.
func (d *Document) APIVersion() string {
	return stringAt(mapGet(d.Root, "info"), "version")
}

// Description returns the info.description, or "" when absent.
func (d *Document) Description() string {
	return stringAt(mapGet(d.Root, "info"), "description")
}

// ServerURL returns the first declared server url. Server repair during
// parsing guarantees a usable value, but documents with no servers section
// at all fall back to the default.
func (d *Document) ServerURL() string {
	for _, entry := range seqItems(mapGet(d.Root, "servers")) {
		if url := stringAt(entry, "url"); url != "" {
			return url
		}
	}
	return defaultServerURL
}

// detectVersion inspects the top-level version keys without building the
// full node tree.
func detectVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parsing document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("missing or unknown spec version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 upgrades a Swagger 2.0 document via kin-openapi and returns
// it as JSON bytes (valid YAML) for re-parsing into the node tree.
func convertV2ToV3(data []byte) ([]byte, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// documentRoot unwraps the DocumentNode produced by yaml.Unmarshal.
func documentRoot(tree *yaml.Node) *yaml.Node {
	if tree == nil {
		return nil
	}
	if tree.Kind == yaml.DocumentNode && len(tree.Content) > 0 {
		return tree.Content[0]
	}
	return tree
}

// repairServers fixes server entries some validators reject: a null entry or
// an entry without a url gets the documented default. Repairs happen in the
// node tree so later extraction sees a well-formed document.
func repairServers(root *yaml.Node, diags *Diagnostics) {
	servers := mapGet(root, "servers")
	if servers == nil || servers.Kind != yaml.SequenceNode {
		return
	}
	for i, entry := range servers.Content {
		switch {
		case isNullNode(entry):
			line := entry.Line
			*entry = yaml.Node{
				Kind: yaml.MappingNode,
				Tag:  "!!map",
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: "url"},
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: defaultServerURL},
				},
			}
			diags.add(DiagEmptyServer, fmt.Sprintf("servers[%d]", i), line, "empty server entry replaced with %s", defaultServerURL)
		case entry.Kind == yaml.MappingNode:
			url := mapGet(entry, "url")
			if url == nil {
				entry.Content = append(entry.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "url"},
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: defaultServerURL},
				)
				diags.add(DiagEmptyServer, fmt.Sprintf("servers[%d]", i), entry.Line, "server entry without url given %s", defaultServerURL)
			} else if scalarOf(url) == "" {
				url.Kind = yaml.ScalarNode
				url.Tag = "!!str"
				url.Value = defaultServerURL
				diags.add(DiagEmptyServer, fmt.Sprintf("servers[%d]", i), entry.Line, "empty server url replaced with %s", defaultServerURL)
			}
		}
	}
}
