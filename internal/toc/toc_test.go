package toc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/oasdoc/internal/openapi"
)

func ep(method, path string, tags ...string) openapi.EndpointRecord {
	return openapi.EndpointRecord{Method: method, Path: path, Tags: tags}
}

func TestBuildNavigation_GroupsByTagSorted(t *testing.T) {
	entry := BuildNavigation("Store API", "store.yaml", "openapi/product", []openapi.EndpointRecord{
		ep("GET", "/widgets", "Widgets"),
		ep("GET", "/accounts", "Accounts"),
		ep("POST", "/widgets", "Widgets"),
	})

	assert.Equal(t, "Store API", entry.Group)
	require.Len(t, entry.Pages, 2)

	first, ok := entry.Pages[0].(Group)
	require.True(t, ok)
	assert.Equal(t, "Accounts", first.Group)
	assert.Equal(t, []any{"openapi/product/store.yaml GET /accounts"}, first.Pages)

	second := entry.Pages[1].(Group)
	assert.Equal(t, "Widgets", second.Group)
	assert.Equal(t, []any{
		"openapi/product/store.yaml GET /widgets",
		"openapi/product/store.yaml POST /widgets",
	}, second.Pages)
}

func TestBuildNavigation_SortsPagesByMethodThenPath(t *testing.T) {
	entry := BuildNavigation("Store API", "store.yaml", "openapi/product", []openapi.EndpointRecord{
		ep("POST", "/b", "Things"),
		ep("GET", "/b", "Things"),
		ep("GET", "/a", "Things"),
		ep("DELETE", "/b", "Things"),
	})

	group := entry.Pages[0].(Group)
	assert.Equal(t, []any{
		"openapi/product/store.yaml DELETE /b",
		"openapi/product/store.yaml GET /a",
		"openapi/product/store.yaml GET /b",
		"openapi/product/store.yaml POST /b",
	}, group.Pages)
}

func TestBuildNavigation_FlattensSingleTagMatchingTitle(t *testing.T) {
	entry := BuildNavigation("Widgets", "widgets.yaml", "openapi/product", []openapi.EndpointRecord{
		ep("GET", "/widgets", "widgets"),
		ep("POST", "/widgets", "widgets"),
	})

	assert.Equal(t, "Widgets", entry.Group)
	require.Len(t, entry.Pages, 2)
	_, nested := entry.Pages[0].(Group)
	assert.False(t, nested, "single tag matching the title should flatten to page strings")
	assert.Equal(t, "openapi/product/widgets.yaml GET /widgets", entry.Pages[0])
}

func TestBuildNavigation_UntaggedFallback(t *testing.T) {
	entry := BuildNavigation("Store API", "store.yaml", "openapi/product", []openapi.EndpointRecord{
		ep("GET", "/healthz"),
	})

	group := entry.Pages[0].(Group)
	assert.Equal(t, "Untagged", group.Group)
}

func TestBuildNavigation_EmptyTitleUsesFileName(t *testing.T) {
	entry := BuildNavigation("", "store.yaml", "openapi/product", nil)
	assert.Equal(t, "store.yaml", entry.Group)
}

func TestBuildNavigation_TrimsBasePathSlash(t *testing.T) {
	entry := BuildNavigation("Widgets", "widgets.yaml", "openapi/product/", []openapi.EndpointRecord{
		ep("GET", "/widgets", "Billing"),
	})

	group := entry.Pages[0].(Group)
	assert.Equal(t, "openapi/product/widgets.yaml GET /widgets", group.Pages[0])
}

const sampleDocs = `{
  "$schema": "https://mintlify.com/docs.json",
  "name": "Acme & Co",
  "colors": {"primary": "#0D9373"},
  "integrations": {"timeout": 8080},
  "navigation": {
    "languages": [
      {
        "language": "en",
        "tabs": [
          {
            "tab": "Developer Portal",
            "menu": [
              {
                "groups": [
                  {
                    "group": "API Reference",
                    "pages": [
                      "api-reference/overview",
                      {
                        "group": "Product APIs",
                        "pages": [
                          {
                            "group": "Widgets API",
                            "pages": ["openapi/product/widgets.yaml GET /widgets"]
                          }
                        ]
                      }
                    ]
                  }
                ]
              }
            ]
          }
        ]
      }
    ]
  }
}`

func writeDocs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManager_InsertNewGroupAndSave(t *testing.T) {
	path := writeDocs(t, sampleDocs)

	m := NewManager(path)
	require.NoError(t, m.Load())
	require.NoError(t, m.InsertOrReplace(Group{
		Group: "Accounts API",
		Pages: []any{"openapi/product/accounts.yaml GET /accounts"},
	}))
	require.NoError(t, m.Save())

	reload := NewManager(path)
	require.NoError(t, reload.Load())
	names, err := reload.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"Widgets API", "Accounts API"}, names)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `"$schema": "https://mintlify.com/docs.json"`, "fields outside navigation must survive")
	assert.Contains(t, text, `"Acme & Co"`, "ampersands must not be escaped")
	assert.Contains(t, text, "8080", "numbers must not be rewritten in float notation")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestManager_ReplaceExistingGroup(t *testing.T) {
	path := writeDocs(t, sampleDocs)

	m := NewManager(path)
	require.NoError(t, m.Load())
	require.NoError(t, m.InsertOrReplace(Group{
		Group: "Widgets API",
		Pages: []any{"openapi/product/widgets.yaml DELETE /widgets/{id}"},
	}))

	names, err := m.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"Widgets API"}, names, "replacement must not duplicate the group")
}

func TestManager_InsertAll(t *testing.T) {
	path := writeDocs(t, sampleDocs)

	m := NewManager(path)
	require.NoError(t, m.Load())

	n, err := m.InsertAll([]Group{
		{Group: "Accounts API", Pages: []any{"openapi/product/accounts.yaml GET /accounts"}},
		{Group: "Billing API", Pages: []any{"openapi/product/billing.yaml GET /invoices"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := m.Groups()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestManager_LanguagesMapForm(t *testing.T) {
	mapForm := strings.Replace(sampleDocs,
		`"languages": [
      {
        "language": "en",`,
		`"languages": {
      "en": {`, 1)
	mapForm = strings.Replace(mapForm,
		`      }
    ]
  }
}`,
		`      }
    }
  }
}`, 1)
	path := writeDocs(t, mapForm)

	m := NewManager(path)
	require.NoError(t, m.Load())
	names, err := m.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"Widgets API"}, names)
}

func TestManager_MissingTargetGroup(t *testing.T) {
	trimmed := strings.Replace(sampleDocs, `"group": "Product APIs"`, `"group": "Partner APIs"`, 1)
	path := writeDocs(t, trimmed)

	m := NewManager(path)
	require.NoError(t, m.Load())
	err := m.InsertOrReplace(Group{Group: "Accounts API"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Product APIs")
}

func TestManager_LoadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, m.Load())
}

func TestManager_SaveWithoutLoad(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "docs.json"))
	require.Error(t, m.Save())
}
