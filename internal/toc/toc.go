// Package toc builds Mintlify navigation entries from extracted endpoints
// and maintains them inside a docs.json file.
package toc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/oasdoc/internal/openapi"
)

// Group is one navigation entry in Mintlify's docs.json format. Pages holds
// either page reference strings or nested Group values.
type Group struct {
	Group string `json:"group"`
	Pages []any  `json:"pages"`
}

// BuildNavigation produces the navigation group for one spec file. Endpoints
// are bucketed by primary tag, tags sorted alphabetically, and each bucket
// sorted by (method, path) so regenerating an unchanged spec yields an
// identical entry. When the file declares a single tag matching the API
// title, the tag level is flattened away so the sidebar does not repeat the
// same name twice.
func BuildNavigation(title, fileName, basePath string, endpoints []openapi.EndpointRecord) Group {
	if title == "" {
		title = fileName
	}
	basePath = strings.TrimRight(basePath, "/")

	byTag := make(map[string][]openapi.EndpointRecord)
	for _, ep := range endpoints {
		tag := ep.PrimaryTag()
		byTag[tag] = append(byTag[tag], ep)
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	if len(tags) == 1 && strings.EqualFold(tags[0], title) {
		return Group{Group: title, Pages: pageStrings(basePath, fileName, byTag[tags[0]])}
	}

	entry := Group{Group: title, Pages: make([]any, 0, len(tags))}
	for _, tag := range tags {
		entry.Pages = append(entry.Pages, Group{
			Group: tag,
			Pages: pageStrings(basePath, fileName, byTag[tag]),
		})
	}
	return entry
}

func pageStrings(basePath, fileName string, endpoints []openapi.EndpointRecord) []any {
	sorted := make([]openapi.EndpointRecord, len(endpoints))
	copy(sorted, endpoints)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Method != sorted[j].Method {
			return sorted[i].Method < sorted[j].Method
		}
		return sorted[i].Path < sorted[j].Path
	})

	pages := make([]any, 0, len(sorted))
	for _, ep := range sorted {
		pages = append(pages, fmt.Sprintf("%s/%s %s %s", basePath, fileName, ep.Method, ep.Path))
	}
	return pages
}
