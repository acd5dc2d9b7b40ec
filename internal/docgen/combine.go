package docgen

import (
	"fmt"
	"strings"

	"github.com/dshills/oasdoc/internal/openapi"
)

// Combine merges rendered endpoint pages into one publishable document:
// title header, version blockquote, a table of contents built from each
// page's first second-level heading, then the pages separated by rules.
func Combine(doc *openapi.Document, pages []*Page) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s API\n\n", doc.Title())
	fmt.Fprintf(&b, "> **Version:** %s\n", doc.APIVersion())
	if desc := doc.Description(); desc != "" {
		b.WriteString(">\n")
		fmt.Fprintf(&b, "> %s\n", strings.ReplaceAll(strings.TrimSpace(desc), "\n", "\n> "))
	}
	b.WriteString("\n")

	b.WriteString("## Table of Contents\n\n")
	for i, page := range pages {
		title := pageTitle(page)
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", i+1, title, headingAnchor(title))
	}
	b.WriteString("\n---\n\n")

	for _, page := range pages {
		content := strings.TrimRight(page.Output, " \t\n")
		content = strings.TrimRight(strings.TrimSuffix(content, "---"), " \t\n")
		b.WriteString(content)
		b.WriteString("\n\n---\n\n")
	}

	return b.String()
}

// pageTitle extracts the first "## " heading of a rendered page, falling
// back to the endpoint identity when the template produced none.
func pageTitle(page *Page) string {
	for _, line := range strings.Split(page.Output, "\n") {
		if strings.HasPrefix(line, "## ") {
			return strings.TrimSpace(line[3:])
		}
	}
	if page.Record != nil {
		return fmt.Sprintf("%s %s", page.Record.Method, page.Record.Path)
	}
	return "Endpoint"
}

// headingAnchor converts a heading to the anchor form markdown viewers
// generate: lower-cased, spaces to hyphens, most punctuation dropped.
func headingAnchor(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-':
			b.WriteRune('-')
		}
	}
	anchor := b.String()
	for strings.Contains(anchor, "--") {
		anchor = strings.ReplaceAll(anchor, "--", "-")
	}
	return strings.Trim(anchor, "-")
}
