// Package extract pulls the interesting parts out of fetched
// documentation HTML: the main content area for conversion, and the
// sidebar navigation anchors for crawling.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// removeSelectors matches chrome that must not end up in the converted
// Markdown: navigation, headers/footers, pagination, scripts.
var removeSelectors = []string{
	"nav", ".sidebar", ".navigation", ".menu", ".breadcrumb",
	"header", "footer", ".header", ".footer",
	".pagination", ".page-nav", ".edit-link",
	"script", "style", ".code-block-copy-btn", ".line-numbers",
}

// contentSelectors is tried in order; the first match is taken as the
// page's main content area.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	".doc-content",
	".markdown-body",
	"[role=\"main\"]",
	".doc-body",
	".documentation",
}

// MainContent strips unwanted chrome from the page and returns the HTML
// of the main content area, falling back to the whole body when no
// known content container matches.
func MainContent(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		content, err := goquery.OuterHtml(sel)
		if err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
		return content, nil
	}

	body := doc.Find("body").First()
	if body.Length() > 0 {
		content, err := goquery.OuterHtml(body)
		if err != nil {
			return "", fmt.Errorf("render body: %w", err)
		}
		return content, nil
	}

	return html, nil
}
