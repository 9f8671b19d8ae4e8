package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hualin/docpack/internal/linklist"
)

// sidebarSelectors covers the sidebar markup of the documentation
// engines we crawl (including VitePress and Docusaurus). Tried in
// order; the first selector with matches wins.
var sidebarSelectors = []string{
	"aside.sidebar a",
	"aside#left-nav a",
	".nav-tree a",
	".sidebar-nav a",
	".doc-tree a",
	".navigation a",
	"aside.VPSidebar a",
	".menu a",
}

// SidebarLinks extracts the sidebar navigation anchors from a page.
// Relative hrefs are resolved against baseURL.
func SidebarLinks(html, baseURL string) ([]linklist.Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", baseURL, err)
	}

	for _, selector := range sidebarSelectors {
		var links []linklist.Link
		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			title := strings.TrimSpace(a.Text())
			href, ok := a.Attr("href")
			if title == "" || !ok || href == "" {
				return
			}
			links = append(links, linklist.Link{
				Title: title,
				URL:   resolve(base, href),
			})
		})
		if len(links) > 0 {
			return links, nil
		}
	}

	return nil, nil
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
