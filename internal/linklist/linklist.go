// Package linklist reads and writes documentation link lists in the two
// interchange formats the pipeline uses: a JSON list of {title, url}
// records, and a line-oriented text format where a numbered line
// ("N. Title") introduces a title and a following line beginning with
// "http" supplies its URL.
package linklist

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Link is one {title, url} record.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

var numberedLine = regexp.MustCompile(`^\d+\.\s*`)

// jsonDocument matches the crawl output shape, where links sit under a
// "links" key next to run metadata.
type jsonDocument struct {
	Links []Link `json:"links"`
}

// Parse decodes a link list from either format. JSON input (a bare array
// or an object with a "links" key) that has neither shape is a setup
// error; anything that is not JSON is parsed as text.
func Parse(content []byte) ([]Link, error) {
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return parseJSON([]byte(trimmed))
	}
	return parseText(trimmed), nil
}

// ParseFile reads and parses a link list file. A missing file is a setup
// error for the caller to treat as fatal.
func ParseFile(path string) ([]Link, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read link list %s: %w", path, err)
	}
	links, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse link list %s: %w", path, err)
	}
	return links, nil
}

func parseJSON(content []byte) ([]Link, error) {
	var doc jsonDocument
	if err := json.Unmarshal(content, &doc); err == nil && doc.Links != nil {
		return doc.Links, nil
	}

	var links []Link
	if err := json.Unmarshal(content, &links); err == nil {
		return links, nil
	}

	return nil, fmt.Errorf("unrecognized JSON link list format")
}

// parseText walks the line-oriented format: blank lines and # comments
// are skipped, lines beginning with http are URLs, numbered lines are
// titles, and any other line acts as a title for a pending URL.
func parseText(content string) []Link {
	var links []Link
	var currentTitle string
	var currentURL string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "http"):
			currentURL = line
			if currentTitle != "" {
				links = append(links, Link{Title: currentTitle, URL: currentURL})
				currentTitle = ""
				currentURL = ""
			}
		case numberedLine.MatchString(line):
			currentTitle = numberedLine.ReplaceAllString(line, "")
		default:
			if currentURL != "" {
				title := currentTitle
				if title == "" {
					title = line
				}
				links = append(links, Link{Title: title, URL: currentURL})
				currentURL = ""
			}
			currentTitle = line
		}
	}

	return links
}

// FormatText renders links in the numbered text format, one block per
// link: "N. Title" followed by an indented URL and a blank line.
func FormatText(links []Link) string {
	var b strings.Builder
	for i, link := range links {
		fmt.Fprintf(&b, "%d. %s\n", i+1, link.Title)
		fmt.Fprintf(&b, "   %s\n\n", link.URL)
	}
	return b.String()
}
