package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/extract"
	"github.com/hualin/docpack/internal/linklist"
	"github.com/hualin/docpack/internal/logger"
)

// Crawler processes one page per unit: visit it and extract its sidebar
// navigation links, reporting unseen ones back to the runner. It also
// accumulates the full discovered link list for the results files.
type Crawler struct {
	fetcher Fetcher
	log     *logger.Logger

	links []linklist.Link
	seen  map[string]struct{}
}

// NewCrawler creates the crawl processor. prior seeds the accumulated
// link list when resuming a run.
func NewCrawler(fetcher Fetcher, prior []linklist.Link, log *logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetDefault()
	}
	c := &Crawler{
		fetcher: fetcher,
		log:     log,
		seen:    make(map[string]struct{}, len(prior)),
	}
	for _, l := range prior {
		if _, ok := c.seen[l.URL]; ok {
			continue
		}
		c.seen[l.URL] = struct{}{}
		c.links = append(c.links, l)
	}
	return c
}

// Links returns all sidebar links discovered so far, in discovery order.
func (c *Crawler) Links() []linklist.Link {
	return c.links
}

// Process visits one page and extracts its sidebar links. Hrefs are
// resolved against the visited page's URL.
func (c *Crawler) Process(ctx context.Context, unit batch.Unit) batch.Outcome {
	html, err := c.fetcher.Get(ctx, unit.ID)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	links, err := extract.SidebarLinks(html, unit.ID)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	var discovered []batch.Unit
	for _, l := range links {
		if _, ok := c.seen[l.URL]; ok {
			continue
		}
		c.seen[l.URL] = struct{}{}
		c.links = append(c.links, l)
		discovered = append(discovered, batch.Unit{ID: l.URL, Title: l.Title})
	}

	c.log.WithFields(logger.Fields{
		logger.FieldURL: unit.ID,
		"found":         len(links),
		"new":           len(discovered),
	}).Info("Sidebar extracted")

	return batch.Outcome{Discovered: discovered}
}

// CrawlResult is the JSON results document written after a crawl run.
type CrawlResult struct {
	StartURL     string          `json:"start_url"`
	TotalLinks   int             `json:"total_links"`
	TotalVisited int             `json:"total_visited"`
	FailedCount  int             `json:"failed_count"`
	Timestamp    string          `json:"timestamp"`
	Links        []linklist.Link `json:"links"`
	FailedURLs   []batch.Failure `json:"failed_urls"`
}

// WriteCrawlReport saves the crawl results: a JSON file at outputPath
// and a human-readable text listing next to it (same name, .txt). The
// text listing is valid download input.
func WriteCrawlReport(outputPath, startURL string, crawler *Crawler, led *batch.Ledger, now time.Time) error {
	links := crawler.Links()

	result := CrawlResult{
		StartURL:     startURL,
		TotalLinks:   len(links),
		TotalVisited: led.CompletedCount(),
		FailedCount:  len(led.Failed),
		Timestamp:    now.Format(time.RFC3339),
		Links:        links,
		FailedURLs:   led.Failed,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal crawl result: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write crawl result %s: %w", outputPath, err)
	}

	var b strings.Builder
	b.WriteString("# Sidebar extraction results\n\n")
	fmt.Fprintf(&b, "Source: %s\n", startURL)
	fmt.Fprintf(&b, "Extracted: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total links: %d\n", len(links))
	fmt.Fprintf(&b, "Visited: %d\n", led.CompletedCount())
	fmt.Fprintf(&b, "Failed: %d\n\n", len(led.Failed))
	b.WriteString("---\n\n")
	b.WriteString(linklist.FormatText(links))

	txtPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".txt"
	if err := os.WriteFile(txtPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write crawl listing %s: %w", txtPath, err)
	}
	return nil
}

// CrawlProgressPath derives the crawl ledger location from the output
// file: "<stem>_progress.json".
func CrawlProgressPath(outputPath string) string {
	stem := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return stem + "_progress.json"
}

// LoadPriorLinks reads a previous crawl's results file so a resumed run
// keeps its accumulated link list. Missing or unreadable files yield
// nil.
func LoadPriorLinks(outputPath string) []linklist.Link {
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil
	}
	var result CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result.Links
}
