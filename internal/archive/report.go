package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hualin/docpack/internal/batch"
)

// FailureListName is the failure report written next to downloaded
// documents when a run had failures.
const FailureListName = "_failed_urls.txt"

// ReadmeName is the archive summary file, rewritten idempotently after
// every run.
const ReadmeName = "README.md"

// WriteFailureList writes the plain-text failure report: one block per
// failed entry (title, URL, error, blank separator). It is only called
// when failures exist.
func WriteFailureList(path, header string, failures []batch.Failure) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", header)
	for _, f := range failures {
		fmt.Fprintf(&b, "- %s\n", f.Title)
		fmt.Fprintf(&b, "  URL: %s\n", f.URL)
		fmt.Fprintf(&b, "  Error: %s\n\n", f.Error)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write failure list %s: %w", path, err)
	}
	return nil
}

// Summary describes one download run for the archive README.
type Summary struct {
	Source     string
	Time       time.Time
	Total      int
	Completed  int
	Failed     int
	Categories map[string]int
}

// WriteReadme writes the human-readable archive summary with counts and
// a category breakdown. It overwrites any previous summary.
func (a *Archive) WriteReadme(s Summary) error {
	var b strings.Builder
	b.WriteString("# Documentation archive\n\n")
	fmt.Fprintf(&b, "- **Source**: %s\n", s.Source)
	fmt.Fprintf(&b, "- **Downloaded**: %s\n", s.Time.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- **Total**: %d documents\n", s.Total)
	fmt.Fprintf(&b, "- **Completed**: %d\n", s.Completed)
	fmt.Fprintf(&b, "- **Failed**: %d\n\n", s.Failed)

	b.WriteString("## Categories\n\n")
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- **%s**: %d\n", name, s.Categories[name])
	}

	path := filepath.Join(a.root, ReadmeName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write readme %s: %w", path, err)
	}
	return nil
}
