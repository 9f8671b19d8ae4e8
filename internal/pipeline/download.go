// Package pipeline provides the per-unit processors the batch runner
// drives: page download-and-convert, sidebar crawl, and notebook upload.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hualin/docpack/internal/archive"
	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/catalog"
	"github.com/hualin/docpack/internal/extract"
	"github.com/hualin/docpack/internal/fetch"
	"github.com/hualin/docpack/internal/logger"
	"github.com/hualin/docpack/internal/markdown"
	"github.com/hualin/docpack/internal/storage"
)

// DownloadProgressName is the download ledger file, kept inside the
// archive directory.
const DownloadProgressName = ".download_progress.json"

// Fetcher fetches page HTML.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

var _ Fetcher = (*fetch.Client)(nil)

// Downloader processes one link per unit: fetch, extract main content,
// convert to Markdown, and file into the archive. The catalog and the
// mirror are best-effort; the written file is the source of truth.
type Downloader struct {
	fetcher Fetcher
	conv    *markdown.Converter
	arch    *archive.Archive
	docs    *catalog.Repository   // optional
	mirror  storage.ObjectStorage // optional
	log     *logger.Logger
	now     func() time.Time
}

// NewDownloader creates the download processor. docs and mirror may be
// nil to disable the catalog and the object-storage mirror.
func NewDownloader(fetcher Fetcher, arch *archive.Archive, docs *catalog.Repository, mirror storage.ObjectStorage, log *logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Downloader{
		fetcher: fetcher,
		conv:    markdown.NewConverter(),
		arch:    arch,
		docs:    docs,
		mirror:  mirror,
		log:     log,
		now:     time.Now,
	}
}

// Process downloads one page and writes its Markdown document.
func (d *Downloader) Process(ctx context.Context, unit batch.Unit) batch.Outcome {
	html, err := d.fetcher.Get(ctx, unit.ID)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	content, err := extract.MainContent(html)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	downloaded := d.now()
	doc, err := d.conv.Convert(content, unit.Title, unit.ID, downloaded)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	category := markdown.Categorize(unit.ID)
	filename := markdown.SanitizeFilename(unit.Title) + ".md"

	path, err := d.arch.WriteDocument(category, filename, doc)
	if err != nil {
		return batch.Outcome{Err: err}
	}

	if d.docs != nil {
		record := &catalog.Document{
			ID:           uuid.New().String(),
			Title:        unit.Title,
			URL:          unit.ID,
			Category:     category,
			Path:         path,
			Size:         int64(len(doc)),
			DownloadedAt: downloaded,
			CreatedAt:    downloaded,
			UpdatedAt:    downloaded,
		}
		if err := d.docs.Upsert(ctx, record); err != nil {
			d.log.WithError(err).WithField(logger.FieldURL, unit.ID).Warn("Could not catalog document")
		}
	}

	if d.mirror != nil {
		d.mirrorDocument(ctx, category, filename, doc)
	}

	return batch.Outcome{}
}

// mirrorDocument copies the document to object storage. Failures are
// logged, never returned: the local file already exists.
func (d *Downloader) mirrorDocument(ctx context.Context, category, filename, doc string) {
	key := category + "/" + filename

	exists, err := d.mirror.Exists(ctx, key)
	if err != nil {
		d.log.WithError(err).WithField("key", key).Warn("Could not check mirror")
		return
	}
	if exists {
		return
	}

	reader := bytes.NewReader([]byte(doc))
	if err := d.mirror.Upload(ctx, key, reader, int64(len(doc)), "text/markdown"); err != nil {
		d.log.WithError(err).WithField("key", key).Warn("Could not mirror document")
		return
	}
	d.log.WithField("url", d.mirror.GetURL(key)).Debug("Document mirrored")
}

// WriteDownloadReport persists the run artifacts: the failure list (only
// when failures exist) and the archive README with category tallies.
func WriteDownloadReport(arch *archive.Archive, inputName string, units []batch.Unit, led *batch.Ledger, now time.Time) error {
	if len(led.Failed) > 0 {
		path := filepath.Join(arch.Root(), archive.FailureListName)
		if err := archive.WriteFailureList(path, "Failed downloads", led.Failed); err != nil {
			return err
		}
	}

	categories := make(map[string]int)
	for _, u := range units {
		categories[markdown.Categorize(u.ID)]++
	}

	if err := arch.WriteReadme(archive.Summary{
		Source:     inputName,
		Time:       now,
		Total:      led.Total,
		Completed:  led.CompletedCount(),
		Failed:     len(led.Failed),
		Categories: categories,
	}); err != nil {
		return fmt.Errorf("write download report: %w", err)
	}
	return nil
}
