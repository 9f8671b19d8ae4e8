package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hualin/docpack/internal/archive"
	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/logger"
	"github.com/hualin/docpack/internal/notebook"
)

// UploadProgressName is the upload ledger file, kept inside the input
// directory.
const UploadProgressName = ".upload_progress.json"

// UploadFailureListName is the failure report for upload runs.
const UploadFailureListName = "_failed_uploads.txt"

// UploadSummaryName is the JSON summary written after every upload run.
const UploadSummaryName = ".upload_summary.json"

// NotebookService creates notebooks and uploads sources.
type NotebookService interface {
	Create(ctx context.Context, name string, batchNum int) (string, error)
	AddSource(ctx context.Context, notebookID, title, content string) error
}

var _ NotebookService = (*notebook.CLI)(nil)

// Uploader processes one Markdown file per unit, creating a new
// notebook at each batch boundary (the service caps sources per
// notebook). A failed notebook create fails every unit of that batch;
// the run continues with the next batch.
type Uploader struct {
	svc          NotebookService
	notebookName string
	batchSize    int
	log          *logger.Logger

	// per-run state advanced unit by unit
	seq          int
	currentID    string
	currentBatch int
	notebookIDs  []string
}

// NewUploader creates the upload processor. batchSize is clamped to the
// service limit.
func NewUploader(svc NotebookService, notebookName string, batchSize int, log *logger.Logger) *Uploader {
	if batchSize <= 0 || batchSize > notebook.MaxSourcesPerNotebook {
		batchSize = notebook.MaxSourcesPerNotebook
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Uploader{
		svc:          svc,
		notebookName: notebookName,
		batchSize:    batchSize,
		log:          log,
	}
}

// NotebookIDs returns the notebooks created during this run.
func (u *Uploader) NotebookIDs() []string {
	return u.notebookIDs
}

// BatchSize returns the effective per-notebook batch size.
func (u *Uploader) BatchSize() int {
	return u.batchSize
}

// Process uploads one file as a text source.
func (u *Uploader) Process(ctx context.Context, unit batch.Unit) batch.Outcome {
	if u.seq%u.batchSize == 0 {
		u.currentBatch = u.seq/u.batchSize + 1
		u.currentID = ""

		id, err := u.svc.Create(ctx, u.notebookName, u.currentBatch)
		if err != nil {
			u.log.WithError(err).WithField("batch", u.currentBatch).Error("Could not create notebook")
		} else {
			u.currentID = id
			u.notebookIDs = append(u.notebookIDs, id)
			u.log.WithFields(logger.Fields{
				"batch":       u.currentBatch,
				"notebook_id": id,
			}).Info("Notebook created")
		}
	}
	u.seq++

	if u.currentID == "" {
		return batch.Outcome{Err: fmt.Errorf("failed to create notebook %d", u.currentBatch)}
	}

	content, err := os.ReadFile(unit.ID)
	if err != nil {
		return batch.Outcome{Err: fmt.Errorf("read %s: %w", unit.ID, err)}
	}

	title := strings.TrimSuffix(filepath.Base(unit.ID), filepath.Ext(unit.ID))
	if err := u.svc.AddSource(ctx, u.currentID, title, string(content)); err != nil {
		return batch.Outcome{Err: err}
	}
	return batch.Outcome{}
}

// FindFiles scans dir recursively for files whose base name matches
// pattern (shell glob, e.g. "*.md"), sorted by path.
func FindFiles(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, matchErr)
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// UploadSummary is the JSON summary of an upload run, overwritten on
// every run.
type UploadSummary struct {
	NotebookName string   `json:"notebook_name"`
	Notebooks    []string `json:"notebooks"`
	Timestamp    string   `json:"timestamp"`
	TotalFiles   int      `json:"total_files"`
	Uploaded     int      `json:"uploaded"`
	Failed       int      `json:"failed"`
	BatchSize    int      `json:"batch_size"`
	Pattern      string   `json:"pattern"`
}

// WriteUploadReport persists the upload run artifacts in dir: the
// failure list (only when failures exist) and the summary JSON.
func WriteUploadReport(dir, pattern string, uploader *Uploader, led *batch.Ledger, now time.Time) error {
	if len(led.Failed) > 0 {
		path := filepath.Join(dir, UploadFailureListName)
		if err := archive.WriteFailureList(path, "Failed uploads", led.Failed); err != nil {
			return err
		}
	}

	summary := UploadSummary{
		NotebookName: uploader.notebookName,
		Notebooks:    uploader.NotebookIDs(),
		Timestamp:    now.Format(time.RFC3339),
		TotalFiles:   led.Total,
		Uploaded:     led.CompletedCount(),
		Failed:       len(led.Failed),
		BatchSize:    uploader.batchSize,
		Pattern:      pattern,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal upload summary: %w", err)
	}
	path := filepath.Join(dir, UploadSummaryName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write upload summary %s: %w", path, err)
	}
	return nil
}
