package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/config"
	"github.com/hualin/docpack/internal/logger"
	"github.com/hualin/docpack/internal/notebook"
	"github.com/hualin/docpack/internal/pipeline"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "docpack-upload",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	input := flag.String("input", "downloaded_docs", "Directory holding the Markdown archive")
	pattern := flag.String("pattern", "*.md", "Filename pattern for files to upload")
	name := flag.String("notebook", "Documentation", "Base name for created notebooks")
	batchSize := flag.Int("batch-size", notebook.MaxSourcesPerNotebook, "Sources per notebook")
	delay := flag.Float64("delay", 1.0, "Seconds to wait between uploads")
	maxFiles := flag.Int("max-files", 0, "Maximum number of files to upload, 0 for no limit")
	noResume := flag.Bool("no-resume", false, "Ignore previous progress and start fresh")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	bin := flag.String("bin", "notebooklm", "Path to the notebooklm binary")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	files, err := pipeline.FindFiles(*input, *pattern)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to scan input directory")
	}
	if len(files) == 0 {
		appLogger.WithFields(logger.Fields{
			"input":   *input,
			"pattern": *pattern,
		}).Fatal("No files matched")
	}

	units := make([]batch.Unit, 0, len(files))
	for _, path := range files {
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		units = append(units, batch.Unit{ID: path, Title: title})
	}

	cli := notebook.NewCLI(*bin, filepath.Join(*input, notebook.InfoFileName), appLogger)
	uploader := pipeline.NewUploader(cli, *name, *batchSize, appLogger)

	appLogger.WithFields(logger.Fields{
		"input":      *input,
		"pattern":    *pattern,
		"files":      len(files),
		"notebook":   *name,
		"batch_size": uploader.BatchSize(),
		"resume":     !*noResume,
	}).Info("Starting upload")

	if !*yes && !confirm(len(files), *name, uploader.BatchSize()) {
		appLogger.Info("Upload cancelled")
		return
	}

	store := batch.NewStore(filepath.Join(*input, pipeline.UploadProgressName), appLogger)
	runner := batch.NewRunner(store, batch.Config{
		Delay:           time.Duration(*delay * float64(time.Second)),
		CheckpointEvery: cfg.Batch.CheckpointEvery,
		MaxUnits:        *maxFiles,
		Resume:          !*noResume,
	}, appLogger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, finishing current file...")
		cancel()
	}()

	stats, led := runner.Run(ctx, units, uploader)

	if err := pipeline.WriteUploadReport(*input, *pattern, uploader, led, time.Now()); err != nil {
		appLogger.WithError(err).Error("Failed to write upload report")
	}

	appLogger.WithFields(logger.Fields{
		"total":       stats.Total,
		"completed":   led.CompletedCount(),
		"failed":      len(led.Failed),
		"notebooks":   len(uploader.NotebookIDs()),
		"interrupted": stats.Interrupted,
		"duration":    stats.Duration().Round(time.Second).String(),
	}).Info("Upload finished")
}

// confirm asks before creating notebooks, since uploads hit a real
// external account.
func confirm(fileCount int, name string, batchSize int) bool {
	batches := (fileCount + batchSize - 1) / batchSize
	fmt.Printf("About to upload %d files into %d notebook(s) named %q.\n", fileCount, batches, name)
	fmt.Print("Continue? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
