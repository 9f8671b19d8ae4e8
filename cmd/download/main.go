package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hualin/docpack/internal/archive"
	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/catalog"
	"github.com/hualin/docpack/internal/config"
	"github.com/hualin/docpack/internal/fetch"
	"github.com/hualin/docpack/internal/linklist"
	"github.com/hualin/docpack/internal/logger"
	"github.com/hualin/docpack/internal/pipeline"
	"github.com/hualin/docpack/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "docpack-download",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	input := flag.String("input", "", "Link list file (text or crawl results JSON)")
	output := flag.String("output", "downloaded_docs", "Directory for the Markdown archive")
	delay := flag.Float64("delay", 1.0, "Seconds to wait between downloads")
	maxFiles := flag.Int("max-files", 0, "Maximum number of files to download, 0 for no limit")
	noResume := flag.Bool("no-resume", false, "Ignore previous progress and start fresh")
	cookie := flag.String("cookie", "", "Raw cookie string for authenticated sites")
	concurrent := flag.Int("concurrent", 1, "Reserved for parallel downloads, currently unused")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *input == "" {
		appLogger.Fatal("Missing required -input flag")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"input":      *input,
		"output":     *output,
		"delay":      *delay,
		"max_files":  *maxFiles,
		"resume":     !*noResume,
		"concurrent": *concurrent,
	}).Info("Starting download")

	links, err := linklist.ParseFile(*input)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse link list")
	}
	if len(links) == 0 {
		appLogger.Fatal("Link list contains no links")
	}

	units := make([]batch.Unit, 0, len(links))
	for _, link := range links {
		units = append(units, batch.Unit{ID: link.URL, Title: link.Title})
	}

	arch, err := archive.New(*output)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create output directory")
	}

	client := fetch.NewClient(&fetch.Config{
		Timeout:   cfg.Fetch.Timeout(),
		UserAgent: cfg.Fetch.UserAgent,
		Cookie:    *cookie,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional document catalog
	var repo *catalog.Repository
	if cfg.Catalog.Enabled {
		db, err := catalog.InitDB(&cfg.Catalog)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize catalog database")
		}
		repo = catalog.NewRepository(db)
	}

	// Optional S3-compatible archive mirror
	var mirror storage.ObjectStorage
	if cfg.Mirror.Enabled {
		mirror, err = storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Mirror.Type),
			Endpoint:  cfg.Mirror.Endpoint,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			UseSSL:    cfg.Mirror.UseSSL,
			Bucket:    cfg.Mirror.Bucket,
			Region:    cfg.Mirror.Region,
			PublicURL: cfg.Mirror.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize archive mirror")
		}
		if err := mirror.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure mirror bucket")
		}
	}

	downloader := pipeline.NewDownloader(client, arch, repo, mirror, appLogger)

	store := batch.NewStore(filepath.Join(*output, pipeline.DownloadProgressName), appLogger)
	runner := batch.NewRunner(store, batch.Config{
		Delay:           time.Duration(*delay * float64(time.Second)),
		CheckpointEvery: cfg.Batch.CheckpointEvery,
		MaxUnits:        *maxFiles,
		Resume:          !*noResume,
	}, appLogger)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, finishing current file...")
		cancel()
	}()

	stats, led := runner.Run(ctx, units, downloader)

	if err := pipeline.WriteDownloadReport(arch, filepath.Base(*input), units, led, time.Now()); err != nil {
		appLogger.WithError(err).Error("Failed to write download report")
	}

	appLogger.WithFields(logger.Fields{
		"total":       stats.Total,
		"completed":   led.CompletedCount(),
		"failed":      len(led.Failed),
		"interrupted": stats.Interrupted,
		"duration":    stats.Duration().Round(time.Second).String(),
	}).Info("Download finished")
}
