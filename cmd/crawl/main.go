package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hualin/docpack/internal/batch"
	"github.com/hualin/docpack/internal/config"
	"github.com/hualin/docpack/internal/fetch"
	"github.com/hualin/docpack/internal/linklist"
	"github.com/hualin/docpack/internal/logger"
	"github.com/hualin/docpack/internal/pipeline"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "docpack-crawl",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	startURL := flag.String("url", "", "Sidebar page to start crawling from")
	output := flag.String("output", "crawl_results.json", "Path for the crawl results JSON")
	delay := flag.Float64("delay", 1.0, "Seconds to wait between page fetches")
	maxPages := flag.Int("max-pages", 0, "Maximum number of pages to visit, 0 for no limit")
	noResume := flag.Bool("no-resume", false, "Ignore previous progress and start fresh")
	cookie := flag.String("cookie", "", "Raw cookie string for authenticated sites")
	headless := flag.Bool("headless", true, "Reserved for browser-based crawling, currently unused")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *startURL == "" {
		appLogger.Fatal("Missing required -url flag")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"url":       *startURL,
		"output":    *output,
		"delay":     *delay,
		"max_pages": *maxPages,
		"resume":    !*noResume,
		"headless":  *headless,
	}).Info("Starting crawl")

	client := fetch.NewClient(&fetch.Config{
		Timeout:   cfg.Fetch.Timeout(),
		UserAgent: cfg.Fetch.UserAgent,
		Cookie:    *cookie,
	})

	// A resumed crawl reloads the previously discovered links so the
	// frontier survives the restart, not just the visited set.
	var prior []linklist.Link
	if !*noResume {
		prior = pipeline.LoadPriorLinks(*output)
	}
	crawler := pipeline.NewCrawler(client, prior, appLogger)

	units := []batch.Unit{{ID: *startURL, Title: *startURL}}
	for _, link := range prior {
		if link.URL != *startURL {
			units = append(units, batch.Unit{ID: link.URL, Title: link.Title})
		}
	}

	store := batch.NewStore(pipeline.CrawlProgressPath(*output), appLogger)
	runner := batch.NewRunner(store, batch.Config{
		Delay:           time.Duration(*delay * float64(time.Second)),
		CheckpointEvery: cfg.Batch.CheckpointEvery,
		MaxUnits:        *maxPages,
		Resume:          !*noResume,
	}, appLogger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, finishing current page...")
		cancel()
	}()

	stats, led := runner.Run(ctx, units, crawler)

	if err := pipeline.WriteCrawlReport(*output, *startURL, crawler, led, time.Now()); err != nil {
		appLogger.WithError(err).Error("Failed to write crawl results")
	}

	appLogger.WithFields(logger.Fields{
		"links_found": len(crawler.Links()),
		"visited":     led.CompletedCount(),
		"failed":      len(led.Failed),
		"interrupted": stats.Interrupted,
		"duration":    stats.Duration().Round(time.Second).String(),
	}).Info("Crawl finished")
}
