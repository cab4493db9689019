package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/reel-lens/internal/config"
	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/intelligence"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/media"
	"github.com/jonathan/reel-lens/internal/metrics"
	"github.com/jonathan/reel-lens/internal/pipeline"
	"github.com/jonathan/reel-lens/internal/reconstruct"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/tasks"
)

// components holds the wired service graph.
type components struct {
	cfg           *config.Config
	client        llm.Client
	invoker       *llm.Invoker
	registry      *tasks.Registry
	store         store.DocumentStore
	cache         *docs.Cache
	pipeline      *pipeline.Pipeline
	chain         *intelligence.Chain
	reconstructor *reconstruct.Reconstructor
}

// buildComponents loads configuration and assembles the service graph.
// Without DATABASE_URL documents live in process memory only.
func buildComponents(ctx context.Context) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rootVerbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureTempDir(); err != nil {
		return nil, err
	}

	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	variants := llm.DefaultVariants()
	if cfg.FlashOnly {
		variants = llm.FlashVariants()
	}
	invoker := llm.NewInvoker(client, llm.WithVariants(variants))

	var docStore store.DocumentStore
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		docStore = pg
	} else {
		slog.Warn("DATABASE_URL not set, documents are stored in memory only")
		docStore = store.NewMemoryStore()
	}

	registry := tasks.NewRegistry()
	cache := docs.NewCache(docStore)

	downloader := media.NewYTDLPDownloader(cfg.YTDLPPath, cfg.TempDir, cfg.MaxDownloadBytes, cfg.CallTimeout)
	segmenter := media.NewFFmpegSegmenter(cfg.FFmpegPath, cfg.FFprobePath, cfg.TempDir, cfg.CallTimeout)

	p := pipeline.New(downloader, segmenter, invoker, docStore, cache, registry, nil)

	resolver := metrics.NewResolver(nil, metrics.NewScraper(cfg.ScraperBrowserEnabled), nil)
	chain := intelligence.NewChain(cache, invoker, resolver, nil)
	reconstructor := reconstruct.New(cache, invoker, nil)

	return &components{
		cfg:           cfg,
		client:        client,
		invoker:       invoker,
		registry:      registry,
		store:         docStore,
		cache:         cache,
		pipeline:      p,
		chain:         chain,
		reconstructor: reconstructor,
	}, nil
}

func (c *components) close() {
	c.store.Close()
	_ = c.client.Close()
}
