// Package metrics resolves engagement numbers for a source reel, degrading
// from a live platform API to page scraping to whatever the extraction
// itself captured.
package metrics

import (
	"context"
	"log/slog"
	"time"
)

// Engagement source labels, most to least authoritative.
const (
	SourceLiveAPI         = "live_api"
	SourceScrape          = "scrape"
	SourceExtractionCache = "extraction_cache"
)

// Engagement holds the raw counters for one reel.
type Engagement struct {
	Likes    int64  `json:"likes"`
	Views    int64  `json:"views"`
	Comments int64  `json:"comments"`
	Shares   int64  `json:"shares"`
	Saves    int64  `json:"saves"`
	Source   string `json:"source"`

	FetchedAt time.Time `json:"fetched_at"`
}

// LiveClient fetches engagement from a platform API. Implementations are
// optional; a nil client skips the tier entirely.
type LiveClient interface {
	Engagement(ctx context.Context, sourceURL string) (Engagement, error)
}

// PageScraper extracts engagement from a rendered page.
type PageScraper interface {
	Scrape(ctx context.Context, sourceURL string) (Engagement, error)
}

// Resolver walks the tiers in order. It never returns an error: when every
// tier fails it falls back to the cached extraction values, and when those
// are absent too it returns zero counters tagged as cache data.
type Resolver struct {
	live    LiveClient
	scraper PageScraper
	logger  *slog.Logger
}

// NewResolver builds a resolver. live and scraper may each be nil.
func NewResolver(live LiveClient, scraper PageScraper, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		live:    live,
		scraper: scraper,
		logger:  logger.With("component", "metrics"),
	}
}

// Resolve returns the best available engagement for sourceURL. cached holds
// counts recovered during extraction, used as the last tier.
func (r *Resolver) Resolve(ctx context.Context, sourceURL string, cached Engagement) Engagement {
	if r.live != nil {
		eng, err := r.live.Engagement(ctx, sourceURL)
		if err == nil {
			eng.Source = SourceLiveAPI
			eng.FetchedAt = time.Now().UTC()
			return eng
		}
		r.logger.Debug("live engagement unavailable", "url", sourceURL, "error", err)
	}

	if r.scraper != nil {
		eng, err := r.scraper.Scrape(ctx, sourceURL)
		if err == nil {
			eng.Source = SourceScrape
			eng.FetchedAt = time.Now().UTC()
			return eng
		}
		r.logger.Debug("engagement scrape failed", "url", sourceURL, "error", err)
	}

	cached.Source = SourceExtractionCache
	if cached.FetchedAt.IsZero() {
		cached.FetchedAt = time.Now().UTC()
	}
	return cached
}
