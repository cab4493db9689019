package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	scrapeUserAgent = "Mozilla/5.0 (compatible; ReelLens/1.0)"

	// minPageLength is the minimum HTML size to trust a plain HTTP fetch.
	// Shorter responses are almost certainly JS shells and get rendered in
	// a headless browser instead.
	minPageLength = 500
)

// Scraper extracts engagement counters from a reel's public page via its
// og:/meta tags and interaction-count markup. Pages that render client-side
// fall back to headless Chrome.
type Scraper struct {
	Client         *http.Client
	BrowserEnabled bool
	Timeout        time.Duration
}

// NewScraper creates a scraper with a default HTTP client.
func NewScraper(browserEnabled bool) *Scraper {
	return &Scraper{
		Client:         &http.Client{Timeout: 30 * time.Second},
		BrowserEnabled: browserEnabled,
		Timeout:        30 * time.Second,
	}
}

func (s *Scraper) Scrape(ctx context.Context, sourceURL string) (Engagement, error) {
	html, err := s.fetchHTML(ctx, sourceURL)
	if err != nil {
		return Engagement{}, err
	}

	if shouldUseBrowser(html) && s.BrowserEnabled {
		rendered, rerr := renderPage(ctx, sourceURL, s.Timeout)
		if rerr == nil {
			html = rendered
		}
	}

	eng, err := parseEngagement(html)
	if err != nil {
		return Engagement{}, err
	}
	return eng, nil
}

func (s *Scraper) fetchHTML(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("engagement fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("engagement fetch returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read engagement page: %w", err)
	}
	return string(body), nil
}

// shouldUseBrowser reports whether the fetched HTML is too thin to carry
// real content, indicating a JavaScript-rendered page.
func shouldUseBrowser(html string) bool {
	return len(strings.TrimSpace(html)) < minPageLength
}

// renderPage loads the URL in headless Chrome and returns the rendered HTML.
func renderPage(ctx context.Context, url string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}

var countPattern = regexp.MustCompile(`([\d,.]+)\s*([KkMm]?)\s*(likes?|views?|comments?|shares?)`)

// parseEngagement pulls counters out of meta tags first, then falls back to
// count phrases in the og:description ("1.2M views, 45K likes").
func parseEngagement(html string) (Engagement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Engagement{}, fmt.Errorf("failed to parse engagement page: %w", err)
	}

	var eng Engagement
	found := false

	doc.Find(`meta[property="og:video:views"], meta[name="interaction_count"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			if n, ok := parseCount(content, ""); ok {
				eng.Views = n
				found = true
			}
		}
	})

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		for _, m := range countPattern.FindAllStringSubmatch(desc, -1) {
			n, ok := parseCount(m[1], m[2])
			if !ok {
				continue
			}
			found = true
			switch {
			case strings.HasPrefix(m[3], "like"):
				eng.Likes = n
			case strings.HasPrefix(m[3], "view"):
				eng.Views = n
			case strings.HasPrefix(m[3], "comment"):
				eng.Comments = n
			case strings.HasPrefix(m[3], "share"):
				eng.Shares = n
			}
		}
	}

	if !found {
		return Engagement{}, fmt.Errorf("no engagement markers found in page")
	}
	return eng, nil
}

// parseCount turns "1.2" + "M" or "45,311" into an integer count.
func parseCount(num, suffix string) (int64, bool) {
	num = strings.ReplaceAll(num, ",", "")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(suffix) {
	case "K":
		f *= 1_000
	case "M":
		f *= 1_000_000
	}
	return int64(f), true
}
