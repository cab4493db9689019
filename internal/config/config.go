// Package config provides environment-backed configuration for the CLI and server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort             = 8080
	DefaultWorkerPoolSize   = 4
	DefaultMaxDownloadBytes = 200 << 20 // 200 MiB
	DefaultTempDir          = "/tmp/reel-lens"
	DefaultCallTimeout      = 120 * time.Second
)

// Config holds runtime configuration. All values come from the environment;
// a .env file is loaded by main before Load is called.
type Config struct {
	GeminiAPIKey string // GEMINI_API_KEY (required for serve/extract)
	Port         int    // PORT
	DatabaseURL  string // DATABASE_URL (optional; empty selects the in-memory store)
	TempDir      string // TEMP_STORAGE_PATH

	WorkerPoolSize   int   // WORKER_POOL_SIZE
	MaxDownloadBytes int64 // MAX_DOWNLOAD_BYTES

	// FlashOnly skips the pro variant, which has a tighter free-tier quota.
	FlashOnly bool // GEMINI_FLASH_ONLY

	// ScraperBrowserEnabled allows the metrics scraper to render script-shell
	// pages in a headless browser before parsing.
	ScraperBrowserEnabled bool // SCRAPER_BROWSER_ENABLED

	YTDLPPath   string // YTDLP_PATH
	FFmpegPath  string // FFMPEG_PATH
	FFprobePath string // FFPROBE_PATH

	CallTimeout time.Duration // EXTERNAL_CALL_TIMEOUT_SECONDS
	Verbose     bool
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		Port:             DefaultPort,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TempDir:          DefaultTempDir,
		WorkerPoolSize:   DefaultWorkerPoolSize,
		MaxDownloadBytes: DefaultMaxDownloadBytes,
		YTDLPPath:        "yt-dlp",
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		CallTimeout:      DefaultCallTimeout,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TEMP_STORAGE_PATH"); v != "" {
		cfg.TempDir = v
	}
	if v := os.Getenv("WORKER_POOL_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_POOL_SIZE %q: %w", v, err)
		}
		cfg.WorkerPoolSize = size
	}
	if v := os.Getenv("MAX_DOWNLOAD_BYTES"); v != "" {
		max, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_DOWNLOAD_BYTES %q: %w", v, err)
		}
		cfg.MaxDownloadBytes = max
	}
	if v := os.Getenv("GEMINI_FLASH_ONLY"); v != "" {
		flashOnly, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GEMINI_FLASH_ONLY %q: %w", v, err)
		}
		cfg.FlashOnly = flashOnly
	}
	if v := os.Getenv("SCRAPER_BROWSER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPER_BROWSER_ENABLED %q: %w", v, err)
		}
		cfg.ScraperBrowserEnabled = enabled
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		cfg.YTDLPPath = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("FFPROBE_PATH"); v != "" {
		cfg.FFprobePath = v
	}
	if v := os.Getenv("EXTERNAL_CALL_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXTERNAL_CALL_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.CallTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// Validate checks that the configuration can run the pipeline.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.WorkerPoolSize < 1 {
		return fmt.Errorf("config error: worker pool size must be at least 1")
	}
	if c.MaxDownloadBytes <= 0 {
		return fmt.Errorf("config error: max download bytes must be positive")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("config error: external call timeout must be positive")
	}
	return nil
}

// EnsureTempDir creates the temp storage directory if missing.
func (c *Config) EnsureTempDir() error {
	if err := os.MkdirAll(c.TempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp storage %s: %w", c.TempDir, err)
	}
	return nil
}
