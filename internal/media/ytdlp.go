package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/types"
)

// YTDLPDownloader downloads videos from URL sources via the yt-dlp binary.
// Local file sources are passed through after a size check.
type YTDLPDownloader struct {
	BinPath  string
	TempDir  string
	MaxBytes int64
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewYTDLPDownloader creates a downloader with the given binary path and limits.
func NewYTDLPDownloader(binPath, tempDir string, maxBytes int64, timeout time.Duration) *YTDLPDownloader {
	return &YTDLPDownloader{
		BinPath:  binPath,
		TempDir:  tempDir,
		MaxBytes: maxBytes,
		Timeout:  timeout,
		Logger:   slog.Default().With("component", "downloader"),
	}
}

// Download acquires source into a local media file. URL schemes other than
// http/https are rejected; oversize payloads and network failures surface as
// typed DownloadErrors. Transient tool failures get one bounded retry.
func (d *YTDLPDownloader) Download(ctx context.Context, source string) (types.MediaFile, error) {
	if !strings.Contains(source, "://") {
		return d.fromLocalFile(source)
	}

	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return types.MediaFile{}, &DownloadError{Source: source, Reason: ReasonUnsupportedSource, Cause: err}
	}

	outPath := filepath.Join(d.TempDir, fmt.Sprintf("video_%s.mp4", uuid.New().String()[:8]))

	runOnce := func() error {
		callCtx, cancel := context.WithTimeout(ctx, d.Timeout)
		defer cancel()

		args := []string{
			"-f", "best[ext=mp4]/best",
			"--max-filesize", fmt.Sprintf("%d", d.MaxBytes),
			"-o", outPath,
			"--no-playlist",
			source,
		}
		cmd := exec.CommandContext(callCtx, d.BinPath, args...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			d.Logger.Debug("yt-dlp failed", "source", source, "output", string(out))
			return fmt.Errorf("yt-dlp: %w", err)
		}
		return nil
	}

	if err := llm.RetryWithBackoff(ctx, runOnce, 2, time.Second, nil); err != nil {
		return types.MediaFile{}, &DownloadError{Source: source, Reason: ReasonNetwork, Cause: err}
	}

	return d.fromDownloaded(source, outPath)
}

func (d *YTDLPDownloader) fromLocalFile(path string) (types.MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.MediaFile{}, &DownloadError{Source: path, Reason: ReasonUnsupportedSource, Cause: err}
	}
	if info.Size() > d.MaxBytes {
		return types.MediaFile{}, &DownloadError{Source: path, Reason: ReasonOversize}
	}
	return types.MediaFile{Path: path, SizeBytes: info.Size()}, nil
}

func (d *YTDLPDownloader) fromDownloaded(source, outPath string) (types.MediaFile, error) {
	// yt-dlp occasionally writes a different extension than requested.
	candidate := outPath
	if _, err := os.Stat(candidate); err != nil {
		base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
		matches, _ := filepath.Glob(base + ".*")
		if len(matches) == 0 {
			return types.MediaFile{}, &DownloadError{Source: source, Reason: ReasonNetwork, Cause: fmt.Errorf("no output file produced")}
		}
		candidate = matches[0]
	}

	info, err := os.Stat(candidate)
	if err != nil {
		return types.MediaFile{}, &DownloadError{Source: source, Reason: ReasonNetwork, Cause: err}
	}
	if info.Size() > d.MaxBytes {
		_ = os.Remove(candidate)
		return types.MediaFile{}, &DownloadError{Source: source, Reason: ReasonOversize}
	}

	return types.MediaFile{Path: candidate, SizeBytes: info.Size(), SourceURL: source}, nil
}
