// Package media defines the video acquisition and segmentation collaborators
// and their command-line tool adapters (yt-dlp, ffmpeg).
package media

import (
	"context"
	"fmt"

	"github.com/jonathan/reel-lens/internal/types"
)

// Downloader acquires a source into a local media file.
type Downloader interface {
	Download(ctx context.Context, source string) (types.MediaFile, error)
}

// Segmenter probes media duration and extracts keyframes plus the audio track.
type Segmenter interface {
	Duration(ctx context.Context, media types.MediaFile) (float64, error)
	Segment(ctx context.Context, media types.MediaFile, intervalSec int) (types.SegmentResult, error)
}

// IntervalFor returns the duration-adaptive keyframe interval in seconds.
func IntervalFor(durationSec float64) int {
	switch {
	case durationSec < 15:
		return 2
	case durationSec <= 60:
		return 3
	default:
		return 5
	}
}

// KeyframeCount returns the number of keyframes sampled for a clip:
// one at t=0 plus one per full interval.
func KeyframeCount(durationSec float64, intervalSec int) int {
	if intervalSec <= 0 {
		return 0
	}
	return int(durationSec)/intervalSec + 1
}

// DownloadReason categorizes why an acquisition failed.
type DownloadReason string

// Download failure reasons. None are retryable at the pipeline layer.
const (
	ReasonUnsupportedSource DownloadReason = "unsupported_source"
	ReasonOversize          DownloadReason = "oversize"
	ReasonNetwork           DownloadReason = "network"
)

// DownloadError represents a failed media acquisition.
type DownloadError struct {
	Source string
	Reason DownloadReason
	Cause  error
}

func (e *DownloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("download error (%s) for %s: %v", e.Reason, e.Source, e.Cause)
	}
	return fmt.Sprintf("download error (%s) for %s", e.Reason, e.Source)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// SegmentationError represents a failed keyframe/audio extraction.
type SegmentationError struct {
	Message string
	Cause   error
}

func (e *SegmentationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("segmentation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("segmentation error: %s", e.Message)
}

func (e *SegmentationError) Unwrap() error {
	return e.Cause
}
