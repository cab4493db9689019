package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/types"
)

// FFmpegSegmenter extracts keyframes and the audio track via ffmpeg/ffprobe.
type FFmpegSegmenter struct {
	FFmpegPath  string
	FFprobePath string
	TempDir     string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewFFmpegSegmenter creates a segmenter with the given tool paths.
func NewFFmpegSegmenter(ffmpegPath, ffprobePath, tempDir string, timeout time.Duration) *FFmpegSegmenter {
	return &FFmpegSegmenter{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		TempDir:     tempDir,
		Timeout:     timeout,
		Logger:      slog.Default().With("component", "segmenter"),
	}
}

// Duration probes the media duration in seconds.
func (s *FFmpegSegmenter) Duration(ctx context.Context, media types.MediaFile) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, s.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		media.Path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, &SegmentationError{Message: "ffprobe failed", Cause: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, &SegmentationError{Message: "unparseable duration", Cause: err}
	}
	return duration, nil
}

// Segment extracts one keyframe every intervalSec seconds plus the audio
// stream (codec copy). Unsupported codecs surface as SegmentationErrors.
func (s *FFmpegSegmenter) Segment(ctx context.Context, media types.MediaFile, intervalSec int) (types.SegmentResult, error) {
	if intervalSec <= 0 {
		return types.SegmentResult{}, &SegmentationError{Message: fmt.Sprintf("invalid interval %d", intervalSec)}
	}

	duration, err := s.Duration(ctx, media)
	if err != nil {
		return types.SegmentResult{}, err
	}

	runID := uuid.New().String()[:8]
	frameDir := filepath.Join(s.TempDir, "keyframes_"+runID)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return types.SegmentResult{}, &SegmentationError{Message: "failed to create keyframe dir", Cause: err}
	}

	extractFrames := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
		defer cancel()

		cmd := exec.CommandContext(callCtx, s.FFmpegPath,
			"-i", media.Path,
			"-vf", fmt.Sprintf("fps=1/%d", intervalSec),
			"-q:v", "2",
			filepath.Join(frameDir, "keyframe_%04d.jpg"),
			"-y",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			s.Logger.Debug("ffmpeg keyframe extraction failed", "output", string(out))
			return &SegmentationError{Message: "ffmpeg keyframe extraction failed", Cause: err}
		}
		return nil
	}
	if err := llm.RetryWithBackoff(ctx, extractFrames, 2, time.Second, nil); err != nil {
		return types.SegmentResult{}, err
	}

	frames, err := filepath.Glob(filepath.Join(frameDir, "keyframe_*.jpg"))
	if err != nil || len(frames) == 0 {
		return types.SegmentResult{}, &SegmentationError{Message: "no keyframes produced", Cause: err}
	}
	sort.Strings(frames)

	keyframes := make([]types.Keyframe, 0, len(frames))
	for i, path := range frames {
		keyframes = append(keyframes, types.Keyframe{
			Index:        i,
			URI:          path,
			TimestampSec: float64(i * intervalSec),
		})
	}

	result := types.SegmentResult{
		Keyframes:   keyframes,
		DurationSec: duration,
	}

	// Audio extraction is best-effort: silent clips are common and the
	// pipeline proceeds without a transcript.
	audioPath := filepath.Join(s.TempDir, "audio_"+runID+".aac")
	if err := s.extractAudio(ctx, media, audioPath); err != nil {
		s.Logger.Debug("audio extraction skipped", "error", err)
	} else {
		result.AudioPath = audioPath
	}

	return result, nil
}

func (s *FFmpegSegmenter) extractAudio(ctx context.Context, media types.MediaFile, outPath string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, s.FFmpegPath,
		"-i", media.Path,
		"-vn",
		"-acodec", "copy",
		outPath,
		"-y",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &SegmentationError{Message: "ffmpeg audio extraction failed: " + string(out), Cause: err}
	}
	return nil
}
