// Package pipeline orchestrates one extraction run end to end: acquire the
// video, segment it, classify and extract with the model, validate, persist.
package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/reel-lens/internal/category"
	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/media"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/tasks"
	"github.com/jonathan/reel-lens/internal/types"
)

// Progress milestones reported to status polls as each stage starts/finishes.
const (
	progressDownloadStart = 10
	progressDownloadDone  = 30
	progressSegmentStart  = 40
	progressSegmentDone   = 60
	progressAnalyzeStart  = 70
	progressAnalyzeDone   = 85
	progressStoring       = 90
)

// Pipeline wires the stage collaborators for extraction runs.
type Pipeline struct {
	downloader media.Downloader
	segmenter  media.Segmenter
	invoker    *llm.Invoker
	store      store.DocumentStore
	cache      *docs.Cache
	registry   *tasks.Registry
	logger     *slog.Logger

	// KeepMedia disables temp-file cleanup, for debugging extraction runs.
	KeepMedia bool

	// writeBackoff is the base delay between storage write retries.
	writeBackoff time.Duration
}

// New assembles a pipeline.
func New(downloader media.Downloader, segmenter media.Segmenter, invoker *llm.Invoker,
	docStore store.DocumentStore, cache *docs.Cache, registry *tasks.Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		downloader:   downloader,
		segmenter:    segmenter,
		invoker:      invoker,
		store:        docStore,
		cache:        cache,
		registry:     registry,
		logger:       logger.With("component", "pipeline"),
		writeBackoff: time.Second,
	}
}

// CorrelationID derives the stable correlation key for a source, so repeat
// submissions of the same reel can be grouped after the fact.
func CorrelationID(source string) string {
	sum := md5.Sum([]byte(source))
	return "reel_" + hex.EncodeToString(sum[:])[:12]
}

// Run executes the full extraction for a registered task. Any stage error
// halts the run and fails the task; partial results are never stored.
func (p *Pipeline) Run(ctx context.Context, taskID uuid.UUID, source string) {
	doc, err := p.run(ctx, taskID, source)
	if err != nil {
		p.logger.Error("extraction failed", "task_id", taskID, "error", err)
		_ = p.registry.Fail(taskID, failureMessage(err))
		return
	}
	_ = p.registry.Complete(taskID, doc.Record.ID)
	p.logger.Info("extraction completed",
		"task_id", taskID,
		"document_id", doc.ID,
		"category", doc.Record.Category,
	)
}

func (p *Pipeline) run(ctx context.Context, taskID uuid.UUID, source string) (store.Document, error) {
	logger := p.logger.With("task_id", taskID)

	// Acquire.
	_ = p.registry.Update(taskID, tasks.StageDownloading, progressDownloadStart)
	mediaFile, err := p.downloader.Download(ctx, source)
	if err != nil {
		return store.Document{}, err
	}
	if !p.KeepMedia && mediaFile.SourceURL != "" {
		defer p.cleanup(mediaFile.Path)
	}
	_ = p.registry.Update(taskID, tasks.StageDownloading, progressDownloadDone)
	logger.Debug("media acquired", "path", mediaFile.Path, "bytes", mediaFile.SizeBytes)

	// Segment.
	_ = p.registry.Update(taskID, tasks.StageSegmenting, progressSegmentStart)
	duration, err := p.segmenter.Duration(ctx, mediaFile)
	if err != nil {
		return store.Document{}, err
	}
	interval := media.IntervalFor(duration)
	segments, err := p.segmenter.Segment(ctx, mediaFile, interval)
	if err != nil {
		return store.Document{}, err
	}
	if !p.KeepMedia {
		for _, kf := range segments.Keyframes {
			defer p.cleanup(kf.URI)
		}
		if segments.AudioPath != "" {
			defer p.cleanup(segments.AudioPath)
		}
	}
	_ = p.registry.Update(taskID, tasks.StageSegmenting, progressSegmentDone)
	logger.Debug("media segmented",
		"duration_sec", segments.DurationSec,
		"interval_sec", interval,
		"keyframes", len(segments.Keyframes),
	)

	// Classify and extract.
	_ = p.registry.Update(taskID, tasks.StageAnalyzing, progressAnalyzeStart)
	parts := mediaParts(segments)

	tagResponse, _, err := p.invoker.GenerateText(ctx, llm.Request{
		Prompt: category.DetectionPrompt(),
		Media:  parts,
	})
	if err != nil {
		return store.Document{}, fmt.Errorf("category detection failed: %w", err)
	}
	cat := category.ParseTag(tagResponse)
	logger.Debug("category detected", "category", cat)

	schema := category.ForCategory(cat)
	payload, _, err := p.invoker.GenerateJSON(ctx, llm.Request{
		Prompt:     schema.Prompt,
		Media:      parts,
		JSONOutput: true,
	})
	if err != nil {
		return store.Document{}, fmt.Errorf("extraction failed: %w", err)
	}
	_ = p.registry.Update(taskID, tasks.StageAnalyzing, progressAnalyzeDone)

	record, err := category.Validate(cat, payload, source)
	if err != nil {
		return store.Document{}, err
	}

	// Persist.
	_ = p.registry.Update(taskID, tasks.StageStoring, progressStoring)
	doc := store.Document{
		ID:            record.ID.String(),
		CorrelationID: CorrelationID(source),
		Record:        *record,
		Keyframes:     segments.Keyframes,
		StoredAt:      time.Now().UTC(),
	}
	writeOp := func() error { return p.store.Write(ctx, doc) }
	if err := llm.RetryWithBackoff(ctx, writeOp, 3, p.writeBackoff, store.IsRetryable); err != nil {
		return store.Document{}, err
	}
	p.cache.Put(doc)

	return doc, nil
}

// failureMessage renders the status-poll error for a failed run. Validation
// errors carry their field details; everything else gets a fixed message so
// raw tool and provider output stays in the logs.
func failureMessage(err error) string {
	var (
		downloadErr   *media.DownloadError
		segmentErr    *media.SegmentationError
		validationErr *category.ValidationError
		parseErr      *llm.ParseError
		modelErr      *llm.ModelError
		exhausted     *llm.ErrVariantsExhausted
		storageErr    *store.StorageError
	)
	switch {
	case errors.As(err, &downloadErr):
		switch downloadErr.Reason {
		case media.ReasonUnsupportedSource:
			return "the source is not a supported video URL or file"
		case media.ReasonOversize:
			return "the video exceeds the download size limit"
		default:
			return "could not download the video"
		}
	case errors.As(err, &segmentErr):
		return "could not segment the video"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &parseErr), errors.As(err, &modelErr), errors.As(err, &exhausted):
		return "the language model could not analyze this reel"
	case errors.As(err, &storageErr):
		return "could not store the extraction result"
	default:
		return "extraction failed"
	}
}

// mediaParts builds the model context from keyframes and the audio track.
func mediaParts(segments types.SegmentResult) []llm.MediaPart {
	parts := make([]llm.MediaPart, 0, len(segments.Keyframes)+1)
	for _, kf := range segments.Keyframes {
		parts = append(parts, llm.MediaPart{Path: kf.URI, MIMEType: "image/jpeg"})
	}
	if segments.AudioPath != "" {
		parts = append(parts, llm.MediaPart{Path: segments.AudioPath, MIMEType: "audio/aac"})
	}
	return parts
}

func (p *Pipeline) cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Debug("temp cleanup failed", "path", path, "error", err)
	}
}
