// Package types provides type definitions for structured data shared across the reel-lens system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies which extraction schema governs a record's raw data.
type Category string

// The closed category set. Anything a detection call returns outside this
// set is routed to CategoryGeneric.
const (
	CategoryWorkout     Category = "workout"
	CategoryRecipe      Category = "recipe"
	CategoryTravel      Category = "travel"
	CategoryProduct     Category = "product"
	CategoryEducational Category = "educational"
	CategoryMusic       Category = "music"
	CategoryGeneric     Category = "generic"
)

// Categories returns the closed category set in detection order.
// Generic is excluded: it is the fallback, never a detected tag.
func Categories() []Category {
	return []Category{
		CategoryWorkout,
		CategoryRecipe,
		CategoryTravel,
		CategoryProduct,
		CategoryEducational,
		CategoryMusic,
	}
}

// Valid reports whether c is a member of the closed set (including generic).
func (c Category) Valid() bool {
	switch c {
	case CategoryWorkout, CategoryRecipe, CategoryTravel, CategoryProduct,
		CategoryEducational, CategoryMusic, CategoryGeneric:
		return true
	}
	return false
}

// ExtractionRecord is the validated, category-typed result of one pipeline run.
// Immutable once validated; Category fixes which schema governs RawData.
type ExtractionRecord struct {
	ID              uuid.UUID      `json:"id"`
	Category        Category       `json:"category"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ConfidenceScore float64        `json:"confidence_score"`
	SourceURL       string         `json:"source_url,omitempty"`
	ExtractedAt     time.Time      `json:"extracted_at"`
	RawData         map[string]any `json:"raw_data"`
}

// Keyframe is a still image sampled from the video at a fixed interval.
// Keyframes are linked to a record through a shared correlation id and are
// never owned individually.
type Keyframe struct {
	Index        int     `json:"index"`
	URI          string  `json:"uri"`
	TimestampSec float64 `json:"timestamp_sec"`
}

// MediaFile is a downloaded video handle on local disk.
type MediaFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SourceURL string `json:"source_url,omitempty"`
}

// SegmentResult holds the outputs of the segmentation stage.
type SegmentResult struct {
	Keyframes   []Keyframe `json:"keyframes"`
	DurationSec float64    `json:"duration_sec"`
	AudioPath   string     `json:"audio_path,omitempty"`
	Transcript  string     `json:"transcript,omitempty"`
}
