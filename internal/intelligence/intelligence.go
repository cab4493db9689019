// Package intelligence derives insight objects from stored extraction
// records through an ordered stage chain. A stage failure is recorded and
// the chain keeps going; the caller always gets a (possibly partial) object.
package intelligence

import (
	"context"
	"time"

	"github.com/jonathan/reel-lens/internal/metrics"
	"github.com/jonathan/reel-lens/internal/store"
)

// AgentVersion is stamped into every generated object's metadata.
const AgentVersion = "1.0.0"

// ReelContext is the normalized view of a stored record that downstream
// stages operate on.
type ReelContext struct {
	DocumentID    string             `json:"document_id"`
	CorrelationID string             `json:"correlation_id"`
	Title         string             `json:"title"`
	Category      string             `json:"category"`
	Description   string             `json:"description"`
	Transcript    string             `json:"transcript,omitempty"`
	Hashtags      []string           `json:"hashtags,omitempty"`
	SourceURL     string             `json:"source_url,omitempty"`
	Confidence    float64            `json:"confidence_score"`
	ExtractedAt   time.Time          `json:"extracted_at"`
	Metrics       metrics.Engagement `json:"metrics"`
	KeyframeCount int                `json:"keyframe_count"`
}

// Understanding is the model's structured read of the content.
type Understanding struct {
	ContentType string   `json:"content_type"`
	Entities    []string `json:"entities"`
	Topics      []string `json:"topics"`
	Summary     string   `json:"summary"`
	Sentiment   string   `json:"sentiment"`
}

// TrustAssessment is the deterministic reliability read.
type TrustAssessment struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Badge     string  `json:"badge"`
}

// Enrichment carries the content-type-specific additions.
type Enrichment struct {
	Type        string         `json:"type"`
	Fields      map[string]any `json:"fields,omitempty"`
	ActionItems []string       `json:"action_items"`
}

// Metadata identifies one generation run.
type Metadata struct {
	DocumentID    string    `json:"document_id"`
	CorrelationID string    `json:"correlation_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	AgentVersion  string    `json:"agent_version"`
}

// KeyframeSummary describes the derivative stills linked to the record.
type KeyframeSummary struct {
	Count int      `json:"count"`
	URIs  []string `json:"uris,omitempty"`
}

// IntelligenceObject is the merged output of the chain. It is produced
// fresh per request and never mutates the underlying record.
type IntelligenceObject struct {
	Metadata      Metadata        `json:"metadata"`
	ReelContext   ReelContext     `json:"reel_context"`
	Understanding Understanding   `json:"content_understanding"`
	Trust         TrustAssessment `json:"trust_assessment"`
	Enrichment    Enrichment      `json:"type_specific_enrichment"`
	Keyframes     KeyframeSummary `json:"keyframes"`
	Errors        []string        `json:"processing_errors"`
}

// Accumulator is the shared state threaded through the stages.
type Accumulator struct {
	Document store.Document

	Context       ReelContext
	Understanding Understanding
	Trust         TrustAssessment
	Enrichment    Enrichment

	Errors []string
}

func (a *Accumulator) recordError(err error) {
	a.Errors = append(a.Errors, err.Error())
}

// Stage is one chain step. Stages record their failures on the accumulator
// and must not abort the chain.
type Stage func(ctx context.Context, acc *Accumulator)
