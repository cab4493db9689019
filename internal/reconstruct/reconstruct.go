// Package reconstruct turns the leftover free-form fields of a stored
// record into one human-friendly narrative overlay. The overlay is derived
// output only; the stored record is never mutated.
package reconstruct

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
)

// Overlay is the reconstructed presentation block.
type Overlay struct {
	Heading  string `json:"heading,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	RichText string `json:"rich_text"`
}

// ValidationError indicates the model produced a structurally valid but
// unusable overlay.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reconstruction validation failed: %s", e.Message)
}

// Reconstructor produces overlays through one JSON model call per request.
type Reconstructor struct {
	cache   *docs.Cache
	invoker *llm.Invoker
	logger  *slog.Logger
}

// New creates a reconstructor.
func New(cache *docs.Cache, invoker *llm.Invoker, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{
		cache:   cache,
		invoker: invoker,
		logger:  logger.With("component", "reconstruct"),
	}
}

// Reconstruct generates the overlay for a stored document.
func (r *Reconstructor) Reconstruct(ctx context.Context, documentID string) (Overlay, error) {
	doc, err := r.cache.Get(ctx, documentID)
	if err != nil {
		return Overlay{}, err
	}

	rawJSON, err := json.Marshal(doc.Record.RawData)
	if err != nil {
		return Overlay{}, fmt.Errorf("failed to serialize raw data: %w", err)
	}

	prompt := buildPrompt(string(doc.Record.Category), doc.Record.Title, doc.Record.Description, string(rawJSON))
	payload, _, err := r.invoker.GenerateJSON(ctx, llm.Request{Prompt: prompt, JSONOutput: true})
	if err != nil {
		return Overlay{}, err
	}

	var overlay Overlay
	if err := json.Unmarshal(payload, &overlay); err != nil {
		return Overlay{}, &ValidationError{Message: "overlay is not the expected JSON shape"}
	}
	if strings.TrimSpace(overlay.RichText) == "" {
		return Overlay{}, &ValidationError{Message: "rich_text is empty"}
	}

	r.logger.Debug("overlay reconstructed", "document_id", documentID, "rich_text_bytes", len(overlay.RichText))
	return overlay, nil
}

func buildPrompt(category, title, description, rawJSON string) string {
	return fmt.Sprintf(`You are given structured JSON extracted from a short social video (category: %s).
The main schema fields have already been used for the UI. Focus on the leftover
descriptive context that did not fit the main schema.

Create ONE rich, human-friendly section that:
- Summarizes the most useful insights from this leftover data.
- Groups related ideas into short paragraphs or bullet lists.
- Preserves concrete facts (times, brands, locations) without inventing new ones.

Title: %s
Description: %s
Raw extraction data:
%s

Respond strictly as compact JSON:
{
  "heading": "optional improved heading, or null",
  "subtitle": "optional improved one-line summary, or null",
  "rich_text": "a single rich, multi-paragraph block of text. Use \n for line breaks; simple Markdown is allowed."
}
Do not add extra keys or any text outside this JSON object.`, category, title, description, rawJSON)
}
