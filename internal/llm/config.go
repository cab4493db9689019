// Package llm provides the quota-aware model invocation layer: a client
// abstraction over Gemini, an ordered variant fallback strategy, and
// defensive parsing of model output.
package llm

// Variant names a concrete model variant. Variants are ordered
// strongest-first; the invoker falls back down the list on quota exhaustion.
type Variant string

// Known Gemini variants, strongest first.
const (
	VariantPro        Variant = "gemini-2.5-pro"
	VariantFlash      Variant = "gemini-2.5-flash"
	VariantFlash2_001 Variant = "gemini-2.0-flash-001"
	VariantFlash2     Variant = "gemini-2.0-flash"
)

// DefaultVariants returns the full fallback chain, quality-first.
func DefaultVariants() []Variant {
	return []Variant{VariantPro, VariantFlash, VariantFlash2_001, VariantFlash2}
}

// FlashVariants skips the pro model, whose free-tier quota is much tighter.
func FlashVariants() []Variant {
	return []Variant{VariantFlash, VariantFlash2_001, VariantFlash2}
}

// MediaPart references a local media file to include in the model context.
type MediaPart struct {
	Path     string
	MIMEType string
}

// Request is one model call: a prompt plus optional mixed media context.
type Request struct {
	Prompt     string
	Media      []MediaPart
	JSONOutput bool
}

// maxMediaParts caps how many media files are attached per call.
const maxMediaParts = 10
