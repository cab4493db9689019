package category

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/reel-lens/internal/types"
)

// ParseTag normalizes a detection response to a member of the closed set.
// The model is asked for exactly one tag, but responses sometimes arrive
// wrapped in prose; a substring match salvages those. Anything else routes
// to generic, so an unrecognized tag never fails the pipeline.
func ParseTag(response string) types.Category {
	tag := strings.ToLower(strings.TrimSpace(response))
	tag = strings.Trim(tag, `"'.`)

	for _, c := range types.Categories() {
		if tag == string(c) {
			return c
		}
	}
	for _, c := range types.Categories() {
		if strings.Contains(tag, string(c)) {
			return c
		}
	}
	return types.CategoryGeneric
}

// Validate checks a raw extraction payload against the schema governing c
// and builds the immutable ExtractionRecord. Unknown/extra keys are
// tolerated; required fields are enforced with field-level detail; declared
// optional fields receive their documented defaults when absent.
func Validate(c types.Category, payload json.RawMessage, sourceURL string) (*types.ExtractionRecord, error) {
	schema := ForCategory(c)

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &ValidationError{
			Category: string(schema.Category),
			Fields:   []FieldError{{Field: "(root)", Message: "payload is not a JSON object"}},
		}
	}

	for field, def := range schema.Defaults {
		if v, ok := raw[field]; !ok || v == nil {
			raw[field] = def
		}
	}

	if schema.Document != nil {
		result, err := gojsonschema.Validate(
			gojsonschema.NewGoLoader(schema.Document),
			gojsonschema.NewGoLoader(raw),
		)
		if err != nil {
			return nil, fmt.Errorf("schema validation failed to run: %w", err)
		}
		if !result.Valid() {
			fields := make([]FieldError, 0, len(result.Errors()))
			for _, re := range result.Errors() {
				fields = append(fields, FieldError{Field: re.Field(), Message: re.Description()})
			}
			return nil, &ValidationError{Category: string(schema.Category), Fields: fields}
		}
	}

	confidence, err := confidenceFrom(raw)
	if err != nil {
		return nil, &ValidationError{
			Category: string(schema.Category),
			Fields:   []FieldError{{Field: "confidence_score", Message: err.Error()}},
		}
	}

	record := &types.ExtractionRecord{
		ID:              uuid.New(),
		Category:        schema.Category,
		Title:           stringField(raw, "title", "Untitled"),
		Description:     stringField(raw, "description", ""),
		ConfidenceScore: confidence,
		SourceURL:       sourceURL,
		ExtractedAt:     time.Now().UTC(),
		RawData:         raw,
	}
	return record, nil
}

func stringField(raw map[string]any, key, fallback string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// confidenceFrom reads the optional confidence_score, defaulting to 0 and
// rejecting values outside [0,1].
func confidenceFrom(raw map[string]any) (float64, error) {
	v, ok := raw["confidence_score"]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("must be a number")
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("must be within [0,1], got %v", f)
	}
	return f, nil
}
