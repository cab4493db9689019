package intelligence

import (
	"context"

	"github.com/jonathan/reel-lens/internal/metrics"
)

// contextBuilder normalizes the stored record into a ReelContext and
// resolves engagement through the tiered metrics resolver. It cannot fail:
// the resolver always returns something, tagged with its source.
func contextBuilder(resolver *metrics.Resolver) Stage {
	return func(ctx context.Context, acc *Accumulator) {
		record := acc.Document.Record

		cached := metrics.Engagement{
			Likes:    rawInt64(record.RawData, "likes"),
			Views:    rawInt64(record.RawData, "views"),
			Comments: rawInt64(record.RawData, "comments_count"),
		}

		acc.Context = ReelContext{
			DocumentID:    acc.Document.ID,
			CorrelationID: acc.Document.CorrelationID,
			Title:         record.Title,
			Category:      string(record.Category),
			Description:   record.Description,
			Transcript:    rawString(record.RawData, "transcript"),
			Hashtags:      rawStrings(record.RawData, "hashtags"),
			SourceURL:     record.SourceURL,
			Confidence:    record.ConfidenceScore,
			ExtractedAt:   record.ExtractedAt,
			Metrics:       resolver.Resolve(ctx, record.SourceURL, cached),
			KeyframeCount: len(acc.Document.Keyframes),
		}
	}
}

func rawString(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func rawInt64(raw map[string]any, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func rawStrings(raw map[string]any, key string) []string {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
