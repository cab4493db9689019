package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/reel-lens/internal/llm"
)

const understandingPromptTemplate = `Analyze this short-form video content and provide structured insights.

Title: %s
Category: %s
Description: %s
Transcript: %s
Hashtags: %s

Respond with a JSON object with exactly these keys:
- "content_type": a short classification (workout, recipe, travel, product_review, educational, entertainment, ...)
- "entities": array of named entities (places, products, people, brands)
- "topics": array of topic strings
- "summary": 2-3 sentence summary
- "sentiment": one of "positive", "neutral", "negative"

Respond with JSON only, no prose.`

// understandContent runs the single model call that classifies and
// summarizes the reel. On any failure the accumulator keeps a defaulted
// Understanding seeded with the extraction category so downstream stages
// still have something to dispatch on.
func understandContent(invoker *llm.Invoker) Stage {
	return func(ctx context.Context, acc *Accumulator) {
		acc.Understanding = Understanding{
			ContentType: acc.Context.Category,
			Sentiment:   "neutral",
		}

		transcript := acc.Context.Transcript
		if len(transcript) > 500 {
			transcript = transcript[:500]
		}
		prompt := fmt.Sprintf(understandingPromptTemplate,
			acc.Context.Title,
			acc.Context.Category,
			acc.Context.Description,
			transcript,
			strings.Join(acc.Context.Hashtags, ", "),
		)

		payload, _, err := invoker.GenerateJSON(ctx, llm.Request{Prompt: prompt, JSONOutput: true})
		if err != nil {
			acc.recordError(fmt.Errorf("content understanding failed: %w", err))
			return
		}

		var u Understanding
		if err := json.Unmarshal(payload, &u); err != nil {
			acc.recordError(fmt.Errorf("content understanding returned unexpected shape: %w", err))
			return
		}
		if u.ContentType == "" {
			u.ContentType = acc.Context.Category
		}
		u.Sentiment = normalizeSentiment(u.Sentiment)
		acc.Understanding = u
	}
}

// normalizeSentiment collapses model output into the closed sentiment set,
// defaulting to neutral.
func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return "positive"
	case "negative":
		return "negative"
	default:
		return "neutral"
	}
}
