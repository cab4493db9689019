package intelligence

import (
	"context"
	"fmt"
	"strings"
)

// enrichByType dispatches on the understood content type and attaches
// actionable suggestions. Substring matching tolerates compound labels like
// "travel vlog" or "product_review".
func enrichByType() Stage {
	return func(_ context.Context, acc *Accumulator) {
		contentType := strings.ToLower(acc.Understanding.ContentType)
		raw := acc.Document.Record.RawData

		switch {
		case strings.Contains(contentType, "travel"), strings.Contains(contentType, "place"):
			places := acc.Understanding.Entities
			acc.Enrichment = Enrichment{
				Type: "place_to_visit",
				Fields: map[string]any{
					"places":      places,
					"suggestions": mapLinks(places),
				},
				ActionItems: []string{"Get directions", "Check reviews", "Save to travel list"},
			}

		case strings.Contains(contentType, "product"), strings.Contains(contentType, "review"):
			products := acc.Understanding.Entities
			acc.Enrichment = Enrichment{
				Type: "product_review",
				Fields: map[string]any{
					"products":       products,
					"shopping_links": shoppingLinks(products),
				},
				ActionItems: []string{"Compare prices", "Read more reviews", "Add to wishlist"},
			}

		case strings.Contains(contentType, "recipe"), strings.Contains(contentType, "food"):
			acc.Enrichment = Enrichment{
				Type: "recipe",
				Fields: map[string]any{
					"ingredients": raw["ingredients"],
					"steps":       raw["steps"],
				},
				ActionItems: []string{"Save recipe", "Create shopping list", "Set cooking reminder"},
			}

		case strings.Contains(contentType, "workout"), strings.Contains(contentType, "fitness"):
			acc.Enrichment = Enrichment{
				Type: "workout",
				Fields: map[string]any{
					"exercises":  raw["exercises"],
					"duration":   raw["estimated_duration_minutes"],
					"difficulty": raw["difficulty_level"],
				},
				ActionItems: []string{"Add to workout plan", "Track progress", "Set reminder"},
			}

		default:
			acc.Enrichment = Enrichment{
				Type: "general",
				Fields: map[string]any{
					"topics": acc.Understanding.Topics,
				},
				ActionItems: []string{"Save for later", "Share with friends"},
			}
		}
	}
}

func mapLinks(places []string) []string {
	links := make([]string, 0, 3)
	for _, place := range firstN(places, 3) {
		links = append(links, fmt.Sprintf("Search Google Maps for: %s", place))
	}
	return links
}

func shoppingLinks(products []string) []string {
	links := make([]string, 0, 3)
	for _, product := range firstN(products, 3) {
		links = append(links, fmt.Sprintf("Search Amazon for: %s", product))
	}
	return links
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
