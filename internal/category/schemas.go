// Package category maps the closed category set to extraction schemas and
// prompt templates, and validates raw model payloads into typed records.
package category

import (
	"github.com/jonathan/reel-lens/internal/types"
)

// Schema pairs a category with the JSON Schema governing its raw payload,
// the defaults for its optional fields, and its extraction prompt.
type Schema struct {
	Category types.Category
	Prompt   string
	// Document is a JSON Schema (gojsonschema Go-map form). Nil for the
	// generic schema, which accepts free-form raw data.
	Document map[string]any
	// Defaults are applied to declared-optional fields absent from the
	// payload before validation.
	Defaults map[string]any
}

// ForCategory returns the schema governing c. The dispatch is exhaustive
// over the closed set; anything else gets the permissive generic schema.
func ForCategory(c types.Category) Schema {
	switch c {
	case types.CategoryWorkout:
		return workoutSchema()
	case types.CategoryRecipe:
		return recipeSchema()
	case types.CategoryTravel:
		return travelSchema()
	case types.CategoryProduct:
		return productSchema()
	case types.CategoryEducational:
		return educationalSchema()
	case types.CategoryMusic:
		return musicSchema()
	default:
		return genericSchema()
	}
}

func str() map[string]any    { return map[string]any{"type": "string"} }
func num() map[string]any    { return map[string]any{"type": "number"} }
func integer() map[string]any { return map[string]any{"type": "integer"} }
func strList() map[string]any {
	return map[string]any{"type": "array", "items": str()}
}

func obj(required []string, props map[string]any) map[string]any {
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func list(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

func workoutSchema() Schema {
	return Schema{
		Category: types.CategoryWorkout,
		Prompt:   workoutPrompt,
		Document: obj(
			[]string{"title", "description", "exercises"},
			map[string]any{
				"title":       str(),
				"description": str(),
				"exercises": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": obj([]string{"name"}, map[string]any{
						"name":             str(),
						"sets":             integer(),
						"reps":             integer(),
						"duration_seconds": integer(),
						"rest_seconds":     integer(),
					}),
				},
				"total_rounds":               integer(),
				"estimated_duration_minutes": num(),
				"difficulty_level": map[string]any{
					"type": "string",
					"enum": []any{"beginner", "intermediate", "advanced"},
				},
				"music_tempo_bpm": integer(),
			},
		),
		Defaults: map[string]any{
			"estimated_duration_minutes": 20.0,
			"difficulty_level":           "intermediate",
		},
	}
}

func recipeSchema() Schema {
	return Schema{
		Category: types.CategoryRecipe,
		Prompt:   recipePrompt,
		Document: obj(
			[]string{"title", "description", "ingredients", "steps"},
			map[string]any{
				"title":       str(),
				"description": str(),
				"ingredients": list(obj([]string{"name"}, map[string]any{
					"name":     str(),
					"quantity": str(),
					"notes":    str(),
				})),
				"steps": list(obj([]string{"instruction"}, map[string]any{
					"instruction":      str(),
					"duration_minutes": num(),
					"utensils":         strList(),
				})),
				"prep_time_minutes": integer(),
				"cook_time_minutes": integer(),
				"servings":          integer(),
				"cuisine_type":      str(),
			},
		),
		Defaults: map[string]any{
			"servings": 1,
		},
	}
}

func travelSchema() Schema {
	return Schema{
		Category: types.CategoryTravel,
		Prompt:   travelPrompt,
		Document: obj(
			[]string{"title", "description", "destination", "activities"},
			map[string]any{
				"title":       str(),
				"description": str(),
				"destination": str(),
				"activities": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": obj([]string{"name"}, map[string]any{
						"name":                     str(),
						"location":                 str(),
						"google_maps_link":         str(),
						"booking_link":             str(),
						"estimated_duration_hours": num(),
					}),
				},
				"day_breakdown":    list(map[string]any{"type": "object"}),
				"estimated_budget": str(),
			},
		),
	}
}

func productSchema() Schema {
	return Schema{
		Category: types.CategoryProduct,
		Prompt:   productPrompt,
		Document: obj(
			[]string{"title", "description", "products"},
			map[string]any{
				"title":       str(),
				"description": str(),
				"products": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": obj([]string{"name"}, map[string]any{
						"name":             str(),
						"brand":            str(),
						"price":            str(),
						"currency":         str(),
						"purchase_links":   strList(),
						"product_category": str(),
					}),
				},
			},
		),
	}
}

func educationalSchema() Schema {
	return Schema{
		Category: types.CategoryEducational,
		Prompt:   educationalPrompt,
		Document: obj(
			[]string{"title", "description", "topic"},
			map[string]any{
				"title":       str(),
				"description": str(),
				"topic":       str(),
				"steps": list(obj([]string{"instruction"}, map[string]any{
					"instruction":    str(),
					"tools_required": strList(),
					"resource_links": strList(),
				})),
				"prerequisites":          strList(),
				"estimated_time_minutes": integer(),
			},
		),
		Defaults: map[string]any{
			"estimated_time_minutes": 15,
		},
	}
}

func musicSchema() Schema {
	return Schema{
		Category: types.CategoryMusic,
		Prompt:   musicPrompt,
		Document: obj(
			[]string{"title", "description"},
			map[string]any{
				"title":          str(),
				"description":    str(),
				"song_title":     str(),
				"artist":         str(),
				"genre":          str(),
				"lyrics_snippet": str(),
				"spotify_link":   str(),
				"youtube_link":   str(),
				"mood":           str(),
			},
		),
	}
}

// genericSchema is the fallback arm: free-form raw data, no strict
// required fields, so an unrecognized category never fails the pipeline.
func genericSchema() Schema {
	return Schema{
		Category: types.CategoryGeneric,
		Prompt:   genericPrompt,
	}
}
