package category

import (
	"fmt"
	"strings"

	"github.com/jonathan/reel-lens/internal/types"
)

// DetectionPrompt builds the constrained category-detection prompt. The
// model must answer with exactly one recognized tag.
func DetectionPrompt() string {
	names := make([]string, 0, len(types.Categories()))
	for _, c := range types.Categories() {
		names = append(names, string(c))
	}
	return fmt.Sprintf(`Analyze this video content and determine its category.

Categories: %s

Return ONLY the category name (one word) from the list above.`, strings.Join(names, ", "))
}

const promptSuffix = `

Return ONLY valid JSON, no markdown, no explanation. Extract information directly from the video, keyframes and transcript; do not invent details.`

const workoutPrompt = `Analyze this workout video and extract the complete workout routine.

Extract:
- Exercise names
- Sets and reps (if mentioned)
- Duration in seconds (for time-based exercises)
- Rest periods between exercises
- Total rounds/circuits
- Estimated total duration in minutes
- Difficulty level (beginner/intermediate/advanced)
- Music tempo in BPM (if detectable)

Return the data in JSON format matching this structure:
{
  "title": "Workout title",
  "description": "Brief description",
  "exercises": [{"name": "Exercise name", "sets": 3, "reps": 15, "duration_seconds": 30, "rest_seconds": 15}],
  "total_rounds": 3,
  "estimated_duration_minutes": 20.0,
  "difficulty_level": "intermediate",
  "music_tempo_bpm": 140
}` + promptSuffix

const recipePrompt = `Analyze this cooking video and extract the complete recipe.

Extract:
- All ingredients with quantities (e.g. "2 cups flour", "1 tbsp butter")
- Step-by-step cooking instructions
- Duration for each step (if mentioned)
- Utensils/tools needed for each step
- Prep time, cook time, servings
- Cuisine type

Return the data in JSON format with keys: title, description, ingredients (list of {name, quantity, notes}), steps (list of {instruction, duration_minutes, utensils}), prep_time_minutes, cook_time_minutes, servings, cuisine_type.` + promptSuffix

const travelPrompt = `Analyze this travel video and extract the complete itinerary.

Extract:
- Main destination
- All activities and places to visit with locations
- Google Maps or booking links if visible
- Estimated duration for each activity
- Day-by-day breakdown (if applicable)
- Estimated budget

Return the data in JSON format with keys: title, description, destination, activities (list of {name, location, google_maps_link, booking_link, estimated_duration_hours}), day_breakdown, estimated_budget.` + promptSuffix

const productPrompt = `Analyze this product video and extract all products shown.

Extract:
- Product names and brand names
- Prices as displayed, with currency
- Purchase links if visible
- Product categories

Return the data in JSON format with keys: title, description, products (list of {name, brand, price, currency, purchase_links, product_category}).` + promptSuffix

const educationalPrompt = `Analyze this tutorial video and extract the complete tutorial.

Extract:
- Topic/subject
- Step-by-step instructions
- Tools/software required for each step
- Resource links if visible
- Prerequisites
- Estimated time to complete in minutes

Return the data in JSON format with keys: title, description, topic, steps (list of {instruction, tools_required, resource_links}), prerequisites, estimated_time_minutes.` + promptSuffix

const musicPrompt = `Analyze this music video and extract song metadata.

Extract:
- Song title and artist name
- Genre
- Lyrics snippet (if audible)
- Spotify or YouTube links if visible
- Mood/vibe of the song

Return the data in JSON format with keys: title, description, song_title, artist, genre, lyrics_snippet, spotify_link, youtube_link, mood.` + promptSuffix

const genericPrompt = `Analyze this video and summarize its content.

Extract a title, a brief description, the main topics, any people, places or products featured, and anything else notable.

Return the data in JSON format with at least the keys: title, description.` + promptSuffix
