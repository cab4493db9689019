package intelligence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/metrics"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/types"
)

type stubModel struct {
	response string
	err      error
}

func (m *stubModel) Generate(_ context.Context, _ llm.Variant, _ llm.Request) (string, error) {
	return m.response, m.err
}

func (m *stubModel) Close() error { return nil }

func seedDocument(t *testing.T) (*docs.Cache, store.Document) {
	t.Helper()
	backing := store.NewMemoryStore()
	doc := store.Document{
		ID:            "doc-1",
		CorrelationID: "reel_abc123def456",
		Record: types.ExtractionRecord{
			Category:        types.CategoryTravel,
			Title:           "Hidden beaches of Menorca",
			Description:     "Three coves you can only reach on foot",
			ConfidenceScore: 0.85,
			SourceURL:       "https://example.com/reel/7",
			RawData: map[string]any{
				"transcript": "today we hike to cala pilar",
				"hashtags":   []any{"#menorca", "#travel"},
				"likes":      float64(1200),
				"views":      float64(40000),
			},
		},
		Keyframes: []types.Keyframe{{Index: 0, URI: "kf0.jpg"}, {Index: 1, URI: "kf1.jpg"}},
	}
	require.NoError(t, backing.Write(context.Background(), doc))
	return docs.NewCache(backing), doc
}

func TestChainGenerateFullRun(t *testing.T) {
	cache, _ := seedDocument(t)
	model := &stubModel{response: `{
		"content_type": "travel",
		"entities": ["Cala Pilar", "Menorca"],
		"topics": ["hiking", "beaches"],
		"summary": "A hiking guide to remote Menorca beaches.",
		"sentiment": "positive"
	}`}
	chain := NewChain(cache, llm.NewInvoker(model, llm.WithBackoff(0)), metrics.NewResolver(nil, nil, nil), nil)

	obj, err := chain.Generate(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", obj.Metadata.DocumentID)
	assert.Equal(t, AgentVersion, obj.Metadata.AgentVersion)
	assert.False(t, obj.Metadata.GeneratedAt.IsZero())

	assert.Equal(t, "travel", obj.Understanding.ContentType)
	assert.Equal(t, "positive", obj.Understanding.Sentiment)

	// Metrics came from the extraction since no live tiers are wired.
	assert.Equal(t, metrics.SourceExtractionCache, obj.ReelContext.Metrics.Source)
	assert.Equal(t, int64(1200), obj.ReelContext.Metrics.Likes)

	assert.Equal(t, "place_to_visit", obj.Enrichment.Type)
	assert.Contains(t, obj.Enrichment.ActionItems, "Get directions")

	assert.Equal(t, 2, obj.Keyframes.Count)
	assert.Empty(t, obj.Errors)
	assert.Greater(t, obj.Trust.Score, 0.0)
	assert.NotEmpty(t, obj.Trust.Badge)
}

func TestChainDegradesWhenModelFails(t *testing.T) {
	cache, doc := seedDocument(t)
	model := &stubModel{err: errors.New("invalid argument: bad request")}
	chain := NewChain(cache, llm.NewInvoker(model, llm.WithBackoff(0)), metrics.NewResolver(nil, nil, nil), nil)

	obj, err := chain.Generate(context.Background(), "doc-1")
	require.NoError(t, err)

	// Understanding falls back to the extraction category.
	assert.Equal(t, string(doc.Record.Category), obj.Understanding.ContentType)
	assert.Equal(t, "neutral", obj.Understanding.Sentiment)
	assert.NotEmpty(t, obj.Errors)

	// Downstream stages still produced output from the defaults.
	assert.NotEmpty(t, obj.Trust.Badge)
	assert.Equal(t, "place_to_visit", obj.Enrichment.Type)
}

func TestChainUnknownDocument(t *testing.T) {
	cache := docs.NewCache(store.NewMemoryStore())
	chain := NewChain(cache, llm.NewInvoker(&stubModel{}, llm.WithBackoff(0)), metrics.NewResolver(nil, nil, nil), nil)

	_, err := chain.Generate(context.Background(), "ghost")
	var nf *store.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestEnrichmentDispatch(t *testing.T) {
	tests := []struct {
		contentType string
		wantType    string
	}{
		{"travel vlog", "place_to_visit"},
		{"place tour", "place_to_visit"},
		{"product_review", "product_review"},
		{"recipe", "recipe"},
		{"street food", "recipe"},
		{"workout", "workout"},
		{"fitness challenge", "workout"},
		{"daily vlog", "general"},
		{"", "general"},
	}
	for _, tt := range tests {
		acc := &Accumulator{Understanding: Understanding{ContentType: tt.contentType}}
		acc.Document.Record.RawData = map[string]any{}
		enrichByType()(context.Background(), acc)
		assert.Equal(t, tt.wantType, acc.Enrichment.Type, "content type %q", tt.contentType)
	}
}
