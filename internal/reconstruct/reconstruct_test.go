package reconstruct

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/types"
)

type stubModel struct {
	response string
}

func (m *stubModel) Generate(_ context.Context, _ llm.Variant, _ llm.Request) (string, error) {
	return m.response, nil
}

func (m *stubModel) Close() error { return nil }

func seededCache(t *testing.T) *docs.Cache {
	t.Helper()
	backing := store.NewMemoryStore()
	err := backing.Write(context.Background(), store.Document{
		ID: "doc-1",
		Record: types.ExtractionRecord{
			Category:    types.CategoryGeneric,
			Title:       "Tokyo on a budget",
			Description: "Cheap eats and free views",
			RawData: map[string]any{
				"additional_context": "Visit the metropolitan building at sunset for free views",
			},
		},
	})
	require.NoError(t, err)
	return docs.NewCache(backing)
}

func TestReconstructProducesOverlay(t *testing.T) {
	model := &stubModel{response: `{
		"heading": "Tokyo for Less",
		"subtitle": "Free views and cheap eats",
		"rich_text": "Start at the metropolitan building at sunset.\n\n- Free observation deck\n- Best light for photos"
	}`}
	r := New(seededCache(t), llm.NewInvoker(model, llm.WithBackoff(0)), nil)

	overlay, err := r.Reconstruct(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo for Less", overlay.Heading)
	assert.NotEmpty(t, overlay.RichText)
}

func TestReconstructRejectsEmptyRichText(t *testing.T) {
	model := &stubModel{response: `{"heading": "x", "rich_text": "  "}`}
	r := New(seededCache(t), llm.NewInvoker(model, llm.WithBackoff(0)), nil)

	_, err := r.Reconstruct(context.Background(), "doc-1")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestReconstructUnknownDocument(t *testing.T) {
	r := New(docs.NewCache(store.NewMemoryStore()), llm.NewInvoker(&stubModel{}, llm.WithBackoff(0)), nil)

	_, err := r.Reconstruct(context.Background(), "ghost")
	var nf *store.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestReconstructSalvagesFencedResponse(t *testing.T) {
	model := &stubModel{response: "Here is the overlay:\n```json\n{\"rich_text\": \"A compact guide.\"}\n```"}
	r := New(seededCache(t), llm.NewInvoker(model, llm.WithBackoff(0)), nil)

	overlay, err := r.Reconstruct(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "A compact guide.", overlay.RichText)
}
