package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/intelligence"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/metrics"
	"github.com/jonathan/reel-lens/internal/pipeline"
	"github.com/jonathan/reel-lens/internal/reconstruct"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/tasks"
	"github.com/jonathan/reel-lens/internal/types"
)

type fakeDownloader struct{}

func (fakeDownloader) Download(_ context.Context, _ string) (types.MediaFile, error) {
	return types.MediaFile{Path: "video.mp4", SizeBytes: 1024}, nil
}

type fakeSegmenter struct{}

func (fakeSegmenter) Duration(_ context.Context, _ types.MediaFile) (float64, error) {
	return 30, nil
}

func (fakeSegmenter) Segment(_ context.Context, _ types.MediaFile, intervalSec int) (types.SegmentResult, error) {
	return types.SegmentResult{
		DurationSec: 30,
		Keyframes:   []types.Keyframe{{Index: 0, URI: "kf0.jpg"}},
	}, nil
}

type scriptedModel struct {
	tag     string
	payload string
}

func (m *scriptedModel) Generate(_ context.Context, _ llm.Variant, req llm.Request) (string, error) {
	if req.JSONOutput {
		return m.payload, nil
	}
	return m.tag, nil
}

func (m *scriptedModel) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	registry := tasks.NewRegistry()
	backing := store.NewMemoryStore()
	cache := docs.NewCache(backing)
	model := &scriptedModel{
		tag:     "generic",
		payload: `{"title": "A reel", "description": "about things", "rich_text": "Narrative overlay text."}`,
	}
	invoker := llm.NewInvoker(model, llm.WithBackoff(0))

	p := pipeline.New(fakeDownloader{}, fakeSegmenter{}, invoker, backing, cache, registry, nil)
	p.KeepMedia = true
	runner, err := pipeline.NewRunner(context.Background(), p, 2, nil)
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	chain := intelligence.NewChain(cache, invoker, metrics.NewResolver(nil, nil, nil), nil)
	reconstructor := reconstruct.New(cache, invoker, nil)

	return New(Config{Port: 0}, runner, registry, cache, chain, reconstructor, nil), backing
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitAccepted(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/reels/submit", `{"source": "https://example.com/reel/1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TaskID)
	assert.Equal(t, "queued", resp.Status)
}

func TestSubmitInvalidSource(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/reels/submit", `{"source": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_source")

	rec = doRequest(t, s, http.MethodPost, "/api/reels/submit", `{"source": "ftp://example.com/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/reels/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusUnknownTask(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reels/status/7f4cadbc-0b45-4b85-b1b0-6ac3aa9e4d4f", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestSubmitThenPollUntilCompleted(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/reels/submit", `{"source": "https://example.com/reel/e2e"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitted SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	var status StatusResponse
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec = doRequest(t, s, http.MethodGet, "/api/reels/status/"+submitted.TaskID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		if status.Status == "completed" || status.Status == "failed" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, "completed", status.Status, "job error: %s", status.Error)
	assert.Equal(t, 100, status.Progress)
	require.NotEmpty(t, status.ReelID)

	// The stored record is resolvable through the reel endpoint.
	rec = doRequest(t, s, http.MethodGet, "/api/reels/"+status.ReelID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reel struct {
		Record types.ExtractionRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reel))
	assert.True(t, reel.Record.Category.Valid())
	assert.Equal(t, "A reel", reel.Record.Title)
}

func TestGetReelNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reels/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntelligenceEndpoint(t *testing.T) {
	s, backing := newTestServer(t)
	require.NoError(t, backing.Write(context.Background(), store.Document{
		ID: "doc-1",
		Record: types.ExtractionRecord{
			Category: types.CategoryGeneric,
			Title:    "A reel",
			RawData:  map[string]any{},
		},
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/reels/doc-1/intelligence", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var obj intelligence.IntelligenceObject
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
	assert.Equal(t, "doc-1", obj.Metadata.DocumentID)
	assert.NotEmpty(t, obj.Trust.Badge)
}

func TestReconstructEndpoint(t *testing.T) {
	s, backing := newTestServer(t)
	require.NoError(t, backing.Write(context.Background(), store.Document{
		ID: "doc-2",
		Record: types.ExtractionRecord{
			Category: types.CategoryGeneric,
			RawData:  map[string]any{"additional_context": "bonus detail"},
		},
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/reels/doc-2/reconstruct", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rich_text")
}
