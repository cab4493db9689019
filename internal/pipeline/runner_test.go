package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/llm"
	"github.com/jonathan/reel-lens/internal/store"
	"github.com/jonathan/reel-lens/internal/tasks"
	"github.com/jonathan/reel-lens/internal/types"
)

// blockingDownloader parks every download until released, pinning a worker.
type blockingDownloader struct {
	started chan struct{}
	release chan struct{}
}

func (d *blockingDownloader) Download(_ context.Context, _ string) (types.MediaFile, error) {
	d.started <- struct{}{}
	<-d.release
	return types.MediaFile{}, errors.New("released")
}

func TestRunnerQueueFull(t *testing.T) {
	dl := &blockingDownloader{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	defer close(dl.release)

	registry := tasks.NewRegistry()
	backing := store.NewMemoryStore()
	p := New(
		dl,
		&fakeSegmenter{duration: 10},
		llm.NewInvoker(&scriptedModel{}, llm.WithBackoff(0)),
		backing,
		docs.NewCache(backing),
		registry,
		nil,
	)
	runner, err := NewRunner(context.Background(), p, 1, nil)
	require.NoError(t, err)
	defer runner.Close()

	first, err := runner.Submit("https://example.com/reel/1")
	require.NoError(t, err)

	// Wait until the single worker is parked in the download stage.
	select {
	case <-dl.started:
	case <-time.After(time.Second):
		t.Fatal("worker never started")
	}

	_, err = runner.Submit("https://example.com/reel/2")
	assert.ErrorIs(t, err, ErrQueueFull)

	// The rejected submission left no job behind.
	jobs := registry.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, first, jobs[0].TaskID)
}

func TestRunnerRejectsInvalidSource(t *testing.T) {
	registry := tasks.NewRegistry()
	backing := store.NewMemoryStore()
	p := New(
		&fakeDownloader{},
		&fakeSegmenter{duration: 10},
		llm.NewInvoker(&scriptedModel{}, llm.WithBackoff(0)),
		backing,
		docs.NewCache(backing),
		registry,
		nil,
	)
	runner, err := NewRunner(context.Background(), p, 1, nil)
	require.NoError(t, err)
	defer runner.Close()

	_, err = runner.Submit("ftp://example.com/video")
	var invalid *tasks.ErrInvalidSource
	assert.ErrorAs(t, err, &invalid)
	assert.Empty(t, registry.List())
}
