package docs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jonathan/reel-lens/internal/store"
)

// countingStore wraps a MemoryStore and counts Read calls.
type countingStore struct {
	*store.MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Read(ctx context.Context, id string) (store.Document, error) {
	s.reads.Add(1)
	return s.MemoryStore.Read(ctx, id)
}

func TestCacheConcurrentMissesSingleFetch(t *testing.T) {
	backing := &countingStore{MemoryStore: store.NewMemoryStore()}
	if err := backing.Write(context.Background(), store.Document{ID: "doc-1"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cache := NewCache(backing)

	const goroutines = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := cache.Get(context.Background(), "doc-1"); err != nil {
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Get() error = %v", err)
	}
	if got := backing.reads.Load(); got != 1 {
		t.Errorf("store reads = %d, want 1", got)
	}
}

func TestCacheHitAfterPut(t *testing.T) {
	backing := &countingStore{MemoryStore: store.NewMemoryStore()}
	cache := NewCache(backing)

	cache.Put(store.Document{ID: "doc-2", CorrelationID: "reel_ff00"})

	doc, err := cache.Get(context.Background(), "doc-2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.CorrelationID != "reel_ff00" {
		t.Errorf("Get() correlation = %q, want %q", doc.CorrelationID, "reel_ff00")
	}
	if got := backing.reads.Load(); got != 0 {
		t.Errorf("store reads = %d, want 0 after Put", got)
	}
}

func TestCacheMissPropagatesNotFound(t *testing.T) {
	backing := &countingStore{MemoryStore: store.NewMemoryStore()}
	cache := NewCache(backing)

	_, err := cache.Get(context.Background(), "ghost")
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get() error = %v, want *store.NotFoundError", err)
	}

	// A failed fetch caches nothing: the next Get hits the store again.
	_, _ = cache.Get(context.Background(), "ghost")
	if got := backing.reads.Load(); got != 2 {
		t.Errorf("store reads = %d, want 2", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	backing := &countingStore{MemoryStore: store.NewMemoryStore()}
	if err := backing.Write(context.Background(), store.Document{ID: "doc-3"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cache := NewCache(backing)

	if _, err := cache.Get(context.Background(), "doc-3"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	cache.Invalidate("doc-3")
	if _, err := cache.Get(context.Background(), "doc-3"); err != nil {
		t.Fatalf("Get() after Invalidate error = %v", err)
	}
	if got := backing.reads.Load(); got != 2 {
		t.Errorf("store reads = %d, want 2", got)
	}
}
