// Package docs provides a read-through cache over the document store.
package docs

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/reel-lens/internal/store"
)

// Cache serves document reads from memory, collapsing concurrent misses
// for the same ID into a single store fetch.
type Cache struct {
	store store.DocumentStore

	mu   sync.RWMutex
	docs map[string]store.Document

	group singleflight.Group
}

// NewCache wraps a document store with an in-process cache.
func NewCache(s store.DocumentStore) *Cache {
	return &Cache{
		store: s,
		docs:  make(map[string]store.Document),
	}
}

// Get returns the cached document or fetches it from the store. Concurrent
// misses for the same ID share one fetch; a failed fetch caches nothing.
func (c *Cache) Get(ctx context.Context, id string) (store.Document, error) {
	c.mu.RLock()
	doc, ok := c.docs[id]
	c.mu.RUnlock()
	if ok {
		return doc, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		fetched, err := c.store.Read(ctx, id)
		if err != nil {
			return store.Document{}, err
		}
		c.mu.Lock()
		c.docs[id] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return store.Document{}, err
	}
	return v.(store.Document), nil
}

// Put inserts a document directly, as the pipeline does after a successful
// write so the follow-up status fetch never misses.
func (c *Cache) Put(doc store.Document) {
	c.mu.Lock()
	c.docs[doc.ID] = doc
	c.mu.Unlock()
}

// Invalidate drops a cached entry.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.docs, id)
	c.mu.Unlock()
}
