package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process DocumentStore. It backs single-node
// deployments and tests; production deployments use PostgresStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Write(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) Read(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, &NotFoundError{ID: id}
	}
	return doc, nil
}

func (s *MemoryStore) SearchByCorrelation(_ context.Context, correlationID string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Document
	for _, doc := range s.docs {
		if doc.CorrelationID == correlationID {
			matches = append(matches, doc)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StoredAt.After(matches[j].StoredAt)
	})
	return matches, nil
}

func (s *MemoryStore) Close() {}
