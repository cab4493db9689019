// Package store persists extraction documents and their keyframe manifests.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/reel-lens/internal/types"
)

// Document is the durable unit of storage: one validated extraction record
// plus its keyframe manifest, addressable by ID and by correlation ID.
type Document struct {
	ID            string                 `json:"id"`
	CorrelationID string                 `json:"correlation_id"`
	Record        types.ExtractionRecord `json:"record"`
	Keyframes     []types.Keyframe       `json:"keyframes,omitempty"`
	StoredAt      time.Time              `json:"stored_at"`
}

// DocumentStore is the persistence boundary for extraction documents.
type DocumentStore interface {
	// Write persists a document. Writing the same ID twice replaces the
	// previous document.
	Write(ctx context.Context, doc Document) error

	// Read returns the document with the given ID, or a *NotFoundError.
	Read(ctx context.Context, id string) (Document, error)

	// SearchByCorrelation returns documents sharing a correlation ID,
	// most recent first. An empty result is not an error.
	SearchByCorrelation(ctx context.Context, correlationID string) ([]Document, error)

	// Close releases underlying resources.
	Close()
}

// StorageError wraps a backend failure. Retryable failures (connection
// drops, timeouts) are worth a bounded retry; others are not.
type StorageError struct {
	Op        string
	Cause     error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates no document exists for the requested ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

// IsRetryable reports whether err is a retryable storage failure.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable
}
