package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/reel-lens/internal/types"
)

// PostgresStore persists documents in PostgreSQL. The record payload and
// keyframe manifest are stored as JSONB so category-specific fields need
// no schema migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Write(ctx context.Context, doc Document) error {
	recordJSON, err := json.Marshal(doc.Record)
	if err != nil {
		return &StorageError{Op: "write", Cause: err}
	}
	keyframesJSON, err := json.Marshal(doc.Keyframes)
	if err != nil {
		return &StorageError{Op: "write", Cause: err}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, correlation_id, category, record, keyframes, stored_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   correlation_id = $2, category = $3, record = $4, keyframes = $5, stored_at = $6`,
		doc.ID, doc.CorrelationID, string(doc.Record.Category), recordJSON, keyframesJSON, doc.StoredAt,
	)
	if err != nil {
		return &StorageError{Op: "write", Cause: err, Retryable: isTransientPgErr(err)}
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, id string) (Document, error) {
	var doc Document
	var recordJSON, keyframesJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, correlation_id, record, keyframes, stored_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.CorrelationID, &recordJSON, &keyframesJSON, &doc.StoredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, &NotFoundError{ID: id}
		}
		return Document{}, &StorageError{Op: "read", Cause: err, Retryable: isTransientPgErr(err)}
	}

	if err := json.Unmarshal(recordJSON, &doc.Record); err != nil {
		return Document{}, &StorageError{Op: "read", Cause: err}
	}
	if len(keyframesJSON) > 0 {
		var keyframes []types.Keyframe
		if err := json.Unmarshal(keyframesJSON, &keyframes); err == nil {
			doc.Keyframes = keyframes
		}
	}
	return doc, nil
}

func (s *PostgresStore) SearchByCorrelation(ctx context.Context, correlationID string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, correlation_id, record, keyframes, stored_at
		 FROM documents WHERE correlation_id = $1 ORDER BY stored_at DESC`,
		correlationID,
	)
	if err != nil {
		return nil, &StorageError{Op: "search", Cause: err, Retryable: isTransientPgErr(err)}
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var recordJSON, keyframesJSON []byte
		if err := rows.Scan(&doc.ID, &doc.CorrelationID, &recordJSON, &keyframesJSON, &doc.StoredAt); err != nil {
			return nil, &StorageError{Op: "search", Cause: err}
		}
		if err := json.Unmarshal(recordJSON, &doc.Record); err != nil {
			return nil, &StorageError{Op: "search", Cause: err}
		}
		if len(keyframesJSON) > 0 {
			var keyframes []types.Keyframe
			if err := json.Unmarshal(keyframesJSON, &keyframes); err == nil {
				doc.Keyframes = keyframes
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// isTransientPgErr reports whether a pgx error is worth retrying:
// connection failures and the connection-exception SQLSTATE class (08xxx).
func isTransientPgErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return pgconn.Timeout(err)
}
