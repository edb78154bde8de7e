// Package sequence hands out per-partition event sequence numbers so that
// consumers can order events published for the same checkout session.
package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

var ErrEmptyPartition = errors.New("partition key is required")

type Repository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, ErrEmptyPartition
	}
	var seq int64
	if err := r.db.QueryRowContext(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", partitionKey, err)
	}
	return seq, nil
}

// Counter is an in-process Repository used when no database is configured.
type Counter struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewCounter() *Counter {
	return &Counter{last: make(map[string]int64)}
}

func (c *Counter) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, ErrEmptyPartition
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[partitionKey]++
	return c.last[partitionKey], nil
}
