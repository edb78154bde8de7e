package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

var ErrSubmissionInProgress = errors.New("order submission already in progress")

// Ledger records order submissions by idempotency key so that one checkout
// creates orders at most once, across requests, tabs and service replicas.
type Ledger interface {
	// Claim reserves key for submission. When the key was already submitted
	// successfully it returns that outcome instead. A live claim held by
	// another request yields ErrSubmissionInProgress.
	Claim(ctx context.Context, key, sessionID string) (*checkout.Outcome, error)
	Complete(ctx context.Context, key string, out checkout.Outcome) error
	Release(ctx context.Context, key string) error
}

const (
	submissionProcessing = "processing"
	submissionCompleted  = "completed"
)

type pgLedger struct {
	db         *sql.DB
	staleAfter time.Duration
	now        func() time.Time
}

// NewPostgresLedger returns a Ledger over the order_submissions table. A
// processing claim older than staleAfter is assumed abandoned and may be taken over.
func NewPostgresLedger(db *sql.DB, staleAfter time.Duration) Ledger {
	return &pgLedger{db: db, staleAfter: staleAfter, now: time.Now}
}

func (l *pgLedger) Claim(ctx context.Context, key, sessionID string) (*checkout.Outcome, error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO order_submissions (idempotency_key, session_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
	`, key, sessionID, submissionProcessing)
	if err != nil {
		return nil, fmt.Errorf("claim submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil, nil
	}

	var (
		status  string
		payload []byte
	)
	err = l.db.QueryRowContext(ctx, `
		SELECT status, response
		FROM order_submissions
		WHERE idempotency_key = $1
	`, key).Scan(&status, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// released between insert and select
			return nil, ErrSubmissionInProgress
		}
		return nil, fmt.Errorf("select submission: %w", err)
	}

	if status == submissionCompleted {
		var out checkout.Outcome
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("decode submission outcome: %w", err)
		}
		return &out, nil
	}

	res, err = l.db.ExecContext(ctx, `
		UPDATE order_submissions
		SET updated_at = NOW()
		WHERE idempotency_key = $1 AND status = $2 AND updated_at < $3
	`, key, submissionProcessing, l.now().Add(-l.staleAfter))
	if err != nil {
		return nil, fmt.Errorf("take over submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil, nil
	}
	return nil, ErrSubmissionInProgress
}

func (l *pgLedger) Complete(ctx context.Context, key string, out checkout.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode submission outcome: %w", err)
	}
	_, err = l.db.ExecContext(ctx, `
		UPDATE order_submissions
		SET status = $2, response = $3, updated_at = NOW()
		WHERE idempotency_key = $1
	`, key, submissionCompleted, payload)
	if err != nil {
		return fmt.Errorf("complete submission: %w", err)
	}
	return nil
}

func (l *pgLedger) Release(ctx context.Context, key string) error {
	_, err := l.db.ExecContext(ctx, `
		DELETE FROM order_submissions
		WHERE idempotency_key = $1 AND status = $2
	`, key, submissionProcessing)
	if err != nil {
		return fmt.Errorf("release submission: %w", err)
	}
	return nil
}
