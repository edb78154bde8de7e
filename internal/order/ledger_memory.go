package order

import (
	"context"
	"sync"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

// MemoryLedger is a process-local Ledger for single-instance deployments and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*checkout.Outcome
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]*checkout.Outcome)}
}

func (m *MemoryLedger) Claim(ctx context.Context, key, sessionID string) (*checkout.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out, ok := m.entries[key]
	switch {
	case !ok:
		m.entries[key] = nil
		return nil, nil
	case out == nil:
		return nil, ErrSubmissionInProgress
	default:
		cp := *out
		return &cp, nil
	}
}

func (m *MemoryLedger) Complete(ctx context.Context, key string, out checkout.Outcome) error {
	m.mu.Lock()
	m.entries[key] = &out
	m.mu.Unlock()
	return nil
}

func (m *MemoryLedger) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	if out, ok := m.entries[key]; ok && out == nil {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}
