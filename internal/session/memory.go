package session

import (
	"context"
	"sync"
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type memEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Sessions are stored encoded so callers
// never share pointers with the store.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memEntry
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, data: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	m.mu.Lock()
	e, ok := m.data[id]
	if ok && !m.now().Before(e.expiresAt) {
		delete(m.data, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decode(id, e.payload)
}

func (m *MemoryStore) Save(ctx context.Context, s *checkout.Session) error {
	s.UpdatedAt = m.now().UTC()
	b, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[s.ID] = memEntry{payload: b, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}
