package tenantcfg

import (
	"context"
	"sync"
)

// memStore keeps documents in process memory. Dev fallback when neither
// Postgres nor Redis is configured; also the backend unit tests run against.
type memStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

func NewMemoryStore() Store {
	return &memStore{docs: map[string]map[string]any{}}
}

func (m *memStore) Load(ctx context.Context, tenantID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[ConfigURN(tenantID)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *memStore) Save(ctx context.Context, tenantID string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[ConfigURN(tenantID)] = cloneDoc(doc)
	return nil
}
