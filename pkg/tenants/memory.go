// pkg/tenants/memory.go
package tenants

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps tenants in process memory. Used when no database is
// configured and in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byClientID map[string]Tenant
}

func NewMemoryStore(seed ...Tenant) *MemoryStore {
	m := &MemoryStore{byClientID: map[string]Tenant{}}
	for _, t := range seed {
		_ = m.Upsert(context.Background(), t)
	}
	return m
}

func (m *MemoryStore) FindByClientID(_ context.Context, clientID string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.byClientID[clientID]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

// Upsert stores t, keeping the existing id when the client id is already known.
func (m *MemoryStore) Upsert(_ context.Context, t Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.byClientID[t.ClientID]; ok {
		t.ID = prev.ID
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.byClientID[t.ClientID] = t
	return nil
}

// SetDisabled flips the disabled gate for clientID. It returns ErrNotFound for
// unknown tenants.
func (m *MemoryStore) SetDisabled(clientID string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byClientID[clientID]
	if !ok {
		return ErrNotFound
	}
	t.IsDisabled = disabled
	m.byClientID[clientID] = t
	return nil
}
