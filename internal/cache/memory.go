package cache

import (
	"context"
	"sync"

	"github.com/dukerupert/tawseel/internal/domain"
)

// Memory is an in-process PickupCache for single-instance deployments
// and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]domain.PickupLocation
}

var _ PickupCache = (*Memory)(nil)

// NewMemory creates an empty in-memory pickup cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]domain.PickupLocation)}
}

func (m *Memory) Get(ctx context.Context, shopKey string) (*domain.PickupLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loc, ok := m.entries[shopKey]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate the cached entry.
	out := loc
	return &out, nil
}

func (m *Memory) Set(ctx context.Context, shopKey string, loc *domain.PickupLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[shopKey] = *loc
	return nil
}

func (m *Memory) Delete(ctx context.Context, shopKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, shopKey)
	return nil
}

func (m *Memory) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]domain.PickupLocation)
	return nil
}
