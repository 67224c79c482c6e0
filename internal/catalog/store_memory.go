package catalog

import (
	"context"
	"sync"
)

// MemoryStore mantiene el catálogo en memoria (tests y CATALOG_BACKEND=memory).
type MemoryStore struct {
	mu       sync.Mutex
	products []Product
	saves    int
}

func NewMemoryStore(seed []Product) *MemoryStore {
	return &MemoryStore{products: append([]Product{}, seed...)}
}

func (m *MemoryStore) Load(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Product{}, m.products...), nil
}

func (m *MemoryStore) Save(ctx context.Context, products []Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append([]Product{}, products...)
	m.saves++
	return nil
}

// Saves cuenta cuántas veces se reescribió el catálogo.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
