package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gotodo/todo-service/internal/models"
)

// MemoryRepo keeps items in insertion order. Used by tests and STORE_DRIVER=memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	store map[string]*models.Item
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*models.Item), now: time.Now}
}

func (m *MemoryRepo) Create(_ context.Context, it *models.Item) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *it
	stored.ID = uuid.NewString()
	stored.CreatedAt = m.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.store[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	out := stored
	return &out, nil
}

func (m *MemoryRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Item{}
	for _, id := range m.order {
		it := m.store[id]
		if it.UserID != ownerID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepo) UpdateOwned(_ context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.store[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Text != nil {
		it.Text = *patch.Text
	}
	if patch.Completed != nil {
		it.Completed = *patch.Completed
	}
	it.UpdatedAt = m.now().UTC()
	out := *it
	return &out, nil
}

func (m *MemoryRepo) DeleteOwned(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.store[id]
	if !ok || it.UserID != ownerID {
		return ErrNotFound
	}
	delete(m.store, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
