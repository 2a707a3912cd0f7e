package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gotodo/todo-service/internal/models"
)

// MemoryAccountRepository keeps accounts in process memory. Used by tests and STORE_DRIVER=memory.
type MemoryAccountRepository struct {
	mu         sync.RWMutex
	byUsername map[string]models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{byUsername: make(map[string]models.Account)}
}

func (m *MemoryAccountRepository) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[a.Username]; ok {
		return nil, ErrDuplicate
	}
	stored := *a
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.byUsername[stored.Username] = stored
	out := stored
	return &out, nil
}

func (m *MemoryAccountRepository) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byUsername[username]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
