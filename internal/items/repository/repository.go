// Package repository persists to-do items. Every read and write is scoped to an owner id.
package repository

import (
	"context"
	"errors"

	"github.com/gotodo/todo-service/internal/models"
)

// ErrNotFound is returned when no item matches both the id and the owner.
var ErrNotFound = errors.New("item not found")

// Repository is the owner-scoped item store.
type Repository interface {
	Create(ctx context.Context, it *models.Item) (*models.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error)
	UpdateOwned(ctx context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error)
	DeleteOwned(ctx context.Context, ownerID, id string) error
}
