// Package service implements the owner-scoped item operations used by the handler layer.
package service

import (
	"context"
	"errors"

	"github.com/gotodo/todo-service/internal/items/repository"
	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/internal/validation"
	"github.com/gotodo/todo-service/pkg/apperrors"
)

// Service is the item store seen by handlers. ownerID always comes from the verified principal.
type Service interface {
	Create(ctx context.Context, ownerID, text string) (*models.Item, error)
	ListOwned(ctx context.Context, ownerID string) ([]*models.Item, error)
	Update(ctx context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type itemService struct {
	repo repository.Repository
}

// New returns a Service over any repository backend.
func New(repo repository.Repository) Service {
	return &itemService{repo: repo}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

func (s *itemService) Create(ctx context.Context, ownerID, text string) (*models.Item, error) {
	clean, violations := validation.ItemText(text)
	if len(violations) > 0 {
		return nil, apperrors.Validation(violations)
	}
	it, err := s.repo.Create(ctx, &models.Item{Text: clean, UserID: ownerID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return it, nil
}

func (s *itemService) ListOwned(ctx context.Context, ownerID string) ([]*models.Item, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

func (s *itemService) Update(ctx context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error) {
	if patch.Empty() {
		return nil, apperrors.Validation([]string{validation.MsgEmptyPatch})
	}
	if patch.Text != nil {
		clean, violations := validation.ItemText(*patch.Text)
		if len(violations) > 0 {
			return nil, apperrors.Validation(violations)
		}
		patch.Text = &clean
	}
	it, err := s.repo.UpdateOwned(ctx, ownerID, id, patch)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return it, nil
}

func (s *itemService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteOwned(ctx, ownerID, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFoundOrForbidden
	}
	return apperrors.Internal(err)
}
