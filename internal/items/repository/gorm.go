package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gotodo/todo-service/internal/models"
	"gorm.io/gorm"
)

type itemRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Text      string    `gorm:"size:4000;not null"`
	Completed bool      `gorm:"not null;default:false"`
	UserID    string    `gorm:"index;size:64;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (itemRecord) TableName() string { return "items" }

func (r itemRecord) toModel() *models.Item {
	return &models.Item{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// GormRepo implements Repository on a relational database through gorm.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo migrates the items table and returns the repository.
func NewGormRepo(db *gorm.DB) (*GormRepo, error) {
	if err := db.AutoMigrate(&itemRecord{}); err != nil {
		return nil, fmt.Errorf("migrate items: %w", err)
	}
	return &GormRepo{db: db}, nil
}

func (g *GormRepo) Create(ctx context.Context, it *models.Item) (*models.Item, error) {
	now := time.Now().UTC()
	rec := itemRecord{
		ID:        uuid.NewString(),
		Text:      it.Text,
		Completed: it.Completed,
		UserID:    it.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (g *GormRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	var recs []itemRecord
	err := g.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*models.Item, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (g *GormRepo) UpdateOwned(ctx context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var out *models.Item
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec itemRecord
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		rec.UpdatedAt = time.Now().UTC()
		updates := map[string]any{"updated_at": rec.UpdatedAt}
		if patch.Text != nil {
			rec.Text = *patch.Text
			updates["text"] = rec.Text
		}
		if patch.Completed != nil {
			rec.Completed = *patch.Completed
			updates["completed"] = rec.Completed
		}
		if err := tx.Model(&itemRecord{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			return err
		}
		out = rec.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GormRepo) DeleteOwned(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res := g.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&itemRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
