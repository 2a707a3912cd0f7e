package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gotodo/todo-service/internal/database"
	"github.com/gotodo/todo-service/internal/models"
	"gorm.io/gorm"
)

type accountRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (accountRecord) TableName() string { return "accounts" }

func (r accountRecord) toModel() *models.Account {
	return &models.Account{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

// GormAccountRepository implements AccountRepository on a relational database through gorm.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository migrates the accounts table and returns the repository.
func NewGormAccountRepository(db *gorm.DB) (*GormAccountRepository, error) {
	if err := db.AutoMigrate(&accountRecord{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}
	return &GormAccountRepository{db: db}, nil
}

func (r *GormAccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	rec := accountRecord{
		ID:           uuid.NewString(),
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *GormAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var rec accountRecord
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}
