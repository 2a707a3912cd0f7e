package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotodo/todo-service/internal/database"
	"github.com/gotodo/todo-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned by Create when the username is already taken.
var ErrDuplicate = errors.New("username already exists")

// AccountRepository defines persistence operations for accounts.
// GetByUsername returns (nil, nil) when no account matches.
type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

// MongoAccountRepository implements AccountRepository using MongoDB
type MongoAccountRepository struct {
	col *mongo.Collection
}

// NewMongoAccountRepository creates a repository for col and ensures the unique username index.
func NewMongoAccountRepository(ctx context.Context, col *mongo.Collection) (*MongoAccountRepository, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("ensure accounts index: %w", err)
	}
	return &MongoAccountRepository{col: col}, nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.ID = ""
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return a, nil
}

func (r *MongoAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
