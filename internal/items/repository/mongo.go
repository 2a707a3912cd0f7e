package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotodo/todo-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type itemDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	UserID    string             `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d itemDoc) toModel() *models.Item {
	return &models.Item{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepo implements Repository on a MongoDB collection. Item ids are ObjectIDs;
// an id that is not valid hex never matches anything.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo ensures the owner index used by every query.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("ensure items index: %w", err)
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Create(ctx context.Context, it *models.Item) (*models.Item, error) {
	now := time.Now().UTC()
	doc := itemDoc{
		ID:        primitive.NewObjectID(),
		Text:      it.Text,
		Completed: it.Completed,
		UserID:    it.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Item{}
	for cur.Next(ctx) {
		var d itemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toModel())
	}
	return out, cur.Err()
}

func (m *MongoRepo) UpdateOwned(ctx context.Context, ownerID, id string, patch models.ItemPatch) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d itemDoc
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "user": ownerID}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d.toModel(), nil
}

func (m *MongoRepo) DeleteOwned(ctx context.Context, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid, "user": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
