package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HKazz/project-3-back-end/models"
)

type MongoUserRepository struct {
	collection *mongo.Collection
	guard      *storeGuard
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return r.guard.write(func() error {
		_, err := r.collection.InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("username %q already taken: %w", user.Username, models.ErrConflict)
		}
		return err
	})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "user "+id.Hex())
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, "user "+username)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	err := r.guard.read(func() error {
		err := r.collection.FindOne(ctx, filter).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s: %w", what, models.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
