package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HKazz/project-3-back-end/models"
)

type MongoTaskRepository struct {
	collection *mongo.Collection
	guard      *storeGuard
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	return r.guard.write(func() error {
		_, err := r.collection.InsertOne(ctx, task)
		return err
	})
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.guard.read(func() error {
		err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *MongoTaskRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}

	var found []models.Task
	err := r.guard.read(func() error {
		cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &found)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Task, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tasks := make([]models.Task, 0, len(found))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, now time.Time) error {
	return r.updateOne(ctx, id, taskUpdate(patch, now))
}

func taskUpdate(patch models.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["taskName"] = *patch.Name
	}
	if patch.Description != nil {
		set["taskDescription"] = *patch.Description
	}
	if patch.StartDate != nil {
		set["startDate"] = patch.StartDate.Time
	}
	if patch.EndDate.Value != nil {
		set["endDate"] = *patch.EndDate.Value
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	update := bson.M{"$set": set}
	if patch.EndDate.Cleared() {
		update["$unset"] = bson.M{"endDate": ""}
	}
	return update
}

func (r *MongoTaskRepository) SetAssignee(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID, now time.Time) error {
	if userID == nil {
		return r.updateOne(ctx, id, bson.M{"$unset": bson.M{"assignedUser": ""}, "$set": bson.M{"updatedAt": now}})
	}
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"assignedUser": *userID, "updatedAt": now}})
}

func (r *MongoTaskRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return r.guard.write(func() error {
		result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil
	})
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.guard.write(func() error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("task %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil
	})
}

func (r *MongoTaskRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.guard.write(func() error {
		_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		return err
	})
}
