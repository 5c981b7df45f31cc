package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HKazz/project-3-back-end/models"
)

type MongoProjectRepository struct {
	collection *mongo.Collection
	guard      *storeGuard
}

func (r *MongoProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	// $push on a null field fails, so both lists are stored as empty arrays.
	if project.TeamMembers == nil {
		project.TeamMembers = []models.TeamMember{}
	}
	if project.Tasks == nil {
		project.Tasks = []primitive.ObjectID{}
	}
	return r.guard.write(func() error {
		_, err := r.collection.InsertOne(ctx, project)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("project with name %q already exists: %w", project.Name, models.ErrConflict)
		}
		return err
	})
}

func (r *MongoProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "project "+id.Hex())
}

func (r *MongoProjectRepository) FindByTaskID(ctx context.Context, taskID primitive.ObjectID) (*models.Project, error) {
	return r.findOne(ctx, bson.M{"tasks": taskID}, "project owning task "+taskID.Hex())
}

func (r *MongoProjectRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Project, error) {
	var project models.Project
	err := r.guard.read(func() error {
		err := r.collection.FindOne(ctx, filter).Decode(&project)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s: %w", what, models.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *MongoProjectRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"projectManager": userID},
		bson.M{"teamMembers.user": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	projects := []models.Project{}
	err := r.guard.read(func() error {
		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &projects)
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *MongoProjectRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch, now time.Time) error {
	update := projectUpdate(patch, now)
	return r.guard.write(func() error {
		result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("project name already in use: %w", models.ErrConflict)
		}
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil
	})
}

// projectUpdate builds the update document for patch. A cleared end date is unset.
func projectUpdate(patch models.ProjectPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.StartDate != nil {
		set["startDate"] = patch.StartDate.Time
	}
	if patch.EndDate.Value != nil {
		set["endDate"] = *patch.EndDate.Value
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

func (r *MongoProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.guard.write(func() error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil
	})
}

// AddMembers pushes the whole batch in one guarded update: the filter only
// matches while none of the incoming users is on the team, so a duplicate
// leaves the document untouched.
func (r *MongoProjectRepository) AddMembers(ctx context.Context, id primitive.ObjectID, members []models.TeamMember, now time.Time) error {
	userIDs := make(bson.A, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.User)
	}

	filter := bson.M{"_id": id, "teamMembers.user": bson.M{"$nin": userIDs}}
	update := bson.M{
		"$push": bson.M{"teamMembers": bson.M{"$each": members}},
		"$set":  bson.M{"updatedAt": now},
	}

	return r.guard.write(func() error {
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 1 {
			return nil
		}
		return r.missOrConflict(ctx, id, fmt.Errorf("one or more members are already on project %s: %w", id.Hex(), models.ErrConflict))
	})
}

func (r *MongoProjectRepository) RemoveMember(ctx context.Context, id, userID primitive.ObjectID, now time.Time) error {
	filter := bson.M{"_id": id, "teamMembers.user": userID}
	update := bson.M{
		"$pull": bson.M{"teamMembers": bson.M{"user": userID}},
		"$set":  bson.M{"updatedAt": now},
	}

	return r.guard.write(func() error {
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 1 {
			return nil
		}
		return r.missOrConflict(ctx, id, fmt.Errorf("user %s is not a member of project %s: %w", userID.Hex(), id.Hex(), models.ErrNotFound))
	})
}

func (r *MongoProjectRepository) AddTask(ctx context.Context, id, taskID primitive.ObjectID) error {
	return r.updateTasks(ctx, id, bson.M{"$addToSet": bson.M{"tasks": taskID}})
}

func (r *MongoProjectRepository) RemoveTask(ctx context.Context, id, taskID primitive.ObjectID) error {
	return r.updateTasks(ctx, id, bson.M{"$pull": bson.M{"tasks": taskID}})
}

func (r *MongoProjectRepository) updateTasks(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return r.guard.write(func() error {
		result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil
	})
}

// missOrConflict tells a missing project apart from a guard filter that did not match.
func (r *MongoProjectRepository) missOrConflict(ctx context.Context, id primitive.ObjectID, guardErr error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id.Hex(), models.ErrNotFound)
	}
	return guardErr
}
