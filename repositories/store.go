package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	// FindByTaskID returns the project whose task list references taskID.
	FindByTaskID(ctx context.Context, taskID primitive.ObjectID) (*models.Project, error)
	// ListForUser returns projects the user manages or belongs to, oldest first.
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch, now time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddMembers appends all members or none: it fails with ErrConflict when any
	// of the users is already on the team.
	AddMembers(ctx context.Context, id primitive.ObjectID, members []models.TeamMember, now time.Time) error
	RemoveMember(ctx context.Context, id, userID primitive.ObjectID, now time.Time) error
	AddTask(ctx context.Context, id, taskID primitive.ObjectID) error
	RemoveTask(ctx context.Context, id, taskID primitive.ObjectID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// FindByIDs returns the tasks that exist, in the order of ids.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, now time.Time) error
	// SetAssignee clears the assignee when userID is nil.
	SetAssignee(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID, now time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

// Store is the document store behind the three aggregates. Writes issued with
// the context passed to fn by WithTransaction commit or roll back together.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}
