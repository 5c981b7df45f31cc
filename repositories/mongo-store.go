package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HKazz/project-3-back-end/logging"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

// MongoStore keeps users, projects and tasks in three collections of one database.
// Transactions need the server to run as a replica set.
type MongoStore struct {
	client   *mongo.Client
	users    *MongoUserRepository
	projects *MongoProjectRepository
	tasks    *MongoTaskRepository
	guard    *storeGuard
}

// ConnectMongo dials uri and pings the server before returning.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB.")
	return client, nil
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	guard := newStoreGuard("MongoStoreCB")
	return &MongoStore{
		client:   client,
		users:    &MongoUserRepository{collection: db.Collection(usersCollection), guard: guard},
		projects: &MongoProjectRepository{collection: db.Collection(projectsCollection), guard: guard},
		tasks:    &MongoTaskRepository{collection: db.Collection(tasksCollection), guard: guard},
		guard:    guard,
	}
}

func (s *MongoStore) Users() UserRepository       { return s.users }
func (s *MongoStore) Projects() ProjectRepository { return s.projects }
func (s *MongoStore) Tasks() TaskRepository       { return s.tasks }

// WithTransaction runs fn inside a multi-document transaction. The driver
// retries fn on transient transaction errors, so fn must only touch the store.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return unavailable(fmt.Errorf("failed to start session: %w", err))
	}
	defer session.EndSession(context.Background())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return unavailable(err)
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users.collection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.projects.collection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "projectManager", Value: 1}}},
			{Keys: bson.D{{Key: "teamMembers.user", Value: 1}}},
			{Keys: bson.D{{Key: "tasks", Value: 1}}},
		},
		s.tasks.collection: {
			{Keys: bson.D{{Key: "projectManager", Value: 1}}},
		},
	}

	for collection, specs := range indexes {
		if _, err := collection.Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection.Name(), err)
		}
		logging.Logger.Infof("Event ID: DB_INDEXES_READY, Description: Indexes ensured on collection %s", collection.Name())
	}
	return nil
}
