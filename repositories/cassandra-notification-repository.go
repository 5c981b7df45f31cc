package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
)

type CassandraNotificationRepository struct {
	session *gocql.Session
	guard   *storeGuard
}

// NewCassandraNotificationRepository connects to hosts (comma separated),
// creates keyspace when it is missing and opens a session bound to it.
func NewCassandraNotificationRepository(hosts, keyspace string) (*CassandraNotificationRepository, error) {
	cluster := gocql.NewCluster(strings.Split(hosts, ",")...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
		 WITH replication = {
			'class': 'SimpleStrategy',
			'replication_factor': 1
		 }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("create keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", keyspace, err)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: connected to Cassandra keyspace %s", keyspace)
	return &CassandraNotificationRepository{session: session, guard: newStoreGuard("cassandra")}, nil
}

func (r *CassandraNotificationRepository) Close() {
	r.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

func (r *CassandraNotificationRepository) CreateTable(ctx context.Context) error {
	return r.guard.write(func() error {
		return r.session.Query(
			`CREATE TABLE IF NOT EXISTS notifications (
				user_id TEXT,
				id TIMEUUID,
				message TEXT,
				created_at TIMESTAMP,
				is_read BOOLEAN,
				PRIMARY KEY ((user_id), id)
			) WITH CLUSTERING ORDER BY (id DESC)`).WithContext(ctx).Exec()
	})
}

func (r *CassandraNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	id := gocql.UUIDFromTime(notification.CreatedAt)
	if notification.ID != "" {
		parsed, err := gocql.ParseUUID(notification.ID)
		if err != nil {
			return fmt.Errorf("notification id %q: %w", notification.ID, models.ErrInvalidInput)
		}
		id = parsed
	}
	notification.ID = id.String()

	return r.guard.write(func() error {
		return r.session.Query(
			`INSERT INTO notifications (user_id, id, message, created_at, is_read) VALUES (?, ?, ?, ?, ?)`,
			notification.UserID, id, notification.Message, notification.CreatedAt, notification.IsRead,
		).WithContext(ctx).Exec()
	})
}

func (r *CassandraNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.guard.read(func() error {
		notifications = notifications[:0]
		iter := r.session.Query(
			`SELECT id, message, created_at, is_read FROM notifications WHERE user_id = ?`, userID,
		).WithContext(ctx).Iter()

		var (
			id        gocql.UUID
			message   string
			createdAt time.Time
			isRead    bool
		)
		for iter.Scan(&id, &message, &createdAt, &isRead) {
			notifications = append(notifications, models.Notification{
				ID:        id.String(),
				UserID:    userID,
				Message:   message,
				CreatedAt: createdAt,
				IsRead:    isRead,
			})
		}
		return iter.Close()
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *CassandraNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("notification %s: %w", notificationID, models.ErrNotFound)
	}
	return r.guard.write(func() error {
		applied, err := r.session.Query(
			`UPDATE notifications SET is_read = true WHERE user_id = ? AND id = ? IF EXISTS`, userID, id,
		).WithContext(ctx).ScanCAS()
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("notification %s: %w", notificationID, models.ErrNotFound)
		}
		return nil
	})
}
