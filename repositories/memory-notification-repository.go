package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/HKazz/project-3-back-end/models"
)

// MemoryNotificationRepository keeps notifications in process memory. It is
// used when no Cassandra hosts are configured.
type MemoryNotificationRepository struct {
	mu     sync.RWMutex
	byUser map[string][]models.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{byUser: map[string][]models.Notification{}}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[notification.UserID] = append(r.byUser[notification.UserID], *notification)
	return nil
}

func (r *MemoryNotificationRepository) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byUser[userID]
	notifications := make([]models.Notification, len(stored))
	for i, n := range stored {
		notifications[len(stored)-1-i] = n
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, userID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.byUser[userID] {
		if r.byUser[userID][i].ID == notificationID {
			r.byUser[userID][i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", notificationID, models.ErrNotFound)
}
