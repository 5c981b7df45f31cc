package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/repositories"
)

type NotificationService struct {
	repo repositories.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

// Notify records a notice for userID. It runs after the triggering write has
// committed, so failures are only logged.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, message string) {
	if s == nil {
		return
	}
	notification := &models.Notification{
		UserID:    userID.Hex(),
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FAILED, Description: could not notify user %s: %v", userID.Hex(), err)
	}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Identity) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, actor.ID.Hex())
}

func (s *NotificationService) MarkRead(ctx context.Context, actor models.Identity, notificationID string) error {
	if notificationID == "" {
		return fmt.Errorf("notification id is required: %w", models.ErrInvalidInput)
	}
	return s.repo.MarkRead(ctx, actor.ID.Hex(), notificationID)
}
