package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when no notification matches
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository handles in-app notification database operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

// Create inserts a notification row
func (r *NotificationRepository) Create(n *models.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications (id, visa_application_id, recipient, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`

	_, err := r.db.Exec(query, n.ID, n.VisaApplicationID, n.To, n.Title, n.Message, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListForAdmin returns all admin-tagged notifications, newest first
func (r *NotificationRepository) ListForAdmin(limit int) ([]models.Notification, error) {
	query := `
		SELECT id, visa_application_id, recipient, title, message, read, created_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, models.NotifyAdmin, limit); err != nil {
		return nil, fmt.Errorf("failed to list admin notifications: %w", err)
	}

	return notifications, nil
}

// ListForUser returns user-tagged notifications joined through the user's
// own applications. The recipient column alone cannot scope to a person.
func (r *NotificationRepository) ListForUser(userID uuid.UUID, limit int) ([]models.Notification, error) {
	query := `
		SELECT n.id, n.visa_application_id, n.recipient, n.title, n.message, n.read, n.created_at
		FROM notifications n
		JOIN visa_applications a ON a.id = n.visa_application_id
		WHERE n.recipient = $1 AND a.user_id = $2
		ORDER BY n.created_at DESC
		LIMIT $3
	`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, models.NotifyUser, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list user notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a user-feed notification as read, scoped through the
// owning application so one user cannot touch another's feed.
func (r *NotificationRepository) MarkRead(id, userID uuid.UUID) error {
	query := `
		UPDATE notifications n
		SET read = true
		FROM visa_applications a
		WHERE n.id = $1 AND n.recipient = $2 AND a.id = n.visa_application_id AND a.user_id = $3
	`

	result, err := r.db.Exec(query, id, models.NotifyUser, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
