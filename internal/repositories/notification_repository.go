package repositories

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
)

// NotificationRepository defines the interface for notification history access
type NotificationRepository interface {
	// Create records a sent notification
	Create(ctx context.Context, notification *entities.Notification) error

	// ListHistory retrieves the most recent notifications for a tenant
	// across the given channel ids, newest first, capped at limit
	ListHistory(ctx context.Context, tenantID string, channelIDs []string, limit int) ([]*entities.Notification, error)
}
