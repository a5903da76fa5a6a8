package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// PostgresNotificationRepository implements NotificationRepository using PostgreSQL
type PostgresNotificationRepository struct {
	db *sql.DB
}

// NewPostgresNotificationRepository creates a new PostgreSQL notification repository
func NewPostgresNotificationRepository(db *sql.DB) repositories.NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// Create records a sent notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	if err := notification.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, tenant_id, channel_id, title, body, sent_by, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	sentAt := notification.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.TenantID,
		notification.ChannelID,
		notification.Title,
		notification.Body,
		notification.SentBy,
		sentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListHistory retrieves the most recent notifications, newest first
func (r *PostgresNotificationRepository) ListHistory(ctx context.Context, tenantID string, channelIDs []string, limit int) ([]*entities.Notification, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, tenant_id, channel_id, title, body, sent_by, sent_at
		FROM notifications
		WHERE tenant_id = $1 AND channel_id = ANY($2)
		ORDER BY sent_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, pq.Array(channelIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entities.Notification
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(&n.ID, &n.TenantID, &n.ChannelID, &n.Title, &n.Body, &n.SentBy, &n.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}
