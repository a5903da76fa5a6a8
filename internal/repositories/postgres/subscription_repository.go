package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// PostgresSubscriptionRepository implements SubscriptionRepository using PostgreSQL
type PostgresSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepository creates a new PostgreSQL subscription repository
func NewPostgresSubscriptionRepository(db *sql.DB) repositories.SubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Create creates a subscription (idempotent)
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO subscriptions (id, tenant_id, channel_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, sub.ID, sub.TenantID, sub.ChannelID, sub.UserID, createdAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Get retrieves a subscription by its canonical id
func (r *PostgresSubscriptionRepository) Get(ctx context.Context, subscriptionID string) (*entities.Subscription, error) {
	query := `
		SELECT id, tenant_id, channel_id, user_id, created_at
		FROM subscriptions
		WHERE id = $1
	`
	var sub entities.Subscription
	err := r.db.QueryRowContext(ctx, query, subscriptionID).Scan(
		&sub.ID, &sub.TenantID, &sub.ChannelID, &sub.UserID, &sub.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// Delete deletes a subscription by its canonical id
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, subscriptionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	return nil
}

// ListByUser retrieves a user's subscriptions within a tenant
func (r *PostgresSubscriptionRepository) ListByUser(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error) {
	query := `
		SELECT id, tenant_id, channel_id, user_id, created_at
		FROM subscriptions
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY channel_id
	`
	return r.querySubscriptions(ctx, query, tenantID, userID)
}

// ListByChannel retrieves all subscriptions of a channel within a tenant
func (r *PostgresSubscriptionRepository) ListByChannel(ctx context.Context, tenantID, channelID string) ([]*entities.Subscription, error) {
	query := `
		SELECT id, tenant_id, channel_id, user_id, created_at
		FROM subscriptions
		WHERE tenant_id = $1 AND channel_id = $2
		ORDER BY user_id
	`
	return r.querySubscriptions(ctx, query, tenantID, channelID)
}

func (r *PostgresSubscriptionRepository) querySubscriptions(ctx context.Context, query string, args ...interface{}) ([]*entities.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*entities.Subscription
	for rows.Next() {
		var sub entities.Subscription
		if err := rows.Scan(&sub.ID, &sub.TenantID, &sub.ChannelID, &sub.UserID, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}
