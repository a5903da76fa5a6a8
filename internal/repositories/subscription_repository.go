package repositories

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
)

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	// Create creates a subscription. Creating an existing subscription is
	// a no-op (idempotent).
	Create(ctx context.Context, sub *entities.Subscription) error

	// Get retrieves a subscription by its canonical id, nil when not found
	Get(ctx context.Context, subscriptionID string) (*entities.Subscription, error)

	// Delete deletes a subscription by its canonical id
	Delete(ctx context.Context, subscriptionID string) error

	// ListByUser retrieves a user's subscriptions within a tenant
	ListByUser(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error)

	// ListByChannel retrieves all subscriptions of a channel within a tenant
	ListByChannel(ctx context.Context, tenantID, channelID string) ([]*entities.Subscription, error)
}

// DeviceTokenRepository defines the interface for device token data access
type DeviceTokenRepository interface {
	// Upsert inserts or replaces a user's token record
	Upsert(ctx context.Context, rec *entities.DeviceTokens) error

	// Get retrieves a user's token record within a tenant, nil when not found
	Get(ctx context.Context, tenantID, userID string) (*entities.DeviceTokens, error)

	// GetByUsers retrieves the token records of several users at once
	GetByUsers(ctx context.Context, tenantID string, userIDs []string) ([]*entities.DeviceTokens, error)

	// RemoveTokens removes the given tokens from every record in a tenant
	// that holds them. Used to prune tokens FCM reports as unregistered.
	RemoveTokens(ctx context.Context, tenantID string, tokens []string) error

	// Delete deletes a user's token record within a tenant
	Delete(ctx context.Context, tenantID, userID string) error
}
