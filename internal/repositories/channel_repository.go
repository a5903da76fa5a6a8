package repositories

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
)

// ChannelRepository defines the interface for channel data access
type ChannelRepository interface {
	// Create creates a new channel
	Create(ctx context.Context, channel *entities.Channel) error

	// Get retrieves a channel by id, returns nil when not found
	Get(ctx context.Context, channelID string) (*entities.Channel, error)

	// ListByTenant retrieves all channels for a tenant.
	// Private channels are excluded unless includePrivate is set.
	ListByTenant(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error)

	// ListChildren retrieves the direct children of a channel
	ListChildren(ctx context.Context, channelID string) ([]*entities.Channel, error)

	// Update updates a channel's mutable fields
	Update(ctx context.Context, channel *entities.Channel) error

	// Delete deletes a channel
	Delete(ctx context.Context, channelID string) error
}
