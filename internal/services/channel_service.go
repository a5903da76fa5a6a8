package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// ChannelServiceInterface defines the interface for channel operations
type ChannelServiceInterface interface {
	List(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error)
	Get(ctx context.Context, tenantID, channelID string) (*entities.Channel, error)
	Create(ctx context.Context, channel *entities.Channel) (*entities.Channel, error)
	Update(ctx context.Context, channel *entities.Channel) (*entities.Channel, error)
	Delete(ctx context.Context, tenantID, channelID string) error
	Expand(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool) ([]string, error)
	EnsureHeartbeatChannel(ctx context.Context, tenantID, channelID string) error
}

// ChannelService handles channel operations
type ChannelService struct {
	channelRepo repositories.ChannelRepository
}

// NewChannelService creates a new ChannelService
func NewChannelService(channelRepo repositories.ChannelRepository) *ChannelService {
	return &ChannelService{channelRepo: channelRepo}
}

// List returns a tenant's channels
func (s *ChannelService) List(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error) {
	channels, err := s.channelRepo.ListByTenant(ctx, tenantID, includePrivate)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// Get returns a channel, verifying it belongs to the tenant
func (s *ChannelService) Get(ctx context.Context, tenantID, channelID string) (*entities.Channel, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required: %w", ErrInvalidInput)
	}

	channel, err := s.channelRepo.Get(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if channel == nil || channel.TenantID != tenantID {
		return nil, fmt.Errorf("channel %q: %w", channelID, ErrNotFound)
	}
	return channel, nil
}

// Create creates a channel after checking the id is free and the parent
// exists
func (s *ChannelService) Create(ctx context.Context, channel *entities.Channel) (*entities.Channel, error) {
	if err := channel.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)
	}

	existing, err := s.channelRepo.Get(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check channel id: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("channel %q: %w", channel.ID, ErrAlreadyExists)
	}

	if channel.ParentID != "" {
		parent, err := s.channelRepo.Get(ctx, channel.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent channel: %w", err)
		}
		if parent == nil || parent.TenantID != channel.TenantID {
			return nil, fmt.Errorf("parent channel %q: %w", channel.ParentID, ErrNotFound)
		}
	}

	channel.UpdatedAt = time.Now().UTC()
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return channel, nil
}

// Update updates a channel's mutable fields
func (s *ChannelService) Update(ctx context.Context, channel *entities.Channel) (*entities.Channel, error) {
	current, err := s.Get(ctx, channel.TenantID, channel.ID)
	if err != nil {
		return nil, err
	}

	if channel.ParentID != "" && channel.ParentID != current.ParentID {
		parent, err := s.channelRepo.Get(ctx, channel.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent channel: %w", err)
		}
		if parent == nil || parent.TenantID != channel.TenantID {
			return nil, fmt.Errorf("parent channel %q: %w", channel.ParentID, ErrNotFound)
		}
	}

	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}
	return channel, nil
}

// Delete deletes a channel
func (s *ChannelService) Delete(ctx context.Context, tenantID, channelID string) error {
	if _, err := s.Get(ctx, tenantID, channelID); err != nil {
		return err
	}
	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

// Expand resolves a channel id list to the ids actually published to.
// With includeChildren set, each channel's direct children are appended.
// Unknown ids pass through untouched so history for deleted channels keeps
// working.
func (s *ChannelService) Expand(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool) ([]string, error) {
	seen := make(map[string]struct{}, len(channelIDs))
	expanded := make([]string, 0, len(channelIDs))

	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		expanded = append(expanded, id)
	}

	for _, id := range channelIDs {
		add(id)
		if !includeChildren {
			continue
		}
		children, err := s.channelRepo.ListChildren(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to expand channel %q: %w", id, err)
		}
		for _, child := range children {
			if child.TenantID == tenantID {
				add(child.ID)
			}
		}
	}

	return expanded, nil
}

// EnsureHeartbeatChannel seeds the heartbeat channel when it does not
// exist. Safe to call on every startup.
func (s *ChannelService) EnsureHeartbeatChannel(ctx context.Context, tenantID, channelID string) error {
	channel, err := s.channelRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to check heartbeat channel: %w", err)
	}
	if channel != nil {
		return nil
	}

	log.Printf("Seeding heartbeat channel %q", channelID)
	heartbeat := &entities.Channel{
		ID:          channelID,
		TenantID:    tenantID,
		Name:        "Heartbeat channel",
		Description: "Sends heartbeats once a minute",
		IsOpen:      true,
		UpdatedBy:   "init",
	}
	if err := s.channelRepo.Create(ctx, heartbeat); err != nil {
		return fmt.Errorf("failed to seed heartbeat channel: %w", err)
	}
	return nil
}
