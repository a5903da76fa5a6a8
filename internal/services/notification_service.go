package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/infrastructure/push"
	"github.com/jamboree26/notifications/internal/repositories"
)

const (
	// History defaults, matching the API's limit bounds
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50

	// pruneTimeout bounds the background removal of dead tokens
	pruneTimeout = 30 * time.Second
)

// NotificationServiceInterface defines the interface for publishing and
// reading notifications
type NotificationServiceInterface interface {
	Publish(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool, title, body, sentBy string) (*entities.Notification, error)
	PublishDirect(ctx context.Context, tenantID, userID, title, body, sentBy string) (*entities.Notification, error)
	History(ctx context.Context, tenantID, userID string, channelIDs []string, limit int) ([]*entities.Notification, error)
	Send(ctx context.Context, notification *entities.Notification, save bool) error
}

// NotificationService orchestrates fan-out, delivery and history
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	subscriptions    SubscriptionServiceInterface
	channels         ChannelServiceInterface
	sender           push.Sender
	tokenRepo        repositories.DeviceTokenRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	subscriptions SubscriptionServiceInterface,
	channels ChannelServiceInterface,
	sender push.Sender,
	tokenRepo repositories.DeviceTokenRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		subscriptions:    subscriptions,
		channels:         channels,
		sender:           sender,
		tokenRepo:        tokenRepo,
	}
}

// Publish sends a notification to each channel's subscribers and records
// it in history. Returns the notification for the last channel published.
func (s *NotificationService) Publish(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool, title, body, sentBy string) (*entities.Notification, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("at least one channel id is required: %w", ErrInvalidInput)
	}

	expanded, err := s.channels.Expand(ctx, tenantID, channelIDs, includeChildren)
	if err != nil {
		return nil, err
	}

	var last *entities.Notification
	for _, channelID := range expanded {
		msg := entities.NewNotification(tenantID, channelID, title, body, sentBy)
		if err := s.Send(ctx, msg, true); err != nil {
			return nil, err
		}
		last = msg
	}
	return last, nil
}

// PublishDirect sends a notification straight to one user's devices.
// The user id doubles as the history channel so direct sends show up in
// the recipient's feed.
func (s *NotificationService) PublishDirect(ctx context.Context, tenantID, userID, title, body, sentBy string) (*entities.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("a user id is required: %w", ErrInvalidInput)
	}

	tokens, err := s.subscriptions.UserTokens(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("user %q: %w", userID, ErrNoDeviceTokens)
	}

	msg := entities.NewNotification(tenantID, userID, title, body, sentBy)
	if err := s.deliver(ctx, tokens, msg); err != nil {
		return nil, err
	}
	if err := s.notificationRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}
	return msg, nil
}

// History returns the most recent notifications visible to the user.
// With no channel filter it covers the user's subscribed channels; the
// user's direct notifications are always included.
func (s *NotificationService) History(ctx context.Context, tenantID, userID string, channelIDs []string, limit int) ([]*entities.Notification, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if len(channelIDs) == 0 {
		subs, err := s.subscriptions.ListMine(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			channelIDs = append(channelIDs, sub.ChannelID)
		}
	}
	// Direct notifications live under the user's own id
	channelIDs = append(channelIDs, userID)

	notifications, err := s.notificationRepo.ListHistory(ctx, tenantID, channelIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return notifications, nil
}

// Send resolves a channel's recipients and delivers to them.
// Nothing is recorded when the channel has no recipients, and heartbeats
// pass save=false to stay out of history entirely.
func (s *NotificationService) Send(ctx context.Context, notification *entities.Notification, save bool) error {
	tokens, err := s.subscriptions.RecipientTokens(ctx, notification.TenantID, notification.ChannelID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	if err := s.deliver(ctx, tokens, notification); err != nil {
		return err
	}
	if save {
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to record notification: %w", err)
		}
	}
	return nil
}

// deliver pushes to the tokens and prunes the ones FCM reports dead
func (s *NotificationService) deliver(ctx context.Context, tokens []string, notification *entities.Notification) error {
	result, err := s.sender.Send(ctx, tokens, notification)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	if result.FailureCount > 0 {
		log.Printf("Notification %s: %d of %d deliveries failed",
			notification.ID, result.FailureCount, len(tokens))
	}

	if len(result.UnregisteredTokens) > 0 {
		s.pruneTokens(notification.TenantID, result.UnregisteredTokens)
	}
	return nil
}

// pruneTokens removes unregistered tokens in the background so delivery
// latency does not depend on cleanup
func (s *NotificationService) pruneTokens(tenantID string, tokens []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()

		if err := s.tokenRepo.RemoveTokens(ctx, tenantID, tokens); err != nil {
			log.Printf("Failed to prune %d unregistered token(s) for tenant %s: %v", len(tokens), tenantID, err)
			return
		}
		log.Printf("Pruned %d unregistered token(s) for tenant %s", len(tokens), tenantID)
	}()
}
