package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
	"github.com/jamboree26/notifications/pkg/cache"
)

// SubscriptionServiceInterface defines the interface for subscription and
// device token operations
type SubscriptionServiceInterface interface {
	SaveTokens(ctx context.Context, tenantID, userID string, tokens []string) error
	Subscribe(ctx context.Context, tenantID, channelID, userID string) (*entities.Subscription, error)
	Unsubscribe(ctx context.Context, tenantID, channelID, userID string) error
	ListMine(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error)
	RecipientTokens(ctx context.Context, tenantID, channelID string) ([]string, error)
	UserTokens(ctx context.Context, tenantID, userID string) ([]string, error)
}

// SubscriptionService handles subscriptions and device tokens
type SubscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	tokenRepo        repositories.DeviceTokenRepository
	tokenCache       cache.Cache // optional, nil disables caching
	cacheTTL         time.Duration
}

// NewSubscriptionService creates a new SubscriptionService.
// tokenCache may be nil to disable recipient caching.
func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	tokenRepo repositories.DeviceTokenRepository,
	tokenCache cache.Cache,
	cacheTTL time.Duration,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		tokenRepo:        tokenRepo,
		tokenCache:       tokenCache,
		cacheTTL:         cacheTTL,
	}
}

// recipientKey builds the cache key for a channel's recipient token set
func recipientKey(tenantID, channelID string) string {
	return fmt.Sprintf("%s/%s", tenantID, channelID)
}

// SaveTokens merges the given device tokens into the user's record.
// Registering only already-known tokens is a no-op.
func (s *SubscriptionService) SaveTokens(ctx context.Context, tenantID, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("at least one device token is required: %w", ErrInvalidInput)
	}

	rec, err := s.tokenRepo.Get(ctx, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}

	if rec == nil {
		rec = entities.NewDeviceTokens(tenantID, userID, tokens)
	} else if !rec.Merge(tokens) {
		return nil // No new tokens!
	}

	if err := s.tokenRepo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to save device tokens: %w", err)
	}
	s.invalidateTenant(ctx, tenantID)
	return nil
}

// Subscribe adds the user to the channel (idempotent)
func (s *SubscriptionService) Subscribe(ctx context.Context, tenantID, channelID, userID string) (*entities.Subscription, error) {
	sub := entities.NewSubscription(tenantID, channelID, userID)
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrInvalidInput)
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	s.invalidate(ctx, tenantID, channelID)
	return sub, nil
}

// Unsubscribe removes the user from the channel
func (s *SubscriptionService) Unsubscribe(ctx context.Context, tenantID, channelID, userID string) error {
	id := entities.SubscriptionID(tenantID, channelID, userID)

	sub, err := s.subscriptionRepo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	if sub == nil {
		return fmt.Errorf("subscription %q: %w", id, ErrNotFound)
	}

	if err := s.subscriptionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	s.invalidate(ctx, tenantID, channelID)
	return nil
}

// ListMine returns the user's subscriptions within the tenant
func (s *SubscriptionService) ListMine(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error) {
	subs, err := s.subscriptionRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// RecipientTokens returns the union of device tokens over every subscriber
// of a channel. Results are cached per tenant/channel.
func (s *SubscriptionService) RecipientTokens(ctx context.Context, tenantID, channelID string) ([]string, error) {
	key := recipientKey(tenantID, channelID)
	if s.tokenCache != nil {
		if tokens, found := s.tokenCache.Get(ctx, key); found {
			return tokens, nil
		}
	}

	subs, err := s.subscriptionRepo.ListByChannel(ctx, tenantID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel subscriptions: %w", err)
	}

	userIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		userIDs = append(userIDs, sub.UserID)
	}

	recs, err := s.tokenRepo.GetByUsers(ctx, tenantID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriber tokens: %w", err)
	}

	set := make(map[string]struct{})
	for _, rec := range recs {
		for _, tok := range rec.Tokens {
			set[tok] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	if s.tokenCache != nil {
		_ = s.tokenCache.Set(ctx, key, tokens, s.cacheTTL)
	}
	return tokens, nil
}

// UserTokens returns one user's device tokens
func (s *SubscriptionService) UserTokens(ctx context.Context, tenantID, userID string) ([]string, error) {
	rec, err := s.tokenRepo.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Tokens, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, tenantID, channelID string) {
	if s.tokenCache != nil {
		_ = s.tokenCache.Delete(ctx, recipientKey(tenantID, channelID))
	}
}

func (s *SubscriptionService) invalidateTenant(ctx context.Context, tenantID string) {
	if s.tokenCache != nil {
		_ = s.tokenCache.DeletePrefix(ctx, tenantID+"/")
	}
}
