package entities

import (
	"fmt"
	"time"
)

// Subscription represents a user's membership of a notification channel
// Key format: user@channel:tenant
type Subscription struct {
	ID        string
	TenantID  string
	ChannelID string
	UserID    string
	CreatedAt time.Time
}

// NewSubscription creates a subscription with its canonical id
func NewSubscription(tenantID, channelID, userID string) *Subscription {
	return &Subscription{
		ID:        SubscriptionID(tenantID, channelID, userID),
		TenantID:  tenantID,
		ChannelID: channelID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// SubscriptionID returns the canonical subscription key: user@channel:tenant
func SubscriptionID(tenantID, channelID, userID string) string {
	return fmt.Sprintf("%s@%s:%s", userID, channelID, tenantID)
}

// Validate checks if the subscription is valid
func (s *Subscription) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("subscription id is required")
	}
	if err := ValidateID(s.TenantID); err != nil {
		return fmt.Errorf("subscription tenant: %w", err)
	}
	if err := ValidateID(s.ChannelID); err != nil {
		return fmt.Errorf("subscription channel: %w", err)
	}
	if s.UserID == "" {
		return fmt.Errorf("subscription user id is required")
	}
	return nil
}
