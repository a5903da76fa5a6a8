package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification represents a single published message.
// ChannelID holds a channel id for channel notifications, or the target
// user id for direct notifications so they appear in that user's history.
type Notification struct {
	ID        string
	TenantID  string
	ChannelID string
	Title     string
	Body      string
	SentBy    string
	SentAt    time.Time
}

// NewNotification creates a notification with a fresh id and timestamp
func NewNotification(tenantID, channelID, title, body, sentBy string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ChannelID: channelID,
		Title:     title,
		Body:      body,
		SentBy:    sentBy,
		SentAt:    time.Now().UTC(),
	}
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}
	if err := ValidateID(n.TenantID); err != nil {
		return fmt.Errorf("notification tenant: %w", err)
	}
	if n.ChannelID == "" {
		return fmt.Errorf("notification channel id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("notification title is required")
	}
	if n.Body == "" {
		return fmt.Errorf("notification body is required")
	}
	return nil
}
