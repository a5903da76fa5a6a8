package entities

import (
	"fmt"
	"time"
)

// Channel represents a notification channel within a tenant.
// Channels may nest one level or more via ParentID; publishing to a parent
// can fan out to its children.
type Channel struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	IsOpen      bool   // Open channels accept self-service subscriptions
	IsPrivate   bool   // Private channels are hidden from non-admin listings
	ParentID    string // Optional parent channel id, empty for top-level channels
	UpdatedAt   time.Time
	UpdatedBy   string
}

// Validate checks if the channel is valid
func (c *Channel) Validate() error {
	if err := ValidateID(c.ID); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if err := ValidateID(c.TenantID); err != nil {
		return fmt.Errorf("channel tenant: %w", err)
	}
	if c.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	if c.ParentID != "" {
		if err := ValidateID(c.ParentID); err != nil {
			return fmt.Errorf("channel parent: %w", err)
		}
		if c.ParentID == c.ID {
			return fmt.Errorf("channel cannot be its own parent")
		}
	}
	return nil
}
