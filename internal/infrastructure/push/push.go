package push

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
)

// Result summarizes a delivery attempt across a set of device tokens
type Result struct {
	// SuccessCount is the number of tokens that accepted the message
	SuccessCount int

	// FailureCount is the number of tokens that rejected the message
	FailureCount int

	// UnregisteredTokens are tokens the provider reported as no longer
	// valid. Callers should prune these from storage.
	UnregisteredTokens []string
}

// Sender delivers a notification to a set of device tokens
type Sender interface {
	// Send delivers the notification to every token.
	// Sending to an empty token list succeeds with an empty result.
	Send(ctx context.Context, tokens []string, notification *entities.Notification) (*Result, error)
}
