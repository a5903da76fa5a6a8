package push

import (
	"context"
	"log"

	"github.com/jamboree26/notifications/internal/entities"
)

// NoopSender implements Sender without delivering anything.
// Used when FCM is disabled (local development, tests).
type NoopSender struct{}

// NewNoopSender creates a sender that only logs
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the would-be delivery and reports every token as successful
func (s *NoopSender) Send(ctx context.Context, tokens []string, notification *entities.Notification) (*Result, error) {
	if len(tokens) == 0 {
		return &Result{}, nil
	}
	log.Printf("push disabled: dropping notification %s to %d token(s) on %s/%s",
		notification.ID, len(tokens), notification.TenantID, notification.ChannelID)
	return &Result{SuccessCount: len(tokens)}, nil
}
