package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/infrastructure/config"
)

// FCM rejects multicast messages with more than 500 tokens
const multicastLimit = 500

// multicastClient is the slice of the messaging client Send relies on
type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMSender implements Sender using Firebase Cloud Messaging
type FCMSender struct {
	client         multicastClient
	isUnregistered func(error) bool
}

// NewFCMSender creates an FCM sender from the service account credentials
// in the configuration
func NewFCMSender(ctx context.Context, cfg *config.PushConfig) (*FCMSender, error) {
	opts := []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{
		client:         client,
		isUnregistered: messaging.IsUnregistered,
	}, nil
}

// Send delivers the notification to every token, chunked to the FCM
// multicast limit
func (s *FCMSender) Send(ctx context.Context, tokens []string, notification *entities.Notification) (*Result, error) {
	result := &Result{}
	if len(tokens) == 0 {
		return result, nil
	}

	for start := 0; start < len(tokens); start += multicastLimit {
		end := start + multicastLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]

		msg := &messaging.MulticastMessage{
			Tokens: chunk,
			Notification: &messaging.Notification{
				Title: notification.Title,
				Body:  notification.Body,
			},
			Data: map[string]string{
				"tenant_id":  notification.TenantID,
				"channel_id": notification.ChannelID,
			},
		}

		resp, err := s.client.SendEachForMulticast(ctx, msg)
		if err != nil {
			return result, fmt.Errorf("failed to send multicast: %w", err)
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount

		// Collect tokens FCM no longer knows so the caller can prune them
		for i, send := range resp.Responses {
			if send.Success || send.Error == nil {
				continue
			}
			if s.isUnregistered(send.Error) {
				result.UnregisteredTokens = append(result.UnregisteredTokens, chunk[i])
			}
		}
	}

	return result, nil
}
