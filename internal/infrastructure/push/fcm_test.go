package push

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"firebase.google.com/go/v4/messaging"

	"github.com/jamboree26/notifications/internal/entities"
)

var errTokenUnregistered = errors.New("registration token not registered")

// fakeMulticastClient answers each token via respond and records the
// messages it was asked to send
type fakeMulticastClient struct {
	messages []*messaging.MulticastMessage
	respond  func(token string) error
}

func (c *fakeMulticastClient) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	c.messages = append(c.messages, message)

	resp := &messaging.BatchResponse{}
	for _, token := range message.Tokens {
		var err error
		if c.respond != nil {
			err = c.respond(token)
		}
		if err != nil {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: err})
		} else {
			resp.SuccessCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true})
		}
	}
	return resp, nil
}

func newTestFCMSender(client *fakeMulticastClient) *FCMSender {
	return &FCMSender{
		client: client,
		isUnregistered: func(err error) bool {
			return errors.Is(err, errTokenUnregistered)
		},
	}
}

func makeTokens(n int) []string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%04d", i)
	}
	return tokens
}

func TestFCMSender_Send_Chunking(t *testing.T) {
	tests := []struct {
		name       string
		tokenCount int
		wantCalls  int
		chunkSizes []int
	}{
		{name: "empty", tokenCount: 0, wantCalls: 0, chunkSizes: nil},
		{name: "single token", tokenCount: 1, wantCalls: 1, chunkSizes: []int{1}},
		{name: "exactly the limit", tokenCount: 500, wantCalls: 1, chunkSizes: []int{500}},
		{name: "one over the limit", tokenCount: 501, wantCalls: 2, chunkSizes: []int{500, 1}},
		{name: "two full chunks", tokenCount: 1000, wantCalls: 2, chunkSizes: []int{500, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMulticastClient{}
			sender := newTestFCMSender(client)
			notification := entities.NewNotification("jamboree26", "general", "Hello", "World", "admin")

			result, err := sender.Send(context.Background(), makeTokens(tt.tokenCount), notification)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(client.messages) != tt.wantCalls {
				t.Fatalf("multicast calls = %d, want %d", len(client.messages), tt.wantCalls)
			}
			for i, msg := range client.messages {
				if len(msg.Tokens) != tt.chunkSizes[i] {
					t.Errorf("chunk %d size = %d, want %d", i, len(msg.Tokens), tt.chunkSizes[i])
				}
				if len(msg.Tokens) > 500 {
					t.Errorf("chunk %d exceeds the multicast limit: %d tokens", i, len(msg.Tokens))
				}
			}
			if result.SuccessCount != tt.tokenCount {
				t.Errorf("SuccessCount = %d, want %d", result.SuccessCount, tt.tokenCount)
			}
		})
	}
}

func TestFCMSender_Send_Payload(t *testing.T) {
	client := &fakeMulticastClient{}
	sender := newTestFCMSender(client)
	notification := entities.NewNotification("jamboree26", "general", "Hello", "World", "admin")

	if _, err := sender.Send(context.Background(), []string{"tok-1"}, notification); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.messages[0]
	if msg.Notification.Title != "Hello" || msg.Notification.Body != "World" {
		t.Errorf("notification = %+v", msg.Notification)
	}
	want := map[string]string{"tenant_id": "jamboree26", "channel_id": "general"}
	if !reflect.DeepEqual(msg.Data, want) {
		t.Errorf("Data = %v, want %v", msg.Data, want)
	}
}

func TestFCMSender_Send_CollectsUnregisteredTokens(t *testing.T) {
	dead := map[string]error{
		"tok-0001": errTokenUnregistered,
		"tok-0003": errors.New("internal error"),
		"tok-0700": errTokenUnregistered,
	}
	client := &fakeMulticastClient{
		respond: func(token string) error { return dead[token] },
	}
	sender := newTestFCMSender(client)
	notification := entities.NewNotification("jamboree26", "general", "Hello", "World", "admin")

	// Spans two chunks so unregistered tokens are collected across both
	result, err := sender.Send(context.Background(), makeTokens(800), notification)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SuccessCount != 797 || result.FailureCount != 3 {
		t.Errorf("counts = (%d, %d), want (797, 3)", result.SuccessCount, result.FailureCount)
	}
	// Only the unregistered failures are prunable, not transient errors
	if !reflect.DeepEqual(result.UnregisteredTokens, []string{"tok-0001", "tok-0700"}) {
		t.Errorf("UnregisteredTokens = %v", result.UnregisteredTokens)
	}
}
