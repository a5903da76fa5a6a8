package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
)

// Heartbeat publishes a message to the heartbeat channel once a minute,
// aligned to the minute boundary. Heartbeats are delivered but never
// recorded in history.
type Heartbeat struct {
	notifications NotificationServiceInterface
	tenantID      string
	channelID     string
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewHeartbeat creates a heartbeat publisher for the given channel
func NewHeartbeat(notifications NotificationServiceInterface, tenantID, channelID string) *Heartbeat {
	return &Heartbeat{
		notifications: notifications,
		tenantID:      tenantID,
		channelID:     channelID,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start runs the heartbeat loop in a goroutine
func (h *Heartbeat) Start() {
	go h.loop()
}

// Stop stops the heartbeat loop and waits for it to finish
func (h *Heartbeat) Stop() {
	close(h.stopCh)
	<-h.doneCh
}

func (h *Heartbeat) loop() {
	defer close(h.doneCh)

	for {
		// Sleep to the start of the next minute
		wait := time.Minute - time.Duration(time.Now().UnixNano())%time.Minute

		select {
		case <-h.stopCh:
			return
		case <-time.After(wait):
		}

		h.beat()
	}
}

func (h *Heartbeat) beat() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Sending a heartbeat")
	msg := entities.NewNotification(
		h.tenantID,
		h.channelID,
		"HeartBeat",
		fmt.Sprintf("Aktuell tid: %s", time.Now().UTC().Format(time.RFC3339)),
		"Heartbeat loop",
	)
	if err := h.notifications.Send(ctx, msg, false); err != nil {
		log.Printf("Heartbeat send failed: %v", err)
	}
}
