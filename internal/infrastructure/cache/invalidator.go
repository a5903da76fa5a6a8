package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/jamboree26/notifications/pkg/cache"
)

// tokenChangesChannel is the NOTIFY channel raised by the device token
// and subscription triggers. The payload is the affected tenant id.
const tokenChangesChannel = "token_changes"

// Invalidator keeps recipient token caches consistent across instances.
// It uses PostgreSQL LISTEN/NOTIFY: whenever another instance changes a
// tenant's subscriptions or device tokens, the trigger notifies every
// listener, and each one drops its cached entries for that tenant.
type Invalidator struct {
	mu       sync.Mutex
	cache    cache.Cache
	listener *pq.Listener
	connStr  string
	stopCh   chan struct{}
	stopped  bool
}

// NewInvalidator creates an Invalidator for the given cache.
// connStr is the PostgreSQL connection string for LISTEN/NOTIFY.
func NewInvalidator(tokenCache cache.Cache, connStr string) *Invalidator {
	return &Invalidator{
		cache:   tokenCache,
		connStr: connStr,
		stopCh:  make(chan struct{}),
	}
}

// Start connects the LISTEN/NOTIFY listener and begins processing events.
func (i *Invalidator) Start() error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			// Log error but don't fail - entries still expire via TTL
			log.Printf("Cache invalidator listener error: %v", err)
		}
	}

	i.listener = pq.NewListener(i.connStr, 10*time.Second, time.Minute, reportProblem)

	if err := i.listener.Listen(tokenChangesChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", tokenChangesChannel, err)
	}

	go i.handleNotifications()

	return nil
}

// Stop stops the Invalidator and cleans up resources.
func (i *Invalidator) Stop() error {
	i.mu.Lock()
	if i.stopped {
		i.mu.Unlock()
		return nil
	}
	i.stopped = true
	close(i.stopCh)
	i.mu.Unlock()

	if i.listener != nil {
		return i.listener.Close()
	}
	return nil
}

// handleNotifications processes incoming NOTIFY events.
func (i *Invalidator) handleNotifications() {
	for {
		select {
		case <-i.stopCh:
			return
		case notification := <-i.listener.Notify:
			if notification == nil {
				// Connection lost, listener reconnects automatically.
				// Flush everything since notifications may have been missed.
				i.invalidate("")
				continue
			}
			i.invalidate(notification.Extra)
		case <-time.After(90 * time.Second):
			// Periodic ping to keep connection alive
			go func() {
				if err := i.listener.Ping(); err != nil {
					log.Printf("Cache invalidator ping error: %v", err)
				}
			}()
		}
	}
}

// invalidate drops the cached recipient sets for a tenant. An empty
// tenant id drops every entry.
func (i *Invalidator) invalidate(tenantID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if tenantID == "" {
		if err := i.cache.Clear(ctx); err != nil {
			log.Printf("Cache invalidator clear failed: %v", err)
		}
		return
	}
	if err := i.cache.DeletePrefix(ctx, tenantID+"/"); err != nil {
		log.Printf("Cache invalidation failed for tenant %s: %v", tenantID, err)
	}
}
