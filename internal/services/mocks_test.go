package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/infrastructure/push"
)

// Mock TenantRepository
type mockTenantRepository struct {
	tenants map[string]*entities.Tenant
}

func newMockTenantRepository() *mockTenantRepository {
	return &mockTenantRepository{tenants: make(map[string]*entities.Tenant)}
}

func (m *mockTenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	if _, exists := m.tenants[tenant.ID]; exists {
		return fmt.Errorf("duplicate tenant: %s", tenant.ID)
	}
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *mockTenantRepository) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	return m.tenants[tenantID], nil
}

func (m *mockTenantRepository) List(ctx context.Context) ([]*entities.Tenant, error) {
	var result []*entities.Tenant
	for _, t := range m.tenants {
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	if _, exists := m.tenants[tenant.ID]; !exists {
		return fmt.Errorf("tenant not found: %s", tenant.ID)
	}
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *mockTenantRepository) Delete(ctx context.Context, tenantID string) error {
	if _, exists := m.tenants[tenantID]; !exists {
		return fmt.Errorf("tenant not found: %s", tenantID)
	}
	delete(m.tenants, tenantID)
	return nil
}

// Mock ChannelRepository
type mockChannelRepository struct {
	channels map[string]*entities.Channel
}

func newMockChannelRepository() *mockChannelRepository {
	return &mockChannelRepository{channels: make(map[string]*entities.Channel)}
}

func (m *mockChannelRepository) Create(ctx context.Context, channel *entities.Channel) error {
	if _, exists := m.channels[channel.ID]; exists {
		return fmt.Errorf("duplicate channel: %s", channel.ID)
	}
	m.channels[channel.ID] = channel
	return nil
}

func (m *mockChannelRepository) Get(ctx context.Context, channelID string) (*entities.Channel, error) {
	return m.channels[channelID], nil
}

func (m *mockChannelRepository) ListByTenant(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error) {
	var result []*entities.Channel
	for _, c := range m.channels {
		if c.TenantID != tenantID {
			continue
		}
		if c.IsPrivate && !includePrivate {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockChannelRepository) ListChildren(ctx context.Context, channelID string) ([]*entities.Channel, error) {
	var result []*entities.Channel
	for _, c := range m.channels {
		if c.ParentID == channelID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockChannelRepository) Update(ctx context.Context, channel *entities.Channel) error {
	if _, exists := m.channels[channel.ID]; !exists {
		return fmt.Errorf("channel not found: %s", channel.ID)
	}
	m.channels[channel.ID] = channel
	return nil
}

func (m *mockChannelRepository) Delete(ctx context.Context, channelID string) error {
	if _, exists := m.channels[channelID]; !exists {
		return fmt.Errorf("channel not found: %s", channelID)
	}
	delete(m.channels, channelID)
	return nil
}

// Mock SubscriptionRepository
type mockSubscriptionRepository struct {
	subs map[string]*entities.Subscription
}

func newMockSubscriptionRepository() *mockSubscriptionRepository {
	return &mockSubscriptionRepository{subs: make(map[string]*entities.Subscription)}
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	if _, exists := m.subs[sub.ID]; exists {
		return nil // idempotent
	}
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubscriptionRepository) Get(ctx context.Context, subscriptionID string) (*entities.Subscription, error) {
	return m.subs[subscriptionID], nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, subscriptionID string) error {
	if _, exists := m.subs[subscriptionID]; !exists {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	delete(m.subs, subscriptionID)
	return nil
}

func (m *mockSubscriptionRepository) ListByUser(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error) {
	var result []*entities.Subscription
	for _, s := range m.subs {
		if s.TenantID == tenantID && s.UserID == userID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSubscriptionRepository) ListByChannel(ctx context.Context, tenantID, channelID string) ([]*entities.Subscription, error) {
	var result []*entities.Subscription
	for _, s := range m.subs {
		if s.TenantID == tenantID && s.ChannelID == channelID {
			result = append(result, s)
		}
	}
	return result, nil
}

// Mock DeviceTokenRepository
type mockDeviceTokenRepository struct {
	mu      sync.Mutex
	records map[string]*entities.DeviceTokens
	removed []string // tokens passed to RemoveTokens
}

func newMockDeviceTokenRepository() *mockDeviceTokenRepository {
	return &mockDeviceTokenRepository{records: make(map[string]*entities.DeviceTokens)}
}

func (m *mockDeviceTokenRepository) Upsert(ctx context.Context, rec *entities.DeviceTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockDeviceTokenRepository) Get(ctx context.Context, tenantID, userID string) (*entities.DeviceTokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[entities.DeviceTokensID(tenantID, userID)], nil
}

func (m *mockDeviceTokenRepository) GetByUsers(ctx context.Context, tenantID string, userIDs []string) ([]*entities.DeviceTokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entities.DeviceTokens
	for _, userID := range userIDs {
		if rec, ok := m.records[entities.DeviceTokensID(tenantID, userID)]; ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *mockDeviceTokenRepository) RemoveTokens(ctx context.Context, tenantID string, tokens []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, tokens...)
	return nil
}

func (m *mockDeviceTokenRepository) Delete(ctx context.Context, tenantID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, entities.DeviceTokensID(tenantID, userID))
	return nil
}

func (m *mockDeviceTokenRepository) removedTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// Mock NotificationRepository
type mockNotificationRepository struct {
	notifications []*entities.Notification
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{}
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepository) ListHistory(ctx context.Context, tenantID string, channelIDs []string, limit int) ([]*entities.Notification, error) {
	allowed := make(map[string]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		allowed[id] = struct{}{}
	}
	var result []*entities.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		n := m.notifications[i]
		if n.TenantID != tenantID {
			continue
		}
		if _, ok := allowed[n.ChannelID]; ok {
			result = append(result, n)
		}
	}
	return result, nil
}

// Mock push.Sender
type mockSender struct {
	mu           sync.Mutex
	sent         [][]string // token sets per call
	unregistered []string   // tokens to report unregistered on every call
	err          error
}

func newMockSender() *mockSender {
	return &mockSender{}
}

func (m *mockSender) Send(ctx context.Context, tokens []string, notification *entities.Notification) (*push.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, append([]string(nil), tokens...))

	result := &push.Result{SuccessCount: len(tokens)}
	for _, dead := range m.unregistered {
		for _, tok := range tokens {
			if tok == dead {
				result.SuccessCount--
				result.FailureCount++
				result.UnregisteredTokens = append(result.UnregisteredTokens, tok)
			}
		}
	}
	return result, nil
}

func (m *mockSender) calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.sent...)
}
