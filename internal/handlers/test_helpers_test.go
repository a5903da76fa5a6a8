package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/services"
)

// In-memory service fakes for handler tests

type fakeTenantService struct {
	tenants map[string]*entities.Tenant
}

func newFakeTenantService(tenants ...*entities.Tenant) *fakeTenantService {
	s := &fakeTenantService{tenants: make(map[string]*entities.Tenant)}
	for _, t := range tenants {
		s.tenants[t.ID] = t
	}
	return s
}

func (s *fakeTenantService) List(ctx context.Context) ([]*entities.Tenant, error) {
	result := make([]*entities.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		result = append(result, t)
	}
	return result, nil
}

func (s *fakeTenantService) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %q: %w", tenantID, services.ErrNotFound)
	}
	return tenant, nil
}

func (s *fakeTenantService) EnsureDefault(ctx context.Context, tenantID, name string) error {
	return nil
}

func (s *fakeTenantService) IsAdmin(ctx context.Context, tenantID string, groups []string) (bool, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return tenant.IsAdmin(groups), nil
}

func (s *fakeTenantService) RequireAdmin(ctx context.Context, tenantID string, groups []string) error {
	admin, err := s.IsAdmin(ctx, tenantID, groups)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("tenant %q: %w", tenantID, services.ErrForbidden)
	}
	return nil
}

type fakeChannelService struct {
	channels map[string]*entities.Channel
}

func newFakeChannelService(channels ...*entities.Channel) *fakeChannelService {
	s := &fakeChannelService{channels: make(map[string]*entities.Channel)}
	for _, c := range channels {
		s.channels[c.ID] = c
	}
	return s
}

func (s *fakeChannelService) List(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error) {
	result := make([]*entities.Channel, 0, len(s.channels))
	for _, c := range s.channels {
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

func (s *fakeChannelService) Get(ctx context.Context, tenantID, channelID string) (*entities.Channel, error) {
	channel, ok := s.channels[channelID]
	if !ok || channel.TenantID != tenantID {
		return nil, fmt.Errorf("channel %q: %w", channelID, services.ErrNotFound)
	}
	return channel, nil
}

func (s *fakeChannelService) Create(ctx context.Context, channel *entities.Channel) (*entities.Channel, error) {
	if err := channel.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), services.ErrInvalidInput)
	}
	if _, exists := s.channels[channel.ID]; exists {
		return nil, fmt.Errorf("channel %q: %w", channel.ID, services.ErrAlreadyExists)
	}
	s.channels[channel.ID] = channel
	return channel, nil
}

func (s *fakeChannelService) Update(ctx context.Context, channel *entities.Channel) (*entities.Channel, error) {
	if _, err := s.Get(ctx, channel.TenantID, channel.ID); err != nil {
		return nil, err
	}
	s.channels[channel.ID] = channel
	return channel, nil
}

func (s *fakeChannelService) Delete(ctx context.Context, tenantID, channelID string) error {
	if _, err := s.Get(ctx, tenantID, channelID); err != nil {
		return err
	}
	delete(s.channels, channelID)
	return nil
}

func (s *fakeChannelService) Expand(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool) ([]string, error) {
	return channelIDs, nil
}

func (s *fakeChannelService) EnsureHeartbeatChannel(ctx context.Context, tenantID, channelID string) error {
	return nil
}

type fakeSubscriptionService struct {
	subscriptions map[string]*entities.Subscription
	tokens        map[string][]string // DeviceTokensID -> tokens
	savedTokens   [][]string
}

func newFakeSubscriptionService() *fakeSubscriptionService {
	return &fakeSubscriptionService{
		subscriptions: make(map[string]*entities.Subscription),
		tokens:        make(map[string][]string),
	}
}

func (s *fakeSubscriptionService) SaveTokens(ctx context.Context, tenantID, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("at least one device token is required: %w", services.ErrInvalidInput)
	}
	s.tokens[entities.DeviceTokensID(tenantID, userID)] = tokens
	s.savedTokens = append(s.savedTokens, tokens)
	return nil
}

func (s *fakeSubscriptionService) Subscribe(ctx context.Context, tenantID, channelID, userID string) (*entities.Subscription, error) {
	sub := entities.NewSubscription(tenantID, channelID, userID)
	s.subscriptions[sub.ID] = sub
	return sub, nil
}

func (s *fakeSubscriptionService) Unsubscribe(ctx context.Context, tenantID, channelID, userID string) error {
	id := entities.SubscriptionID(tenantID, channelID, userID)
	if _, ok := s.subscriptions[id]; !ok {
		return fmt.Errorf("subscription %q: %w", id, services.ErrNotFound)
	}
	delete(s.subscriptions, id)
	return nil
}

func (s *fakeSubscriptionService) ListMine(ctx context.Context, tenantID, userID string) ([]*entities.Subscription, error) {
	var result []*entities.Subscription
	for _, sub := range s.subscriptions {
		if sub.TenantID == tenantID && sub.UserID == userID {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (s *fakeSubscriptionService) RecipientTokens(ctx context.Context, tenantID, channelID string) ([]string, error) {
	return nil, nil
}

func (s *fakeSubscriptionService) UserTokens(ctx context.Context, tenantID, userID string) ([]string, error) {
	return s.tokens[entities.DeviceTokensID(tenantID, userID)], nil
}

type fakeNotificationService struct {
	subscriptions *fakeSubscriptionService
	published     []*entities.Notification
}

func newFakeNotificationService(subscriptions *fakeSubscriptionService) *fakeNotificationService {
	return &fakeNotificationService{subscriptions: subscriptions}
}

func (s *fakeNotificationService) Publish(ctx context.Context, tenantID string, channelIDs []string, includeChildren bool, title, body, sentBy string) (*entities.Notification, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("at least one channel id is required: %w", services.ErrInvalidInput)
	}
	var last *entities.Notification
	for _, channelID := range channelIDs {
		last = entities.NewNotification(tenantID, channelID, title, body, sentBy)
		s.published = append(s.published, last)
	}
	return last, nil
}

func (s *fakeNotificationService) PublishDirect(ctx context.Context, tenantID, userID, title, body, sentBy string) (*entities.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("a user id is required: %w", services.ErrInvalidInput)
	}
	tokens, _ := s.subscriptions.UserTokens(ctx, tenantID, userID)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("user %q: %w", userID, services.ErrNoDeviceTokens)
	}
	notification := entities.NewNotification(tenantID, userID, title, body, sentBy)
	s.published = append(s.published, notification)
	return notification, nil
}

func (s *fakeNotificationService) History(ctx context.Context, tenantID, userID string, channelIDs []string, limit int) ([]*entities.Notification, error) {
	return s.published, nil
}

func (s *fakeNotificationService) Send(ctx context.Context, notification *entities.Notification, save bool) error {
	return nil
}

// Router fixture

type routerFixture struct {
	router        chi.Router
	tenants       *fakeTenantService
	channels      *fakeChannelService
	subscriptions *fakeSubscriptionService
	notifications *fakeNotificationService
}

func newRouterFixture() *routerFixture {
	tenants := newFakeTenantService(
		&entities.Tenant{ID: "jamboree26", Name: "J26 Notifications", DefaultLocale: "sv"},
		&entities.Tenant{ID: "locked", Name: "Locked", AdminRoles: []string{"admins"}},
	)
	channels := newFakeChannelService(
		&entities.Channel{ID: "general", TenantID: "jamboree26", Name: "General", IsOpen: true},
		&entities.Channel{ID: "secret", TenantID: "jamboree26", Name: "Secret", IsPrivate: true},
	)
	subscriptions := newFakeSubscriptionService()
	notifications := newFakeNotificationService(subscriptions)

	router := NewRouter(&RouterConfig{
		APIPrefix:     "/api",
		Tenants:       tenants,
		Channels:      channels,
		Subscriptions: subscriptions,
		Notifications: notifications,
	})

	return &routerFixture{
		router:        router,
		tenants:       tenants,
		channels:      channels,
		subscriptions: subscriptions,
		notifications: notifications,
	}
}

// doRequest performs a request as the given user against the fixture router
func (f *routerFixture) doRequest(t *testing.T, method, path, user string, body interface{}, groups ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set(headerUser, user)
		req.Header.Set(headerEmail, user+"@example.org")
		if len(groups) > 0 {
			req.Header.Set(headerGroups, strings.Join(groups, ","))
		}
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
