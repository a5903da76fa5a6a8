package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jamboree26/notifications/internal/services"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck() error
}

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	APIPrefix     string
	Tenants       services.TenantServiceInterface
	Channels      services.ChannelServiceInterface
	Subscriptions services.SubscriptionServiceInterface
	Notifications services.NotificationServiceInterface
	Health        HealthChecker

	// Middlewares applied to the API routes, metrics among them
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter assembles the HTTP routes
func NewRouter(cfg *RouterConfig) chi.Router {
	tenantHandler := NewTenantHandler(cfg.Tenants)
	channelHandler := NewChannelHandler(cfg.Tenants, cfg.Channels)
	subscriptionHandler := NewSubscriptionHandler(cfg.Tenants, cfg.Channels, cfg.Subscriptions)
	notificationHandler := NewNotificationHandler(cfg.Tenants, cfg.Notifications)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Notifications server is running"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health.HealthCheck(); err != nil {
				respondError(w, http.StatusServiceUnavailable, "Database unreachable.")
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route(apiPrefix(cfg.APIPrefix), func(api chi.Router) {
		for _, mw := range cfg.Middlewares {
			api.Use(mw)
		}
		api.Use(AuthMiddleware)

		api.Get("/tenants", tenantHandler.List)
		api.Route("/tenants/{tenantID}", func(t chi.Router) {
			t.Get("/", tenantHandler.Get)

			t.Get("/channels", channelHandler.List)
			t.Post("/channels", channelHandler.Create)
			t.Patch("/channels/{channelID}", channelHandler.Update)
			t.Delete("/channels/{channelID}", channelHandler.Delete)

			t.Post("/tokens", subscriptionHandler.SaveTokens)
			t.Get("/subscriptions/me", subscriptionHandler.ListMine)
			t.Post("/channels/{channelID}/subscriptions", subscriptionHandler.Subscribe)
			t.Delete("/channels/{channelID}/subscriptions", subscriptionHandler.Unsubscribe)

			t.Get("/notifications", notificationHandler.History)
			t.Post("/notifications", notificationHandler.Publish)
			t.Post("/notifications/direct", notificationHandler.PublishDirect)
		})
	})

	return r
}

func apiPrefix(prefix string) string {
	if prefix == "" {
		return "/api"
	}
	if prefix[0] != '/' {
		return "/" + prefix
	}
	return prefix
}
