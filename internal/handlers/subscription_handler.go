package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/services"
)

// SubscriptionHandler serves the device token and subscription endpoints
type SubscriptionHandler struct {
	tenants       services.TenantServiceInterface
	channels      services.ChannelServiceInterface
	subscriptions services.SubscriptionServiceInterface
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(
	tenants services.TenantServiceInterface,
	channels services.ChannelServiceInterface,
	subscriptions services.SubscriptionServiceInterface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		tenants:       tenants,
		channels:      channels,
		subscriptions: subscriptions,
	}
}

type tokenCreateRequest struct {
	DeviceTokens []string `json:"device_tokens"`
}

type subscriptionResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newSubscriptionResponse(s *entities.Subscription) *subscriptionResponse {
	return &subscriptionResponse{
		ID:        s.ID,
		TenantID:  s.TenantID,
		ChannelID: s.ChannelID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}

// SaveTokens handles POST /tenants/{tenantID}/tokens
func (h *SubscriptionHandler) SaveTokens(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}

	var req tokenCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user := UserFromContext(r.Context())
	if err := h.subscriptions.SaveTokens(r.Context(), tenantID, user.ID, req.DeviceTokens); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListMine handles GET /tenants/{tenantID}/subscriptions/me
func (h *SubscriptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}

	user := UserFromContext(r.Context())
	subs, err := h.subscriptions.ListMine(r.Context(), tenantID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]*subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		response = append(response, newSubscriptionResponse(s))
	}
	respondJSON(w, http.StatusOK, response)
}

// Subscribe handles POST /tenants/{tenantID}/channels/{channelID}/subscriptions
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	channelID := chi.URLParam(r, "channelID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	if _, err := h.channels.Get(r.Context(), tenantID, channelID); err != nil {
		respondServiceError(w, err)
		return
	}

	user := UserFromContext(r.Context())
	sub, err := h.subscriptions.Subscribe(r.Context(), tenantID, channelID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newSubscriptionResponse(sub))
}

// Unsubscribe handles DELETE /tenants/{tenantID}/channels/{channelID}/subscriptions
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	channelID := chi.URLParam(r, "channelID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}

	user := UserFromContext(r.Context())
	if err := h.subscriptions.Unsubscribe(r.Context(), tenantID, channelID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
