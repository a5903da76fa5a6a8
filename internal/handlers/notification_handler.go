package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/services"
)

// NotificationHandler serves the publish and history endpoints
type NotificationHandler struct {
	tenants       services.TenantServiceInterface
	notifications services.NotificationServiceInterface
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	tenants services.TenantServiceInterface,
	notifications services.NotificationServiceInterface,
) *NotificationHandler {
	return &NotificationHandler{tenants: tenants, notifications: notifications}
}

type notificationCreateRequest struct {
	ChannelIDs           []string `json:"channel_ids"`
	IncludeChildChannels *bool    `json:"include_child_channels"`
	Title                string   `json:"title"`
	Body                 string   `json:"body"`
}

type directNotificationCreateRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type notificationResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ChannelID string    `json:"channel_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	SentBy    string    `json:"sent_by,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

func newNotificationResponse(n *entities.Notification) *notificationResponse {
	return &notificationResponse{
		ID:        n.ID,
		TenantID:  n.TenantID,
		ChannelID: n.ChannelID,
		Title:     n.Title,
		Body:      n.Body,
		SentBy:    n.SentBy,
		SentAt:    n.SentAt,
	}
}

// History handles GET /tenants/{tenantID}/notifications
func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	channelIDs := query["channel"]
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Limit must be a positive integer.")
			return
		}
		limit = parsed
	}

	user := UserFromContext(r.Context())
	notifications, err := h.notifications.History(r.Context(), tenantID, user.ID, channelIDs, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]*notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, newNotificationResponse(n))
	}
	respondJSON(w, http.StatusOK, response)
}

// Publish handles POST /tenants/{tenantID}/notifications
func (h *NotificationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	if !requireTenantAdmin(w, r, h.tenants, tenantID) {
		return
	}

	var req notificationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	includeChildren := true
	if req.IncludeChildChannels != nil {
		includeChildren = *req.IncludeChildChannels
	}

	user := UserFromContext(r.Context())
	notification, err := h.notifications.Publish(
		r.Context(), tenantID, req.ChannelIDs, includeChildren, req.Title, req.Body, user.String())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, newNotificationResponse(notification))
}

// PublishDirect handles POST /tenants/{tenantID}/notifications/direct
func (h *NotificationHandler) PublishDirect(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	if !requireTenantAdmin(w, r, h.tenants, tenantID) {
		return
	}

	var req directNotificationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user := UserFromContext(r.Context())
	notification, err := h.notifications.PublishDirect(
		r.Context(), tenantID, req.UserID, req.Title, req.Body, user.String())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, newNotificationResponse(notification))
}
