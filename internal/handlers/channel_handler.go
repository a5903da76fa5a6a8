package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/services"
)

// ChannelHandler serves the channel management endpoints
type ChannelHandler struct {
	tenants  services.TenantServiceInterface
	channels services.ChannelServiceInterface
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(tenants services.TenantServiceInterface, channels services.ChannelServiceInterface) *ChannelHandler {
	return &ChannelHandler{tenants: tenants, channels: channels}
}

type channelResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsOpen      bool      `json:"is_open"`
	IsPrivate   bool      `json:"is_private"`
	ParentID    string    `json:"parent_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
}

func newChannelResponse(c *entities.Channel) *channelResponse {
	return &channelResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		Name:        c.Name,
		Description: c.Description,
		IsOpen:      c.IsOpen,
		IsPrivate:   c.IsPrivate,
		ParentID:    c.ParentID,
		UpdatedAt:   c.UpdatedAt,
		UpdatedBy:   c.UpdatedBy,
	}
}

type channelCreateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsOpen      *bool  `json:"is_open"`
	IsPrivate   bool   `json:"is_private"`
	ParentID    string `json:"parent_id"`
}

type channelUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsOpen      *bool   `json:"is_open"`
	IsPrivate   *bool   `json:"is_private"`
	ParentID    *string `json:"parent_id"`
}

// requireTenantAdmin checks the caller's groups against the tenant's admin
// roles, writing the error response when the check fails.
func requireTenantAdmin(w http.ResponseWriter, r *http.Request, tenants services.TenantServiceInterface, tenantID string) bool {
	user := UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required.")
		return false
	}

	if err := tenants.RequireAdmin(r.Context(), tenantID, user.Groups); err != nil {
		respondServiceError(w, err)
		return false
	}
	return true
}

// List handles GET /tenants/{tenantID}/channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}

	includePrivate := false
	if query := r.URL.Query(); query.Has("include_private") {
		if value := query.Get("include_private"); value == "" {
			includePrivate = true
		} else if parsed, err := strconv.ParseBool(value); err == nil {
			includePrivate = parsed
		}
	}

	channels, err := h.channels.List(r.Context(), tenantID, includePrivate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]*channelResponse, 0, len(channels))
	for _, c := range channels {
		response = append(response, newChannelResponse(c))
	}
	respondJSON(w, http.StatusOK, response)
}

// Create handles POST /tenants/{tenantID}/channels
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	if !requireTenantAdmin(w, r, h.tenants, tenantID) {
		return
	}

	var req channelCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	channel := &entities.Channel{
		ID:          req.ID,
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		IsOpen:      true,
		IsPrivate:   req.IsPrivate,
		ParentID:    req.ParentID,
		UpdatedBy:   UserFromContext(r.Context()).String(),
	}
	if req.IsOpen != nil {
		channel.IsOpen = *req.IsOpen
	}

	created, err := h.channels.Create(r.Context(), channel)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newChannelResponse(created))
}

// Update handles PATCH /tenants/{tenantID}/channels/{channelID}
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	channelID := chi.URLParam(r, "channelID")
	if !requireTenantAdmin(w, r, h.tenants, tenantID) {
		return
	}

	var req channelUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	channel, err := h.channels.Get(r.Context(), tenantID, channelID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.IsOpen != nil {
		channel.IsOpen = *req.IsOpen
	}
	if req.IsPrivate != nil {
		channel.IsPrivate = *req.IsPrivate
	}
	if req.ParentID != nil {
		channel.ParentID = *req.ParentID
	}
	channel.UpdatedBy = UserFromContext(r.Context()).String()

	updated, err := h.channels.Update(r.Context(), channel)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newChannelResponse(updated))
}

// Delete handles DELETE /tenants/{tenantID}/channels/{channelID}
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	channelID := chi.URLParam(r, "channelID")
	if !requireTenantAdmin(w, r, h.tenants, tenantID) {
		return
	}

	if err := h.channels.Delete(r.Context(), tenantID, channelID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
