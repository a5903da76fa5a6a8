package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/services"
)

// TenantHandler serves the tenant read endpoints
type TenantHandler struct {
	tenants services.TenantServiceInterface
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants services.TenantServiceInterface) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

type tenantResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	DefaultLocale string            `json:"default_locale"`
	Settings      map[string]string `json:"settings,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newTenantResponse(t *entities.Tenant) *tenantResponse {
	return &tenantResponse{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		DefaultLocale: t.DefaultLocale,
		Settings:      t.Settings,
		CreatedAt:     t.CreatedAt,
	}
}

// List handles GET /tenants
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]*tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		response = append(response, newTenantResponse(t))
	}
	respondJSON(w, http.StatusOK, response)
}

// Get handles GET /tenants/{tenantID}
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newTenantResponse(tenant))
}
