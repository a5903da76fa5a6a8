package repositories

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *entities.Tenant) error

	// Get retrieves a tenant by id, returns nil when not found
	Get(ctx context.Context, tenantID string) (*entities.Tenant, error)

	// List retrieves all tenants
	List(ctx context.Context) ([]*entities.Tenant, error)

	// Update updates a tenant's mutable fields
	Update(ctx context.Context, tenant *entities.Tenant) error

	// Delete deletes a tenant and everything scoped to it
	Delete(ctx context.Context, tenantID string) error
}
