package services

import (
	"context"
	"fmt"
	"log"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// TenantServiceInterface defines the interface for tenant operations
type TenantServiceInterface interface {
	List(ctx context.Context) ([]*entities.Tenant, error)
	Get(ctx context.Context, tenantID string) (*entities.Tenant, error)
	EnsureDefault(ctx context.Context, tenantID, name string) error
	IsAdmin(ctx context.Context, tenantID string, groups []string) (bool, error)
	RequireAdmin(ctx context.Context, tenantID string, groups []string) error
}

// TenantService handles tenant operations
type TenantService struct {
	tenantRepo repositories.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo repositories.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// List returns all tenants
func (s *TenantService) List(ctx context.Context) ([]*entities.Tenant, error) {
	tenants, err := s.tenantRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// Get returns a tenant by id
func (s *TenantService) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required: %w", ErrInvalidInput)
	}

	tenant, err := s.tenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %q: %w", tenantID, ErrNotFound)
	}
	return tenant, nil
}

// EnsureDefault seeds the configured default tenant when it does not exist.
// Safe to call on every startup.
func (s *TenantService) EnsureDefault(ctx context.Context, tenantID, name string) error {
	tenant, err := s.tenantRepo.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to check default tenant: %w", err)
	}
	if tenant != nil {
		return nil
	}

	log.Printf("Seeding default tenant %q", tenantID)
	defaultTenant := &entities.Tenant{
		ID:            tenantID,
		Name:          name,
		Description:   "Default tenant seeded from configuration.",
		DefaultLocale: "sv",
	}
	if err := s.tenantRepo.Create(ctx, defaultTenant); err != nil {
		return fmt.Errorf("failed to seed default tenant: %w", err)
	}
	return nil
}

// IsAdmin reports whether the given group memberships grant admin on the
// tenant
func (s *TenantService) IsAdmin(ctx context.Context, tenantID string, groups []string) (bool, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return tenant.IsAdmin(groups), nil
}

// RequireAdmin returns ErrForbidden when the group memberships do not grant
// admin on the tenant
func (s *TenantService) RequireAdmin(ctx context.Context, tenantID string, groups []string) error {
	admin, err := s.IsAdmin(ctx, tenantID, groups)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("tenant %q: %w", tenantID, ErrForbidden)
	}
	return nil
}
