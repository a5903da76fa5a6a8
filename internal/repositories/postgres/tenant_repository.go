package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	db *sql.DB
}

// NewPostgresTenantRepository creates a new PostgreSQL tenant repository
func NewPostgresTenantRepository(db *sql.DB) repositories.TenantRepository {
	return &PostgresTenantRepository{db: db}
}

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	settings, err := json.Marshal(settingsOrEmpty(tenant.Settings))
	if err != nil {
		return fmt.Errorf("failed to marshal tenant settings: %w", err)
	}

	query := `
		INSERT INTO tenants (id, name, description, default_locale, settings, admin_roles, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	createdAt := tenant.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Description,
		tenant.DefaultLocale,
		settings,
		pq.Array(tenant.AdminRoles),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// Get retrieves a tenant by id
func (r *PostgresTenantRepository) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	query := `
		SELECT id, name, description, default_locale, settings, admin_roles, created_at
		FROM tenants
		WHERE id = $1
	`
	tenant, err := scanTenant(r.db.QueryRowContext(ctx, query, tenantID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// List retrieves all tenants
func (r *PostgresTenantRepository) List(ctx context.Context) ([]*entities.Tenant, error) {
	query := `
		SELECT id, name, description, default_locale, settings, admin_roles, created_at
		FROM tenants
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*entities.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}

// Update updates a tenant's mutable fields
func (r *PostgresTenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}

	settings, err := json.Marshal(settingsOrEmpty(tenant.Settings))
	if err != nil {
		return fmt.Errorf("failed to marshal tenant settings: %w", err)
	}

	query := `
		UPDATE tenants
		SET name = $1, description = $2, default_locale = $3, settings = $4, admin_roles = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		tenant.Name,
		tenant.Description,
		tenant.DefaultLocale,
		settings,
		pq.Array(tenant.AdminRoles),
		tenant.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tenant not found: %s", tenant.ID)
	}
	return nil
}

// Delete deletes a tenant; channels, subscriptions and tokens cascade
func (r *PostgresTenantRepository) Delete(ctx context.Context, tenantID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tenant not found: %s", tenantID)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTenant(row rowScanner) (*entities.Tenant, error) {
	var tenant entities.Tenant
	var settings []byte
	var adminRoles pq.StringArray

	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Description,
		&tenant.DefaultLocale,
		&settings,
		&adminRoles,
		&tenant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &tenant.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tenant settings: %w", err)
		}
	}
	tenant.AdminRoles = adminRoles
	return &tenant, nil
}

func settingsOrEmpty(settings map[string]string) map[string]string {
	if settings == nil {
		return map[string]string{}
	}
	return settings
}
