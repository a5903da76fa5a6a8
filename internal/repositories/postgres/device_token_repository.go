package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// PostgresDeviceTokenRepository implements DeviceTokenRepository using PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *sql.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgreSQL device token repository
func NewPostgresDeviceTokenRepository(db *sql.DB) repositories.DeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// Upsert inserts or replaces a user's token record
func (r *PostgresDeviceTokenRepository) Upsert(ctx context.Context, rec *entities.DeviceTokens) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO device_tokens (id, tenant_id, user_id, tokens, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = EXCLUDED.updated_at
	`
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.TenantID, rec.UserID, pq.Array(rec.Tokens), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert device tokens: %w", err)
	}
	return nil
}

// Get retrieves a user's token record within a tenant
func (r *PostgresDeviceTokenRepository) Get(ctx context.Context, tenantID, userID string) (*entities.DeviceTokens, error) {
	query := `
		SELECT id, tenant_id, user_id, tokens, updated_at
		FROM device_tokens
		WHERE id = $1
	`
	rec, err := scanDeviceTokens(r.db.QueryRowContext(ctx, query, entities.DeviceTokensID(tenantID, userID)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	return rec, nil
}

// GetByUsers retrieves the token records of several users at once
func (r *PostgresDeviceTokenRepository) GetByUsers(ctx context.Context, tenantID string, userIDs []string) ([]*entities.DeviceTokens, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		ids = append(ids, entities.DeviceTokensID(tenantID, userID))
	}

	query := `
		SELECT id, tenant_id, user_id, tokens, updated_at
		FROM device_tokens
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var recs []*entities.DeviceTokens
	for rows.Next() {
		rec, err := scanDeviceTokens(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device tokens: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device tokens: %w", err)
	}
	return recs, nil
}

// RemoveTokens removes the given tokens from every record in a tenant.
// Records left without tokens are deleted.
func (r *PostgresDeviceTokenRepository) RemoveTokens(ctx context.Context, tenantID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	query := `
		UPDATE device_tokens
		SET tokens = (
			SELECT COALESCE(array_agg(t), '{}') FROM unnest(tokens) AS t WHERE t <> ALL($2)
		), updated_at = $3
		WHERE tenant_id = $1 AND tokens && $2
	`
	if _, err := r.db.ExecContext(ctx, query, tenantID, pq.Array(tokens), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to remove device tokens: %w", err)
	}

	cleanup := `DELETE FROM device_tokens WHERE tenant_id = $1 AND tokens = '{}'`
	if _, err := r.db.ExecContext(ctx, cleanup, tenantID); err != nil {
		return fmt.Errorf("failed to delete empty token records: %w", err)
	}
	return nil
}

// Delete deletes a user's token record within a tenant
func (r *PostgresDeviceTokenRepository) Delete(ctx context.Context, tenantID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE id = $1`, entities.DeviceTokensID(tenantID, userID))
	if err != nil {
		return fmt.Errorf("failed to delete device tokens: %w", err)
	}
	return nil
}

func scanDeviceTokens(row rowScanner) (*entities.DeviceTokens, error) {
	var rec entities.DeviceTokens
	var tokens pq.StringArray

	err := row.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &tokens, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Tokens = tokens
	return &rec, nil
}
