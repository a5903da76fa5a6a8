package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/repositories"
)

// PostgresChannelRepository implements ChannelRepository using PostgreSQL
type PostgresChannelRepository struct {
	db *sql.DB
}

// NewPostgresChannelRepository creates a new PostgreSQL channel repository
func NewPostgresChannelRepository(db *sql.DB) repositories.ChannelRepository {
	return &PostgresChannelRepository{db: db}
}

// Create creates a new channel
func (r *PostgresChannelRepository) Create(ctx context.Context, channel *entities.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO channels (id, tenant_id, name, description, is_open, is_private, parent_id, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	updatedAt := channel.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		channel.ID,
		channel.TenantID,
		channel.Name,
		channel.Description,
		channel.IsOpen,
		channel.IsPrivate,
		nullableID(channel.ParentID),
		updatedAt,
		channel.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// Get retrieves a channel by id
func (r *PostgresChannelRepository) Get(ctx context.Context, channelID string) (*entities.Channel, error) {
	query := `
		SELECT id, tenant_id, name, description, is_open, is_private, parent_id, updated_at, updated_by
		FROM channels
		WHERE id = $1
	`
	channel, err := scanChannel(r.db.QueryRowContext(ctx, query, channelID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return channel, nil
}

// ListByTenant retrieves all channels for a tenant
func (r *PostgresChannelRepository) ListByTenant(ctx context.Context, tenantID string, includePrivate bool) ([]*entities.Channel, error) {
	query := `
		SELECT id, tenant_id, name, description, is_open, is_private, parent_id, updated_at, updated_by
		FROM channels
		WHERE tenant_id = $1 AND (is_private = false OR $2)
		ORDER BY id
	`
	return r.queryChannels(ctx, query, tenantID, includePrivate)
}

// ListChildren retrieves the direct children of a channel
func (r *PostgresChannelRepository) ListChildren(ctx context.Context, channelID string) ([]*entities.Channel, error) {
	query := `
		SELECT id, tenant_id, name, description, is_open, is_private, parent_id, updated_at, updated_by
		FROM channels
		WHERE parent_id = $1
		ORDER BY id
	`
	return r.queryChannels(ctx, query, channelID)
}

// Update updates a channel's mutable fields
func (r *PostgresChannelRepository) Update(ctx context.Context, channel *entities.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE channels
		SET name = $1, description = $2, is_open = $3, is_private = $4, parent_id = $5, updated_at = $6, updated_by = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		channel.Name,
		channel.Description,
		channel.IsOpen,
		channel.IsPrivate,
		nullableID(channel.ParentID),
		time.Now().UTC(),
		channel.UpdatedBy,
		channel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("channel not found: %s", channel.ID)
	}
	return nil
}

// Delete deletes a channel
func (r *PostgresChannelRepository) Delete(ctx context.Context, channelID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("channel not found: %s", channelID)
	}
	return nil
}

func (r *PostgresChannelRepository) queryChannels(ctx context.Context, query string, args ...interface{}) ([]*entities.Channel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []*entities.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}
	return channels, nil
}

func scanChannel(row rowScanner) (*entities.Channel, error) {
	var channel entities.Channel
	var parentID sql.NullString

	err := row.Scan(
		&channel.ID,
		&channel.TenantID,
		&channel.Name,
		&channel.Description,
		&channel.IsOpen,
		&channel.IsPrivate,
		&parentID,
		&channel.UpdatedAt,
		&channel.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	channel.ParentID = parentID.String
	return &channel, nil
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
