package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/lib/pq"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/infrastructure/config"
	"github.com/jamboree26/notifications/internal/infrastructure/database"
)

// SetupTestDB creates a test database connection and runs migrations
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Initialize test config
	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("Skipping: test database not configured: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Skipf("Skipping: test database not reachable: %v", err)
	}

	// Run migrations
	if err := pg.RunMigrations("../../../internal/infrastructure/database/migrations/postgres"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pg.DB
}

// CleanupTestDB closes the database connection and cleans up test data
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Clean up all tables; tenants cascade to the rest
	tables := []string{"notifications", "device_tokens", "subscriptions", "channels", "tenants"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("Warning: Failed to clean up table %s: %v", table, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// seedTenant inserts a tenant for tests that need foreign keys satisfied
func seedTenant(t *testing.T, db *sql.DB, tenantID string) {
	t.Helper()

	repo := NewPostgresTenantRepository(db)
	tenant := &entities.Tenant{ID: tenantID, Name: "Test tenant", DefaultLocale: "sv"}
	if err := repo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("Failed to seed tenant %s: %v", tenantID, err)
	}
}

// seedChannel inserts a channel for tests that need foreign keys satisfied
func seedChannel(t *testing.T, db *sql.DB, tenantID, channelID string) {
	t.Helper()

	repo := NewPostgresChannelRepository(db)
	channel := &entities.Channel{ID: channelID, TenantID: tenantID, Name: "Test channel"}
	if err := repo.Create(context.Background(), channel); err != nil {
		t.Fatalf("Failed to seed channel %s: %v", channelID, err)
	}
}
