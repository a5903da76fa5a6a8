package postgres

import (
	"context"
	"testing"

	"github.com/jamboree26/notifications/internal/entities"
)

func TestTenantRepository_CreateAndGet(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := NewPostgresTenantRepository(db)
	ctx := context.Background()

	t.Run("create and read back", func(t *testing.T) {
		tenant := &entities.Tenant{
			ID:            "tenant1",
			Name:          "Tenant One",
			Description:   "First test tenant",
			DefaultLocale: "sv",
			Settings:      map[string]string{"theme": "green"},
			AdminRoles:    []string{"staff"},
		}

		if err := repo.Create(ctx, tenant); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		got, err := repo.Get(ctx, "tenant1")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got == nil {
			t.Fatal("Expected tenant, got nil")
		}
		if got.Name != "Tenant One" {
			t.Errorf("Name = %q, want %q", got.Name, "Tenant One")
		}
		if got.Settings["theme"] != "green" {
			t.Errorf("Settings = %v, want theme=green", got.Settings)
		}
		if len(got.AdminRoles) != 1 || got.AdminRoles[0] != "staff" {
			t.Errorf("AdminRoles = %v, want [staff]", got.AdminRoles)
		}
	})

	t.Run("get unknown tenant returns nil", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil, got %+v", got)
		}
	})

	t.Run("invalid tenant rejected", func(t *testing.T) {
		err := repo.Create(ctx, &entities.Tenant{ID: "Bad ID", Name: "x"})
		if err == nil {
			t.Fatal("Expected validation error, got nil")
		}
	})
}

func TestTenantRepository_List(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := NewPostgresTenantRepository(db)
	ctx := context.Background()

	for _, id := range []string{"tenant-a", "tenant-b"} {
		if err := repo.Create(ctx, &entities.Tenant{ID: id, Name: id}); err != nil {
			t.Fatalf("Failed to create tenant: %v", err)
		}
	}

	tenants, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("Expected 2 tenants, got %d", len(tenants))
	}
}

func TestTenantRepository_UpdateAndDelete(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := NewPostgresTenantRepository(db)
	ctx := context.Background()

	tenant := &entities.Tenant{ID: "tenant1", Name: "Before"}
	if err := repo.Create(ctx, tenant); err != nil {
		t.Fatalf("Failed to create tenant: %v", err)
	}

	t.Run("update", func(t *testing.T) {
		tenant.Name = "After"
		tenant.AdminRoles = []string{"it"}
		if err := repo.Update(ctx, tenant); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		got, _ := repo.Get(ctx, "tenant1")
		if got.Name != "After" {
			t.Errorf("Name = %q, want %q", got.Name, "After")
		}
	})

	t.Run("update unknown tenant fails", func(t *testing.T) {
		err := repo.Update(ctx, &entities.Tenant{ID: "missing", Name: "x"})
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "tenant1"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		got, _ := repo.Get(ctx, "tenant1")
		if got != nil {
			t.Errorf("Expected tenant gone, got %+v", got)
		}
	})

	t.Run("delete unknown tenant fails", func(t *testing.T) {
		if err := repo.Delete(ctx, "tenant1"); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}
