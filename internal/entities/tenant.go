package entities

import (
	"fmt"
	"regexp"
	"time"
)

// idPattern is the allowed shape for tenant and channel identifiers.
// Identifiers appear in URLs and in push payloads, so they stay lowercase.
var idPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// ValidateID checks an identifier against the shared id pattern
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("id %q must match %s", id, idPattern.String())
	}
	return nil
}

// Tenant represents an organization that owns channels and subscriptions
// Example: the "jamboree26" tenant owns the event's notification channels
type Tenant struct {
	ID            string
	Name          string
	Description   string
	DefaultLocale string            // BCP 47-ish locale tag, defaults to "sv"
	Settings      map[string]string // Free-form tenant settings
	AdminRoles    []string          // Group names whose members may administer the tenant
	CreatedAt     time.Time
}

// Validate checks if the tenant is valid
func (t *Tenant) Validate() error {
	if err := ValidateID(t.ID); err != nil {
		return fmt.Errorf("tenant: %w", err)
	}
	if t.Name == "" {
		return fmt.Errorf("tenant name is required")
	}
	return nil
}

// IsAdmin reports whether any of the given groups grants admin on this tenant.
// A tenant with no declared admin roles is administered by any authenticated
// user, which matches the seeded default tenant's behavior.
func (t *Tenant) IsAdmin(groups []string) bool {
	if len(t.AdminRoles) == 0 {
		return true
	}
	for _, role := range t.AdminRoles {
		for _, g := range groups {
			if g == role {
				return true
			}
		}
	}
	return false
}
