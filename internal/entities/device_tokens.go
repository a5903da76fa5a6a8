package entities

import (
	"fmt"
	"sort"
	"time"
)

// DeviceTokens represents the FCM registration tokens of one user's devices
// within a tenant
// Key format: user:tenant
type DeviceTokens struct {
	ID        string
	TenantID  string
	UserID    string
	Tokens    []string
	UpdatedAt time.Time
}

// NewDeviceTokens creates a token record with its canonical id
func NewDeviceTokens(tenantID, userID string, tokens []string) *DeviceTokens {
	return &DeviceTokens{
		ID:        DeviceTokensID(tenantID, userID),
		TenantID:  tenantID,
		UserID:    userID,
		Tokens:    dedupe(tokens),
		UpdatedAt: time.Now().UTC(),
	}
}

// DeviceTokensID returns the canonical token record key: user:tenant
func DeviceTokensID(tenantID, userID string) string {
	return fmt.Sprintf("%s:%s", userID, tenantID)
}

// Validate checks if the token record is valid
func (d *DeviceTokens) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("device tokens id is required")
	}
	if err := ValidateID(d.TenantID); err != nil {
		return fmt.Errorf("device tokens tenant: %w", err)
	}
	if d.UserID == "" {
		return fmt.Errorf("device tokens user id is required")
	}
	if len(d.Tokens) == 0 {
		return fmt.Errorf("at least one device token is required")
	}
	for _, tok := range d.Tokens {
		if tok == "" {
			return fmt.Errorf("device token cannot be empty")
		}
	}
	return nil
}

// Merge unions the given tokens into the record.
// Returns false when every token was already present, so callers can skip
// the write.
func (d *DeviceTokens) Merge(tokens []string) bool {
	existing := make(map[string]struct{}, len(d.Tokens))
	for _, tok := range d.Tokens {
		existing[tok] = struct{}{}
	}

	added := false
	for _, tok := range tokens {
		if _, ok := existing[tok]; !ok {
			existing[tok] = struct{}{}
			added = true
		}
	}
	if !added {
		return false
	}

	merged := make([]string, 0, len(existing))
	for tok := range existing {
		merged = append(merged, tok)
	}
	sort.Strings(merged)
	d.Tokens = merged
	d.UpdatedAt = time.Now().UTC()
	return true
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		result = append(result, tok)
	}
	return result
}
