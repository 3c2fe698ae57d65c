// Package auth holds the signed-in principal and the session store wiring.
package auth

import (
	"strings"
	"time"
)

const (
	SessionKeyToken     = "aegis_access_token"
	SessionKeyTenantID  = "aegis_tenant_id"
	SessionKeyEmail     = "aegis_email"
	SessionKeyName      = "aegis_name"
	SessionKeyExpiresAt = "aegis_token_expires_at"
)

// Principal is the Config API identity stored in the session.
type Principal struct {
	Token     string
	TenantID  string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the token lifetime has passed. A zero ExpiresAt never expires.
func (p Principal) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// ExpiresAtFrom converts the API's expires_in seconds into an absolute time.
func ExpiresAtFrom(now time.Time, expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(expiresIn) * time.Second)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
