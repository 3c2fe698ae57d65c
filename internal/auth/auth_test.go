package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/config"
)

func TestPrincipalExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if (Principal{}).Expired(now) {
		t.Fatalf("zero ExpiresAt must not expire")
	}
	if !(Principal{ExpiresAt: now}).Expired(now) {
		t.Fatalf("ExpiresAt == now should be expired")
	}
	if (Principal{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("future ExpiresAt should not be expired")
	}
}

func TestExpiresAtFrom(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := ExpiresAtFrom(now, 3600); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("ExpiresAtFrom = %v", got)
	}
	if got := ExpiresAtFrom(now, 0); !got.IsZero() {
		t.Fatalf("ExpiresAtFrom(0) = %v, want zero", got)
	}
}

func TestNewSessionManagerCookieSettings(t *testing.T) {
	t.Parallel()

	sm := NewSessionManager(config.Config{SessionLifetime: 2 * time.Hour, AuthCookieSecure: true})
	if sm.Lifetime != 2*time.Hour {
		t.Fatalf("Lifetime = %v", sm.Lifetime)
	}
	if sm.Cookie.Name != sessionCookieName || !sm.Cookie.HttpOnly || !sm.Cookie.Secure {
		t.Fatalf("unexpected cookie %+v", sm.Cookie)
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v", sm.Cookie.SameSite)
	}
}

func TestOpenSessionStoreMemory(t *testing.T) {
	t.Parallel()

	store, err := OpenSessionStore(context.Background(), config.Config{SessionStore: config.SessionStoreMemory})
	if err != nil {
		t.Fatalf("OpenSessionStore error: %v", err)
	}
	defer store.Close()
	if store.Manager == nil || store.pool != nil {
		t.Fatalf("unexpected store %+v", store)
	}
}
