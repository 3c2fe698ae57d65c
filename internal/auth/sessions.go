package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionCookieName = "aegis_session"

// SessionStore is a configured session manager and whatever it holds open.
type SessionStore struct {
	Manager *scs.SessionManager
	pool    *pgxpool.Pool
	pgStore *pgxstore.PostgresStore
}

// Close stops store cleanup and releases the database pool, if any.
func (s *SessionStore) Close() {
	if s == nil {
		return
	}
	if s.pgStore != nil {
		s.pgStore.StopCleanup()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// NewSessionManager returns a session manager with the dashboard's cookie
// settings. The default store keeps sessions in memory.
func NewSessionManager(cfg config.Config) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 12 * time.Hour
	}
	sm.Cookie.Name = sessionCookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.AuthCookieSecure
	return sm
}

// OpenSessionStore builds the session manager for cfg.SessionStore. The
// postgres store needs the sessions table created by the migrate command.
func OpenSessionStore(ctx context.Context, cfg config.Config) (*SessionStore, error) {
	sm := NewSessionManager(cfg)
	if cfg.SessionStore != config.SessionStorePostgres {
		return &SessionStore{Manager: sm}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}
	store := pgxstore.New(pool)
	sm.Store = store
	return &SessionStore{Manager: sm, pool: pool, pgStore: store}, nil
}
