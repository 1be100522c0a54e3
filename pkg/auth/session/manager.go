package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/salon-retail/pkg/auth"
	"github.com/angelmondragon/salon-retail/pkg/config"
)

// HeaderName carries the session token for non-browser clients.
const HeaderName = "X-Session-Token"

// Session is the cart session bound to one request.
type Session struct {
	ID    string
	Token string
	// Fresh is set when the request carried no usable token and a new session was minted.
	Fresh bool
}

// Manager resolves the cart session from a request and hands out new ones.
type Manager struct {
	cfg config.SessionConfig
	now func() time.Time
}

// NewManager constructs a stateless session manager from the session config.
func NewManager(cfg config.SessionConfig) (*Manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		return nil, fmt.Errorf("session cookie name is required")
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

// Resolve returns the session named by the request's token. A missing,
// expired or tampered token yields a freshly minted session.
func (m *Manager) Resolve(r *http.Request) (Session, error) {
	if raw := m.tokenFromRequest(r); raw != "" {
		if claims, err := auth.ParseSessionToken(m.cfg, raw); err == nil {
			return Session{ID: claims.SessionID, Token: raw}, nil
		}
	}
	return m.Issue()
}

// Issue mints a new session.
func (m *Manager) Issue() (Session, error) {
	id := auth.NewSessionID()
	token, err := auth.MintSessionToken(m.cfg, m.now(), id)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: id, Token: token, Fresh: true}, nil
}

// Write hands a fresh session's token back to the client as a cookie and header.
func (m *Manager) Write(w http.ResponseWriter, s Session) {
	if !s.Fresh || s.Token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    s.Token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(HeaderName, s.Token)
}

func (m *Manager) tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderName)); token != "" {
		return token
	}
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
