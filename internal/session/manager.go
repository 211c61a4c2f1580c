package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

// userResolver validates a bearer token against the backend.
type userResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Manager owns the admin session lifecycle. It is the only writer of session
// state: handlers go through Issue, Revalidate and Destroy.
type Manager struct {
	store    Store
	resolver userResolver
	cfg      config.SessionConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager constructs a session manager.
func NewManager(store Store, resolver userResolver, cfg config.SessionConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, resolver: resolver, cfg: cfg, logger: logger, now: time.Now}
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue creates a session for a successful login, persists token and user
// together, and sets the signed cookie.
func (m *Manager) Issue(c *gin.Context, token string, user models.User) (*Session, error) {
	now := m.now().UTC()
	sess := &Session{
		ID:          uuid.NewString(),
		Token:       token,
		User:        user,
		CreatedAt:   now,
		ValidatedAt: now,
	}

	if err := m.store.Put(c.Request.Context(), sess, m.cfg.TTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist session")
	}

	signed, err := m.signCookie(sess.ID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign session cookie")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, signed, int(m.cfg.TTL.Seconds()), "/", "", m.cfg.CookieSecure, true)
	return sess, nil
}

// Load resolves the session referenced by the request cookie. It returns an
// unauthorized error when the cookie is absent, tampered with, or expired.
func (m *Manager) Load(c *gin.Context) (*Session, error) {
	raw, err := c.Cookie(m.cfg.CookieName)
	if err != nil || raw == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no session")
	}

	id, err := m.parseCookie(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session cookie")
	}

	return m.store.Get(c.Request.Context(), id)
}

// Revalidate confirms the session's bearer token against the backend when
// the last check is older than the configured interval. A rejected token
// destroys the session.
func (m *Manager) Revalidate(c *gin.Context, sess *Session) (*Session, error) {
	if m.now().UTC().Sub(sess.ValidatedAt) < m.cfg.RevalidateInterval {
		return sess, nil
	}

	user, err := m.resolver.CurrentUser(c.Request.Context(), sess.Token)
	if err != nil {
		if appErrors.IsAuth(err) {
			m.Destroy(c, sess.ID)
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		// Backend trouble is not proof the token is bad; keep the session.
		m.logger.Warn("session revalidation skipped", zap.String("session_id", sess.ID), zap.Error(err))
		return sess, nil
	}

	sess.User = *user
	sess.ValidatedAt = m.now().UTC()
	if err := m.store.Put(c.Request.Context(), sess, m.cfg.TTL); err != nil {
		m.logger.Warn("session refresh persist failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return sess, nil
}

// Destroy clears the session record and cookie together. It never fails the
// caller: logout must succeed unconditionally.
func (m *Manager) Destroy(c *gin.Context, id string) {
	if id != "" {
		if err := m.store.Delete(c.Request.Context(), id); err != nil {
			m.logger.Warn("session delete failed", zap.String("session_id", id), zap.Error(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.cfg.CookieSecure, true)
}

func (m *Manager) signCookie(sessionID string, now time.Time) (string, error) {
	claims := cookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.CookieSecret))
}

func (m *Manager) parseCookie(raw string) (string, error) {
	var claims cookieClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.cfg.CookieSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("invalid session cookie")
	}
	return claims.SessionID, nil
}
