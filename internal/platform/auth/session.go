package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "medisync_session"

const issuer = "medisync"

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionRevoked = errors.New("session has been signed out")
)

// Claims identify the signed-in user. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSession
	}
	return id, nil
}

// SessionConfig configures the session manager.
type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	SecureCookie bool
}

// SessionManager issues and verifies HS256-signed session tokens and keeps
// the revocation list used on logout.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoked *TokenRevocationStore
	now     func() time.Time
}

func NewSessionManager(cfg SessionConfig, revoked *TokenRevocationStore) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		secret:  cfg.Secret,
		ttl:     ttl,
		secure:  cfg.SecureCookie,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a new session for userID.
func (m *SessionManager) Issue(userID int64) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        ksuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, claims, nil
}

// Parse verifies signature, expiry and revocation.
func (m *SessionManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if m.revoked != nil && m.revoked.IsRevoked(claims.ID) {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Revoke signs the session out.
func (m *SessionManager) Revoke(claims *Claims) {
	if m.revoked == nil || claims == nil {
		return
	}
	uid, _ := claims.UserID()
	expires := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	m.revoked.Revoke(claims.ID, uid, expires)
}

// SetCookie writes the session cookie.
func (m *SessionManager) SetCookie(c echo.Context, token string, claims *Claims) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (m *SessionManager) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
