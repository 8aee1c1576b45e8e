// Package session issues and verifies signed session tokens carried in
// an HTTP cookie. The server holds only the signing secret; all session
// state lives in the token itself, so tampering with the uid or
// username fails signature verification.
package session

import (
	"errors"
	"net/http"
	"time"

	"sheetdrop/internal/errs"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the session token travels in.
const CookieName = "sheetdrop_session"

// Claims is the authenticated identity embedded in a session token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a server-held secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager constructs a session manager. The secret must be
// unpredictable; ttl bounds how long an issued token stays valid.
func NewManager(secret []byte, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: secret, ttl: ttl, secure: secure}
}

// Issue creates a signed HS256 token asserting the given identity.
func (m *Manager) Issue(userID int64, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	return signed, exp, err
}

// Verify parses a token, checking signature, algorithm, and expiry.
func (m *Manager) Verify(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

// FromRequest extracts the authenticated identity from the request's
// session cookie. A missing, tampered, or expired cookie yields
// errs.ErrAuthRequired; the caller decides how to present it.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, errs.ErrAuthRequired
		}
		return nil, err
	}
	claims, err := m.Verify(c.Value)
	if err != nil {
		return nil, errs.ErrAuthRequired
	}
	return claims, nil
}

// SetCookie installs the session token on the response, replacing any
// prior token held by the client.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// ClearCookie logs the client out by expiring the session cookie.
// Clearing an already-anonymous client is a no-op.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}
