// Package identity resolves the requesting user from a signed session token.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Defaults shared with the session issuer.
const (
	DefaultCookie = "token"
	DefaultTTL    = 7 * 24 * time.Hour
)

// Sentinel errors.
var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSecret     = errors.New("jwt secret is empty")
)

// Claims are the session token claims.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Option applies a configuration option to the Verifier.
type Option func(*Verifier)

// WithCookieName sets the cookie the token is read from.
func WithCookieName(name string) Option {
	return func(v *Verifier) {
		if name != "" {
			v.cookie = name
		}
	}
}

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(v *Verifier) {
		if ttl > 0 {
			v.ttl = ttl
		}
	}
}

// WithClock overrides the clock used to issue and validate tokens.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// Verifier issues and verifies HS256 session tokens.
type Verifier struct {
	secret []byte
	cookie string
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier creates a verifier for secret.
func NewVerifier(secret string, opts ...Option) (*Verifier, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	v := &Verifier{
		secret: []byte(secret),
		cookie: DefaultCookie,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Issue signs a token for user id with email.
func (v *Verifier) Issue(id, email string) (string, error) {
	now := v.now()
	claims := Claims{
		ID:    id,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns its claims.
func (v *Verifier) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// FromRequest reads the token from the session cookie, falling back to an
// Authorization bearer header, and returns the user id.
func (v *Verifier) FromRequest(r *http.Request) (string, error) {
	claims, err := v.Verify(v.tokenFrom(r))
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

// CookieName returns the session cookie name.
func (v *Verifier) CookieName() string { return v.cookie }

func (v *Verifier) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(v.cookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}
