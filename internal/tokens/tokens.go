package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/pkg/middleware"
)

// ErrTokenInvalid covers every verification failure: bad signature, malformed
// input, expiry, missing subject. Callers never learn which one occurred.
var ErrTokenInvalid = errors.New("invalid token")

// ErrEmptySecret is returned by NewManager when no signing key is configured.
var ErrEmptySecret = errors.New("token signing secret is empty")

// Claims is the JWT payload. Subject carries the account id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager. now may be nil, in which case time.Now is used.
func NewManager(secret string, ttl time.Duration, now func() time.Time) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue creates a signed token for the account.
func (m *Manager) Issue(a *models.Account) (string, error) {
	now := m.now()
	claims := Claims{
		Username: a.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks raw and returns the principal it was issued for.
func (m *Manager) Verify(_ context.Context, raw string) (middleware.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.Subject == "" {
		return middleware.Principal{}, ErrTokenInvalid
	}
	return middleware.Principal{UserID: claims.Subject, Username: claims.Username}, nil
}
