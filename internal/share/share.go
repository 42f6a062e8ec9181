// Package share issues and verifies read-only links to a stored bill.
package share

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/patungan/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired share token")
	ErrNoSecret     = errors.New("share secret not configured")
)

const issuer = "patungan"

// Manager signs share tokens with HS256.
type Manager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// Claims identify the shared bill by its key.
type Claims struct {
	Owner string          `json:"own"`
	Kind  models.BillKind `json:"knd"`
	Title string          `json:"ttl"`
	jwt.RegisteredClaims
}

// NewManager creates a manager. Tokens stay valid for ttl after issue.
func NewManager(secretKey string, ttl time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue creates a token for the bill identified by key.
func (m *Manager) Issue(key models.BillKey) (string, time.Time, error) {
	if len(m.secretKey) == 0 {
		return "", time.Time{}, ErrNoSecret
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := &Claims{
		Owner: key.Owner,
		Kind:  key.Kind,
		Title: key.Title,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}

	return tokenString, expires, nil
}

// Verify parses a token and returns the key of the shared bill.
func (m *Manager) Verify(tokenString string) (models.BillKey, error) {
	if len(m.secretKey) == 0 {
		return models.BillKey{}, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.BillKey{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.BillKey{}, ErrInvalidToken
	}
	if _, err := models.ParseBillKind(string(claims.Kind)); err != nil || claims.Owner == "" {
		return models.BillKey{}, ErrInvalidToken
	}

	return models.BillKey{Owner: claims.Owner, Kind: claims.Kind, Title: claims.Title}, nil
}
