// Package auth handles admin login, bearer tokens and logout revocation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/institute-cms/internal/cache"
	"github.com/institute-cms/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRevokedToken       = errors.New("token has been revoked")
)

const revokedPrefix = "revoked:"

// Claims are the admin token claims. ID (jti) doubles as the editing session id.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and verifies admin tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	user     string
	hash     []byte
	denylist cache.Store
	now      func() time.Time
	log      zerolog.Logger
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// NewManager builds a Manager. A plaintext admin password is hashed once here.
func NewManager(cfg *config.AuthConfig, denylist cache.Store, log zerolog.Logger) (*Manager, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" {
		h, err := HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
		user:     cfg.AdminUser,
		hash:     []byte(hash),
		denylist: denylist,
		now:      time.Now,
		log:      log.With().Str("service", "auth").Logger(),
	}, nil
}

// Login checks the admin password and issues a signed token.
func (m *Manager) Login(ctx context.Context, password string) (string, *Claims, error) {
	if err := bcrypt.CompareHashAndPassword(m.hash, []byte(password)); err != nil {
		m.log.Warn().Msg("Failed admin login")
		return "", nil, ErrInvalidCredentials
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   m.user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	m.log.Info().Str("user", m.user).Str("jti", claims.ID).Msg("Admin logged in")
	return token, claims, nil
}

// Verify parses a token and rejects revoked ones.
func (m *Manager) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := m.denylist.Exists(ctx, revokedPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Logout revokes a token until it would have expired anyway.
func (m *Manager) Logout(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Time.Sub(m.now()); left > 0 {
			ttl = left
		}
	}
	if err := m.denylist.Set(ctx, revokedPrefix+claims.ID, []byte("1"), ttl); err != nil {
		return nil, fmt.Errorf("revoke token: %w", err)
	}
	m.log.Info().Str("jti", claims.ID).Msg("Admin logged out")
	return claims, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
