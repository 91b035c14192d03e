package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard/pkg/config"
	"github.com/taskboardhq/taskboard/pkg/store"
)

// ErrInvalidToken indicates the token failed validation
var ErrInvalidToken = errors.New("invalid token")

// Token kinds carried in the custom claim. Refresh tokens may only be
// exchanged for new pairs, never used to authorize requests.
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// clockSkew is the tolerance applied to issued-at validation
const clockSkew = 5 * time.Second

// Claims are the JWT claims carried by Taskboard credentials
type Claims struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	ProfileID *string `json:"profile_id,omitempty"`
	Kind      string  `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 credentials
type TokenManager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a token manager from auth configuration
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT secret is required")
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// TokenPair is an access/refresh credential pair issued at login or refresh
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Issue signs a new access/refresh pair for the given user
func (m *TokenManager) Issue(user *store.User) (*TokenPair, error) {
	now := time.Now().UTC()

	access, accessExp, err := m.sign(user, tokenKindAccess, now, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.sign(user, tokenKindRefresh, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *TokenManager) sign(user *store.User, kind string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email:     user.Email,
		Name:      user.Name,
		ProfileID: user.ProfileID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccess verifies an access token and returns its claims
func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, tokenKindAccess)
}

// VerifyRefresh verifies a refresh token and returns its claims
func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, tokenKindRefresh)
}

func (m *TokenManager) verify(token, kind string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := m.validateClaims(claims, kind); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) validateClaims(claims *Claims, kind string) error {
	if claims.Kind != kind {
		return fmt.Errorf("unexpected token kind: %s", claims.Kind)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return errors.New("timestamps missing")
	}
	now := time.Now().UTC()
	if claims.IssuedAt.Time.After(now.Add(clockSkew)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
