package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
)

// Roles carried in token claims.
const (
	RoleUser   = principal.RoleUser
	RoleVendor = principal.RoleVendor
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = apperr.Auth("Invalid or expired token")
	ErrInvalidTokenType = apperr.Auth("Invalid token type")
)

// Claims are the JWT claims issued on login.
type Claims struct {
	jwt.RegisteredClaims
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}

// TokenPair is returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenConfig configures token signing.
type TokenConfig struct {
	Issuer        string
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService builds a token service. An empty refresh secret reuses the
// access secret.
func NewTokenService(cfg TokenConfig) *TokenService {
	refresh := cfg.RefreshSecret
	if refresh == "" {
		refresh = cfg.Secret
	}
	return &TokenService{
		issuer:        cfg.Issuer,
		accessSecret:  []byte(cfg.Secret),
		refreshSecret: []byte(refresh),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// IssuePair signs an access and a refresh token for subject.
func (s *TokenService) IssuePair(subject, role string) (TokenPair, error) {
	access, err := s.sign(subject, role, TokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(subject, role, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ParseAccess verifies an access token.
func (s *TokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, s.accessSecret, TokenTypeAccess)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *TokenService) Refresh(refreshToken string) (string, int64, error) {
	claims, err := s.parse(refreshToken, s.refreshSecret, TokenTypeRefresh)
	if err != nil {
		return "", 0, err
	}
	access, err := s.sign(claims.Subject, claims.Role, TokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.accessTTL.Seconds()), nil
}

func (s *TokenService) sign(subject, role string, typ TokenType, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      role,
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) parse(raw string, secret []byte, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
