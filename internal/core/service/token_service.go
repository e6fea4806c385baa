package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidstream/account-service/internal/core/domain"
	"github.com/vidstream/account-service/internal/core/ports"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// tokenClaims is the JWT payload for both token kinds. Access tokens carry
// the full identity set; refresh tokens carry only username. The token_type
// claim is checked on top of the per-kind secret split.
type tokenClaims struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens. Access and refresh tokens
// use distinct secrets so one kind cannot be replayed as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssueAccessToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username:  account.Username,
		Email:     account.Email,
		FullName:  account.FullName,
		TokenType: string(ports.TokenKindAccess),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return s.sign(claims, s.accessSecret)
}

func (s *TokenService) IssueRefreshToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username:  account.Username,
		TokenType: string(ports.TokenKindRefresh),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return s.sign(claims, s.refreshSecret)
}

// Verify checks signature, shape and expiry of token against the secret for
// kind and returns the decoded claims.
func (s *TokenService) Verify(token string, kind ports.TokenKind) (*ports.TokenClaims, error) {
	secret := s.accessSecret
	if kind == ports.TokenKindRefresh {
		secret = s.refreshSecret
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.TokenType != string(kind) {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return &ports.TokenClaims{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		FullName:  claims.FullName,
		Kind:      kind,
	}, nil
}

func (s *TokenService) sign(claims tokenClaims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}
