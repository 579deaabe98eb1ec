package utils

import (
	"errors"
	"strconv"
	"time"

	"shipprotect/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer     = "shipprotect-api"
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenKind is carried as the token audience so an access token and a
// refresh token are never interchangeable, even under one secret.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

var (
	ErrSecretNotConfigured = errors.New("token secret not configured")
	ErrInvalidToken        = errors.New("invalid token")
)

// GenerateToken signs claims of the given kind with HS256 for ttl from now.
func GenerateToken(claims models.AccountClaims, kind TokenKind, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrSecretNotConfigured
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{string(kind)},
		Subject:   strconv.FormatUint(uint64(claims.AccountID), 10),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT token string of the given kind.
// It returns the claims if valid, or an error if something is wrong.
func ParseToken(tokenStr string, kind TokenKind, secret string) (*models.AccountClaims, error) {
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(string(kind)))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*models.AccountClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
