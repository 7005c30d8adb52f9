// Package auth issues and verifies the signed session credential.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload. Subject carries the identity id.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret, issuer string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, clock: clk}
}

// Issue signs a credential for user that expires after the configured TTL.
func (m *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenString and returns the actor it asserts.
// Every failure is reported as domain.ErrUnauthenticated.
func (m *TokenManager) Parse(tokenString string) (domain.Actor, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
		}
		return domain.Actor{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthenticated)
	}
	return domain.Actor{UserID: claims.Subject, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}
