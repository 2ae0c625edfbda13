// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the username in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 session tokens with a process-wide secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	ti.now = now
	return ti
}

// TTL is the validity period stamped into new tokens.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

func (ti *TokenIssuer) Issue(subject string) (string, error) {
	now := ti.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	})

	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify returns the token subject. Failures are reported as
// common.ErrTokenExpired, common.ErrMalformedToken or common.ErrInvalidToken.
func (ti *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", common.ErrMalformedToken
		default:
			return "", common.ErrInvalidToken
		}
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
