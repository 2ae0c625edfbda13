package auth

import (
	"errors"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor the server accepts.
const MinBcryptCost = 10

// HashPassword returns a salted bcrypt hash. Costs below MinBcryptCost are
// raised to it.
func HashPassword(plain string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.ErrPasswordTooLong
		}
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash
// yields false.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
