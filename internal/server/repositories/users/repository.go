// Package users persists marketplace accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/a2hand/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken username or
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	// CheckExists evaluates both uniqueness checks in one round trip.
	CheckExists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}
