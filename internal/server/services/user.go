// Package services contains server-side business logic: account
// registration and sessions, product listings and buyer-seller messaging.
// Services enforce validation and ownership rules; repositories only store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/auth"
	"github.com/dmitrijs2005/a2hand/internal/server/config"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repomanager"
)

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	Username    string
}

// UserService provides account operations:
// - Register: validate and create users
// - Login: verify credentials and mint a session token
// - Me / Authenticate: resolve a session token to its user
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	bcryptCost  int
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenIssuer, cfg *config.Config, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		bcryptCost:  cfg.BcryptCost,
		logger:      logger,
	}
}

// Register validates input, reports a taken username or email precisely,
// and stores the account with a bcrypt hash of the password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if err := s.checkTaken(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// Lost a race with a concurrent registration; report which field.
			if reason := s.checkTaken(ctx, username, email); reason != nil {
				return nil, reason
			}
		}
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info(ctx, "user registered", "username", user.Username)
	return user, nil
}

func (s *UserService) checkTaken(ctx context.Context, username, email string) error {
	usernameTaken, emailTaken, err := s.repomanager.Users(s.db).CheckExists(ctx, username, email)
	if err != nil {
		return err
	}
	switch {
	case usernameTaken:
		return common.ErrUsernameTaken
	case emailTaken:
		return common.ErrEmailTaken
	}
	return nil
}

func validateRegistration(username, email, password string) error {
	if username == "" {
		return common.Validationf("username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return common.Validationf("a valid email is required")
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	if len(password) > common.MaxPasswordBytes {
		return common.ErrPasswordTooLong
	}
	return nil
}

// Login checks credentials and issues a session token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{AccessToken: token, Username: user.Username}, nil
}

// Authenticate resolves a session token to a username. Any token failure
// wraps common.ErrorUnauthorized together with the precise token error.
func (s *UserService) Authenticate(token string) (string, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return username, nil
}

// Me returns the account behind a session token.
func (s *UserService) Me(ctx context.Context, token string) (*models.User, error) {
	username, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}
