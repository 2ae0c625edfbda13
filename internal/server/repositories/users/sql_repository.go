package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.dialect.Rebind(
		`INSERT INTO users (username, email, password, created_at)
         VALUES (?, ?, ?, ?)
		 RETURNING id
		 `)

	createdAt := r.now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, models.FormatTimestamp(createdAt)).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = createdAt.Truncate(time.Microsecond)
	return user, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, username, email, password, created_at FROM users
		 WHERE username = ?
		 `)

	user := &models.User{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *SQLRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *SQLRepository) CheckExists(ctx context.Context, username, email string) (bool, bool, error) {
	query := r.dialect.Rebind(
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?),
		        EXISTS(SELECT 1 FROM users WHERE email = ?)
		 `)

	var usernameTaken, emailTaken bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&usernameTaken, &emailTaken); err != nil {
		return false, false, fmt.Errorf("db error: %w", err)
	}
	return usernameTaken, emailTaken, nil
}
