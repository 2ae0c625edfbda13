package messages

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

func (r *SQLRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	query := r.dialect.Rebind(
		`INSERT INTO messages (sender, receiver, product_id, message, file_path, created_at, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id
		 `)

	var filePath sql.NullString
	if m.FilePath != nil {
		filePath = sql.NullString{String: *m.FilePath, Valid: true}
	}

	createdAt := r.now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		m.Sender, m.Receiver, m.ProductID, m.Body, filePath,
		models.FormatTimestamp(createdAt), false).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	m.Read = false
	m.CreatedAt = createdAt.Truncate(time.Microsecond)
	return m, nil
}

func (r *SQLRepository) ListForUser(ctx context.Context, username string) ([]models.Message, error) {
	query := r.dialect.Rebind(
		`SELECT id, sender, receiver, product_id, message, file_path, created_at, read
		 FROM messages
		 WHERE sender = ? OR receiver = ?
		 ORDER BY created_at DESC, id DESC
		 `)

	rows, err := r.db.QueryContext(ctx, query, username, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Message{}
	for rows.Next() {
		var (
			m         models.Message
			filePath  sql.NullString
			createdAt string
			read      sql.NullBool
		)
		if err := rows.Scan(&m.ID, &m.Sender, &m.Receiver, &m.ProductID, &m.Body,
			&filePath, &createdAt, &read); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if filePath.Valid {
			path := filePath.String
			m.FilePath = &path
		}
		m.Read = read.Valid && read.Bool
		if m.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("message %d: %w", m.ID, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) MarkRead(ctx context.Context, id int64, receiver string) error {
	query := `UPDATE messages SET read = ? WHERE id = ?`
	args := []any{true, id}
	if receiver != "" {
		query += ` AND receiver = ?`
		args = append(args, receiver)
	}

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
