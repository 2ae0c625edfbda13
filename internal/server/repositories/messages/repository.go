// Package messages persists buyer-seller conversations.
package messages

import (
	"context"

	"github.com/dmitrijs2005/a2hand/internal/server/models"
)

type Repository interface {
	// Create inserts m unread and fills in ID and CreatedAt.
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	// ListForUser returns messages sent or received by username, newest first.
	ListForUser(ctx context.Context, username string) ([]models.Message, error)
	// MarkRead flags a message as read. Missing ids and messages already
	// read are left alone. A non-empty receiver restricts the update to
	// messages addressed to that user.
	MarkRead(ctx context.Context, id int64, receiver string) error
}
