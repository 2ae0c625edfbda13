package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/a2hand/internal/server/storage"
)

// NewMessage carries the caller supplied fields of a message.
type NewMessage struct {
	Sender    string
	Receiver  string
	ProductID int64
	Body      string
}

// MessageService handles buyer-seller messages and their attachments.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store, logger logging.Logger) *MessageService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &MessageService{db: db, repomanager: m, store: store, logger: logger}
}

// Send stores the optional attachment, then inside one transaction checks
// that both users and the product exist and inserts the message. The
// attachment is removed again if the transaction fails.
func (s *MessageService) Send(ctx context.Context, nm NewMessage, attachment *Upload) (*models.Message, error) {
	nm.Sender = strings.TrimSpace(nm.Sender)
	nm.Receiver = strings.TrimSpace(nm.Receiver)
	nm.Body = strings.TrimSpace(nm.Body)

	switch {
	case nm.Sender == "":
		return nil, common.Validationf("sender is required")
	case nm.Receiver == "":
		return nil, common.Validationf("receiver is required")
	case nm.Body == "":
		return nil, common.Validationf("message is required")
	case nm.ProductID <= 0:
		return nil, common.Validationf("product_id must be positive")
	}

	var filePath *string
	if attachment != nil {
		path, err := s.store.Save(ctx, attachment.Name, attachment.Content)
		if err != nil {
			return nil, err
		}
		filePath = &path
	}

	var msg *models.Message
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		for _, name := range []string{nm.Sender, nm.Receiver} {
			ok, err := users.ExistsUsername(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return common.Validationf("user %q does not exist", name)
			}
		}

		if _, err := s.repomanager.Products(tx).SellerOf(ctx, nm.ProductID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.Validationf("product %d does not exist", nm.ProductID)
			}
			return err
		}

		var err error
		msg, err = s.repomanager.Messages(tx).Create(ctx, &models.Message{
			Sender:    nm.Sender,
			Receiver:  nm.Receiver,
			ProductID: nm.ProductID,
			Body:      nm.Body,
			FilePath:  filePath,
		})
		return err
	})
	if err != nil {
		if filePath != nil {
			removeFiles(ctx, s.store, s.logger, []string{*filePath})
		}
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info(ctx, "message sent",
		"message_id", msg.ID, "product_id", msg.ProductID, "attachment", filePath != nil)
	return msg, nil
}

// List returns every message username sent or received, newest first.
func (s *MessageService) List(ctx context.Context, username string) ([]models.Message, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.Validationf("username is required")
	}
	return s.repomanager.Messages(s.db).ListForUser(ctx, username)
}

// MarkRead flags a message as read. Unknown ids are a no-op. When receiver
// is set only that user's incoming messages are affected.
func (s *MessageService) MarkRead(ctx context.Context, id int64, receiver string) error {
	return s.repomanager.Messages(s.db).MarkRead(ctx, id, strings.TrimSpace(receiver))
}
