package models

import "time"

// Message is a buyer-seller note about a product. FilePath is nil when the
// message carries no attachment.
type Message struct {
	ID        int64     `json:"id,string"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	ProductID int64     `json:"product_id"`
	Body      string    `json:"message"`
	FilePath  *string   `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
