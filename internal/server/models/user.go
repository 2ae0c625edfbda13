// Package models defines server-side records persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id,string"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
