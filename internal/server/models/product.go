package models

import "time"

// Product is a classifieds listing. Images holds storage paths in upload
// order and is never nil once loaded from a repository.
type Product struct {
	ID          int64     `json:"id,string"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Seller      string    `json:"seller"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductFilter narrows a listing query. Empty fields impose no constraint;
// non-empty fields are combined with AND. Search matches title or
// description case-insensitively.
type ProductFilter struct {
	Category string
	Location string
	Search   string
}
