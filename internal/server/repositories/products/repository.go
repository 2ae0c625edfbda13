// Package products persists classifieds listings.
package products

import (
	"context"

	"github.com/dmitrijs2005/a2hand/internal/server/models"
)

type Repository interface {
	// Create inserts p and fills in ID and CreatedAt.
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	// List returns matching products, newest first.
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// DeleteOwned removes the product only when seller owns it and returns
	// its image paths. A product owned by someone else yields
	// common.ErrorForbidden; a missing one yields common.ErrorNotFound.
	DeleteOwned(ctx context.Context, id int64, seller string) ([]string, error)
	SellerOf(ctx context.Context, id int64) (string, error)
}
