package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/a2hand/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

// NewProduct carries the caller supplied fields of a listing.
type NewProduct struct {
	Title       string
	Description string
	Price       float64
	Currency    string
	Category    string
	Location    string
	Seller      string
}

// ProductService manages listings and their images.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	logger      logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store, logger logging.Logger) *ProductService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ProductService{db: db, repomanager: m, store: store, logger: logger}
}

// Create validates the listing, stores its images concurrently (keeping
// their order) and inserts the row. Images are written before the row; if
// the insert fails they are removed again.
func (s *ProductService) Create(ctx context.Context, np NewProduct, images []Upload) (*models.Product, error) {
	np, err := normalizeProduct(np)
	if err != nil {
		return nil, err
	}

	exists, err := s.repomanager.Users(s.db).ExistsUsername(ctx, np.Seller)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.Validationf("seller %q does not exist", np.Seller)
	}

	paths, err := s.saveAll(ctx, images)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Products(s.db).Create(ctx, &models.Product{
		Title:       np.Title,
		Description: np.Description,
		Price:       np.Price,
		Currency:    np.Currency,
		Category:    np.Category,
		Location:    np.Location,
		Seller:      np.Seller,
		Images:      paths,
	})
	if err != nil {
		removeFiles(ctx, s.store, s.logger, paths)
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info(ctx, "product created",
		"product_id", p.ID, "seller", p.Seller, "images", len(p.Images))
	return p, nil
}

func (s *ProductService) saveAll(ctx context.Context, uploads []Upload) ([]string, error) {
	paths := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		g.Go(func() error {
			path, err := s.store.Save(gctx, up.Name, up.Content)
			if err != nil {
				return fmt.Errorf("store image %q: %w", up.Name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		removeFiles(ctx, s.store, s.logger, paths)
		return nil, err
	}

	return paths, nil
}

func normalizeProduct(np NewProduct) (NewProduct, error) {
	np.Title = strings.TrimSpace(np.Title)
	np.Description = strings.TrimSpace(np.Description)
	np.Category = strings.TrimSpace(np.Category)
	np.Location = strings.TrimSpace(np.Location)
	np.Seller = strings.TrimSpace(np.Seller)
	np.Currency = strings.ToUpper(strings.TrimSpace(np.Currency))

	if np.Title == "" {
		return np, common.Validationf("title is required")
	}
	if np.Seller == "" {
		return np, common.Validationf("seller is required")
	}
	if math.IsNaN(np.Price) || math.IsInf(np.Price, 0) || np.Price < 0 {
		return np, common.Validationf("price must be a non-negative number")
	}
	if np.Currency == "" {
		np.Currency = common.DefaultCurrency
	}
	if !isCurrencyCode(np.Currency) {
		return np, common.Validationf("currency must be a 3-letter code")
	}
	return np, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// List returns listings matching filter, newest first.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Location = strings.TrimSpace(filter.Location)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repomanager.Products(s.db).List(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.repomanager.Products(s.db).GetByID(ctx, id)
}

// Delete removes a listing owned by requester and then its images,
// best-effort. Non-owners get common.ErrorForbidden and nothing changes.
func (s *ProductService) Delete(ctx context.Context, id int64, requester string) error {
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return common.Validationf("seller is required")
	}

	images, err := s.repomanager.Products(s.db).DeleteOwned(ctx, id, requester)
	if err != nil {
		return err
	}

	removeFiles(ctx, s.store, s.logger, images)

	logging.FromContext(ctx, s.logger).Info(ctx, "product deleted", "product_id", id, "seller", requester)
	return nil
}
