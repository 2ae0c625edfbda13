package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
)

const selectColumns = `id, title, description, price, currency, category, location, seller, images, created_at`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := r.dialect.Rebind(
		`INSERT INTO products (title, description, price, currency, category, location, seller, images, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id
		 `)

	images, err := models.EncodeImages(p.Images)
	if err != nil {
		return nil, err
	}

	createdAt := r.now().UTC()
	err = r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, p.Currency, p.Category, p.Location, p.Seller,
		images, models.FormatTimestamp(createdAt)).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = createdAt.Truncate(time.Microsecond)
	return p, nil
}

func (r *SQLRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		where = append(where, fmt.Sprintf(`(%s LIKE ? ESCAPE '\' OR %s LIKE ? ESCAPE '\')`,
			r.dialect.Lower("title"), r.dialect.Lower("description")))
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + selectColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := r.dialect.Rebind("SELECT " + selectColumns + " FROM products WHERE id = ?")

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) DeleteOwned(ctx context.Context, id int64, seller string) ([]string, error) {
	query := r.dialect.Rebind(
		`DELETE FROM products
		 WHERE id = ? AND seller = ?
		 RETURNING images
		 `)

	var raw sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, seller).Scan(&raw)
	if err == nil {
		return models.DecodeImages(raw.String)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if _, err := r.SellerOf(ctx, id); err != nil {
		return nil, err
	}
	return nil, common.ErrorForbidden
}

func (r *SQLRepository) SellerOf(ctx context.Context, id int64) (string, error) {
	query := r.dialect.Rebind(`SELECT seller FROM products WHERE id = ?`)

	var seller string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&seller); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return seller, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	var (
		p         models.Product
		images    sql.NullString
		createdAt string
	)
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Currency,
		&p.Category, &p.Location, &p.Seller, &images, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if p.Images, err = models.DecodeImages(images.String); err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}
	if p.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
