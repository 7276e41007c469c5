package products

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

const productColumns = `product_id, product_name, unit_price, COALESCE(colour, ''), COALESCE(brand, ''), COALESCE(size, ''), rating`

type ProductRepository struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var p domain.Product
	var rating sql.NullInt64
	if err := s.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Colour, &p.Brand, &p.Size, &rating); err != nil {
		return p, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		p.Rating = &v
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (product_name, unit_price, colour, brand, size, rating)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING product_id
	`, p.Name, p.UnitPrice, p.Colour, p.Brand, p.Size, p.Rating).Scan(&p.ID)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE product_id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET product_name = $1, unit_price = $2, colour = NULLIF($3, ''), brand = NULLIF($4, ''),
		    size = NULLIF($5, ''), rating = $6
		WHERE product_id = $7
	`, p.Name, p.UnitPrice, p.Colour, p.Brand, p.Size, p.Rating, p.ID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
}

func (r *ProductRepository) ListByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE lower(brand) = lower($1) ORDER BY product_id`, brand)
}

func (r *ProductRepository) ListByColour(ctx context.Context, colour string) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE lower(colour) = lower($1) ORDER BY product_id`, colour)
}

func (r *ProductRepository) ListByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]domain.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE unit_price BETWEEN $1 AND $2
		ORDER BY unit_price, product_id
	`, min, max)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
