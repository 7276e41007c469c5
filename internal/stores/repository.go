package stores

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

const storeColumns = `store_id, store_name, COALESCE(web_address, ''), COALESCE(physical_address, ''),
	latitude, longitude, logo, COALESCE(logo_mime_type, ''), COALESCE(logo_filename, ''),
	COALESCE(logo_charset, ''), logo_last_updated`

type StoreRepository struct {
	db database.DBTX
}

func NewStoreRepository(db database.DBTX) *StoreRepository {
	return &StoreRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStore(s scanner) (domain.Store, error) {
	var st domain.Store
	var lat, lng decimal.NullDecimal
	var updated sql.NullTime
	err := s.Scan(&st.ID, &st.Name, &st.WebAddress, &st.PhysicalAddress, &lat, &lng,
		&st.Logo, &st.LogoMimeType, &st.LogoFilename, &st.LogoCharset, &updated)
	if err != nil {
		return st, err
	}
	if lat.Valid {
		st.Latitude = &lat.Decimal
	}
	if lng.Valid {
		st.Longitude = &lng.Decimal
	}
	if updated.Valid {
		st.LogoLastUpdated = &updated.Time
	}
	return st, nil
}

func (r *StoreRepository) Create(ctx context.Context, s *domain.Store) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO stores (store_name, web_address, physical_address, latitude, longitude,
		                    logo, logo_mime_type, logo_filename, logo_charset, logo_last_updated)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
		RETURNING store_id
	`, s.Name, s.WebAddress, s.PhysicalAddress, nullDecimal(s.Latitude), nullDecimal(s.Longitude),
		s.Logo, s.LogoMimeType, s.LogoFilename, s.LogoCharset, s.LogoLastUpdated).Scan(&s.ID)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	st, err := scanStore(r.db.QueryRowContext(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE store_id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (r *StoreRepository) List(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Store{}
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
