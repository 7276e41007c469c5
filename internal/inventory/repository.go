package inventory

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type InventoryRepository struct {
	db database.DBTX
}

func NewInventoryRepository(db database.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListAll(ctx context.Context) ([]domain.Inventory, error) {
	return r.list(ctx, `
		SELECT inventory_id, store_id, product_id, product_inventory
		FROM inventory
		ORDER BY store_id, product_id
	`)
}

func (r *InventoryRepository) ListByStore(ctx context.Context, storeID int64) ([]domain.Inventory, error) {
	return r.list(ctx, `
		SELECT inventory_id, store_id, product_id, product_inventory
		FROM inventory
		WHERE store_id = $1
		ORDER BY product_id
	`, storeID)
}

func (r *InventoryRepository) list(ctx context.Context, query string, args ...any) ([]domain.Inventory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.Inventory{}
	for rows.Next() {
		var inv domain.Inventory
		if err := rows.Scan(&inv.ID, &inv.StoreID, &inv.ProductID, &inv.Quantity); err != nil {
			return nil, err
		}
		items = append(items, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *InventoryRepository) GetStock(ctx context.Context, storeID, productID int64) (*domain.Inventory, error) {
	inv := &domain.Inventory{}

	err := r.db.QueryRowContext(ctx, `
		SELECT inventory_id, store_id, product_id, product_inventory
		FROM inventory
		WHERE store_id = $1 AND product_id = $2
	`, storeID, productID).Scan(&inv.ID, &inv.StoreID, &inv.ProductID, &inv.Quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return inv, nil
}

// SetStock creates the row for the pair or overwrites its quantity.
func (r *InventoryRepository) SetStock(ctx context.Context, inv *domain.Inventory) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO inventory (store_id, product_id, product_inventory)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET product_inventory = EXCLUDED.product_inventory
		RETURNING inventory_id
	`, inv.StoreID, inv.ProductID, inv.Quantity).Scan(&inv.ID)
}

// Decrement removes quantity units in a single conditional UPDATE so the
// availability check and the write cannot be interleaved by another
// transaction. A miss is classified afterwards: no row for the pair is
// ErrStockNotAvailable, a row with too little stock is ErrInsufficientStock.
func (r *InventoryRepository) Decrement(ctx context.Context, storeID, productID int64, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory
		SET product_inventory = product_inventory - $3
		WHERE store_id = $1 AND product_id = $2 AND product_inventory >= $3
	`, storeID, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM inventory WHERE store_id = $1 AND product_id = $2)
	`, storeID, productID).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return domain.ErrStockNotAvailable
	}
	return domain.ErrInsufficientStock
}
