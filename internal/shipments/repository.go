package shipments

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type ShipmentRepository struct {
	db database.DBTX
}

func NewShipmentRepository(db database.DBTX) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO shipments (store_id, customer_id, delivery_address, shipment_status)
		VALUES ($1, $2, $3, $4)
		RETURNING shipment_id
	`, s.StoreID, s.CustomerID, s.DeliveryAddress, s.Status).Scan(&s.ID)
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Shipment, error) {
	s := &domain.Shipment{}

	err := r.db.QueryRowContext(ctx, `
		SELECT shipment_id, store_id, customer_id, delivery_address, shipment_status
		FROM shipments
		WHERE shipment_id = $1
	`, id).Scan(&s.ID, &s.StoreID, &s.CustomerID, &s.DeliveryAddress, &s.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return s, nil
}

func (r *ShipmentRepository) List(ctx context.Context) ([]domain.Shipment, error) {
	return r.list(ctx, `
		SELECT shipment_id, store_id, customer_id, delivery_address, shipment_status
		FROM shipments
		ORDER BY shipment_id
	`)
}

func (r *ShipmentRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Shipment, error) {
	return r.list(ctx, `
		SELECT shipment_id, store_id, customer_id, delivery_address, shipment_status
		FROM shipments
		WHERE customer_id = $1
		ORDER BY shipment_id
	`, customerID)
}

func (r *ShipmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Shipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Shipment{}
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(&s.ID, &s.StoreID, &s.CustomerID, &s.DeliveryAddress, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.ShipmentStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shipments SET shipment_status = $1
		WHERE shipment_id = $2
	`, status, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// OrderParties returns the customer and store of an order, with ok false when
// the order does not exist.
func (r *ShipmentRepository) OrderParties(ctx context.Context, orderID int64) (customerID, storeID int64, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT customer_id, store_id
		FROM orders
		WHERE order_id = $1
	`, orderID).Scan(&customerID, &storeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	return customerID, storeID, true, nil
}

// AssignItems points the given lines of an order at a shipment and reports
// how many lines were updated.
func (r *ShipmentRepository) AssignItems(ctx context.Context, shipmentID, orderID int64, lineItemIDs []int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE order_items SET shipment_id = $1
		WHERE order_id = $2 AND line_item_id = ANY($3)
	`, shipmentID, orderID, pq.Array(lineItemIDs))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
