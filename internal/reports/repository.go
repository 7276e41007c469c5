package reports

import (
	"context"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

// CustomerQuantity is a customer with the sum of quantities over all of
// their order lines.
type CustomerQuantity struct {
	domain.Customer
	TotalQuantity int64 `json:"total_quantity"`
}

type ShipmentStatusTotal struct {
	Status    domain.ShipmentStatus `json:"status"`
	TotalSold int64                 `json:"total_sold"`
}

type ReportRepository struct {
	db database.DBTX
}

func NewReportRepository(db database.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_status, COUNT(*)
		FROM orders
		GROUP BY order_status
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status domain.OrderStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *ReportRepository) CustomersByOrderQuantityBetween(ctx context.Context, minQty, maxQty int64) ([]CustomerQuantity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.customer_id, c.email_address, c.full_name, SUM(i.quantity) AS total_quantity
		FROM customers c
		JOIN orders o ON o.customer_id = c.customer_id
		JOIN order_items i ON i.order_id = o.order_id
		GROUP BY c.customer_id, c.email_address, c.full_name
		HAVING SUM(i.quantity) BETWEEN $1 AND $2
		ORDER BY total_quantity DESC, c.customer_id
	`, minQty, maxQty)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []CustomerQuantity{}
	for rows.Next() {
		var cq CustomerQuantity
		if err := rows.Scan(&cq.ID, &cq.Email, &cq.FullName, &cq.TotalQuantity); err != nil {
			return nil, err
		}
		out = append(out, cq)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// CustomerCountsByShipmentStatus counts each customer once per status, however
// many shipments they have in it.
func (r *ReportRepository) CustomerCountsByShipmentStatus(ctx context.Context) (map[domain.ShipmentStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT shipment_status, COUNT(DISTINCT customer_id)
		FROM shipments
		GROUP BY shipment_status
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.ShipmentStatus]int64)
	for rows.Next() {
		var status domain.ShipmentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// TotalSoldByShipmentStatus only sees order lines assigned to a shipment.
func (r *ReportRepository) TotalSoldByShipmentStatus(ctx context.Context) ([]ShipmentStatusTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.shipment_status, SUM(i.quantity)
		FROM order_items i
		JOIN shipments s ON s.shipment_id = i.shipment_id
		GROUP BY s.shipment_status
		ORDER BY s.shipment_status
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []ShipmentStatusTotal{}
	for rows.Next() {
		var t ShipmentStatusTotal
		if err := rows.Scan(&t.Status, &t.TotalSold); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ReportRepository) CustomersWithOrderStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Customer, error) {
	return r.customers(ctx, `
		SELECT c.customer_id, c.email_address, c.full_name
		FROM customers c
		WHERE EXISTS (
			SELECT 1 FROM orders o
			WHERE o.customer_id = c.customer_id AND o.order_status = $1
		)
		ORDER BY c.customer_id
	`, status)
}

func (r *ReportRepository) CustomersWithShipmentStatus(ctx context.Context, status domain.ShipmentStatus) ([]domain.Customer, error) {
	return r.customers(ctx, `
		SELECT c.customer_id, c.email_address, c.full_name
		FROM customers c
		WHERE EXISTS (
			SELECT 1 FROM shipments s
			WHERE s.customer_id = c.customer_id AND s.shipment_status = $1
		)
		ORDER BY c.customer_id
	`, status)
}

func (r *ReportRepository) customers(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
