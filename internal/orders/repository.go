package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type OrderRepository struct {
	db database.DBTX
}

func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert writes the order header and its lines. Callers provide the
// transaction; lines keep the line numbers already assigned to them.
func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (order_tms, customer_id, store_id, order_status)
		VALUES ($1, $2, $3, $4)
		RETURNING order_id
	`, order.CreatedAt, order.CustomerID, order.StoreID, order.Status).Scan(&order.ID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, line_item_id, product_id, unit_price, quantity, shipment_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, item.LineItemID, item.ProductID, item.UnitPrice, item.Quantity, item.ShipmentID)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOne(ctx, `
		SELECT order_id, customer_id, store_id, order_status, order_tms
		FROM orders
		WHERE order_id = $1
	`, id)
}

// GetForUpdate is GetByID with the order row locked until the surrounding
// transaction ends.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOne(ctx, `
		SELECT order_id, customer_id, store_id, order_status, order_tms
		FROM orders
		WHERE order_id = $1
		FOR UPDATE
	`, id)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, id int64) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&order.ID, &order.CustomerID, &order.StoreID, &order.Status, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT line_item_id, product_id, unit_price, quantity, shipment_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_item_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.LineItemID, &item.ProductID, &item.UnitPrice, &item.Quantity, &item.ShipmentID); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET order_status = $1
		WHERE order_id = $2
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

// Details returns the header fields and priced lines needed for the order
// details view, or nil when the order does not exist.
func (r *OrderRepository) Details(ctx context.Context, id int64) (*domain.OrderDetails, error) {
	details := &domain.OrderDetails{}

	err := r.db.QueryRowContext(ctx, `
		SELECT o.order_id, o.order_status, s.store_name
		FROM orders o
		JOIN stores s ON s.store_id = o.store_id
		WHERE o.order_id = $1
	`, id).Scan(&details.OrderID, &details.OrderStatus, &details.StoreName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.line_item_id, i.product_id, p.product_name, i.unit_price, i.quantity, sh.shipment_status
		FROM order_items i
		JOIN products p ON p.product_id = i.product_id
		LEFT JOIN shipments sh ON sh.shipment_id = i.shipment_id
		WHERE i.order_id = $1
		ORDER BY i.line_item_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	details.Items = []domain.LineItemDetail{}
	for rows.Next() {
		var line domain.LineItemDetail
		var status sql.NullString
		if err := rows.Scan(&line.LineItemID, &line.ProductID, &line.ProductName, &line.UnitPrice, &line.Quantity, &status); err != nil {
			return nil, err
		}
		if status.Valid {
			st := domain.ShipmentStatus(status.String)
			line.ShipmentStatus = &st
		}
		details.Items = append(details.Items, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT order_id, customer_id, store_id, order_status, order_tms
		FROM orders
		WHERE order_status = $1
		ORDER BY order_tms DESC, order_id DESC
	`, status)
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT order_id, customer_id, store_id, order_status, order_tms
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_tms DESC, order_id DESC
	`, customerID)
}

func (r *OrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT o.order_id, o.customer_id, o.store_id, o.order_status, o.order_tms
		FROM orders o
		JOIN customers c ON c.customer_id = o.customer_id
		WHERE lower(c.email_address) = lower($1)
		ORDER BY o.order_tms DESC, o.order_id DESC
	`, email)
}

func (r *OrderRepository) ListByStoreName(ctx context.Context, storeName string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT o.order_id, o.customer_id, o.store_id, o.order_status, o.order_tms
		FROM orders o
		JOIN stores s ON s.store_id = o.store_id
		WHERE lower(s.store_name) = lower($1)
		ORDER BY o.order_tms DESC, o.order_id DESC
	`, storeName)
}

// ListCreatedInRange includes from and excludes until.
func (r *OrderRepository) ListCreatedInRange(ctx context.Context, from, until time.Time) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT order_id, customer_id, store_id, order_status, order_tms
		FROM orders
		WHERE order_tms >= $1 AND order_tms < $2
		ORDER BY order_tms, order_id
	`, from, until)
}

// list loads order headers and then every line for them in one query.
func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.StoreID, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, line_item_id, product_id, unit_price, quantity, shipment_id
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_item_id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID int64
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.LineItemID, &item.ProductID, &item.UnitPrice, &item.Quantity, &item.ShipmentID); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
