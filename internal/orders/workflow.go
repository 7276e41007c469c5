package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/telemetry"
)

var tracer = otel.Tracer("orders/workflow")

// Publisher is satisfied by *messaging.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Workflow places orders against store inventory and drives their status.
// It holds no state of its own between calls.
type Workflow struct {
	store     Persistence
	publisher Publisher
	metrics   *telemetry.OrderMetrics
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Workflow)

func WithPublisher(p Publisher) Option {
	return func(w *Workflow) {
		w.publisher = p
	}
}

func WithMetrics(m *telemetry.OrderMetrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

func NewWorkflow(store Persistence, logger *slog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type CreateOrderRequest struct {
	CustomerID int64              `json:"customer_id"`
	StoreID    int64              `json:"store_id"`
	Items      []domain.OrderLine `json:"items"`
}

func (r CreateOrderRequest) Validate() error {
	fields := map[string]string{}
	if r.CustomerID <= 0 {
		fields["customer_id"] = "customer_id is required"
	}
	if r.StoreID <= 0 {
		fields["store_id"] = "store_id is required"
	}
	if len(r.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, line := range r.Items {
		if line.ProductID <= 0 {
			fields[fmt.Sprintf("items[%d].product_id", i)] = "product_id is required"
		}
		switch {
		case line.Quantity < 1:
			fields[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be at least 1"
		case line.Quantity > domain.MaxQuantity:
			fields[fmt.Sprintf("items[%d].quantity", i)] = fmt.Sprintf("quantity must be at most %d", domain.MaxQuantity)
		}
	}
	return domain.Invalid(fields)
}

// CreateOrder prices and numbers the requested lines and decrements stock for
// each of them in one transaction. Lines are never merged: the same product
// requested twice yields two lines and two decrements. Any failure rolls back
// every decrement already applied.
func (w *Workflow) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "CreateOrder", trace.WithAttributes(
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Int64("store.id", req.StoreID),
		attribute.Int("order.lines", len(req.Items)),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		w.reject(ctx, span, err)
		return nil, err
	}

	var (
		order    *domain.Order
		customer *domain.Customer
	)
	err := w.store.InTx(ctx, func(q Queries) error {
		c, err := q.Customer(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if c == nil {
			return domain.NotFound("customer not found")
		}

		s, err := q.Store(ctx, req.StoreID)
		if err != nil {
			return fmt.Errorf("load store: %w", err)
		}
		if s == nil {
			return domain.NotFound("store not found")
		}

		o := &domain.Order{
			CustomerID: c.ID,
			StoreID:    s.ID,
			Status:     domain.OrderStatusPending,
			CreatedAt:  w.now().UTC(),
			Items:      make([]domain.OrderItem, 0, len(req.Items)),
		}

		for i, line := range req.Items {
			p, err := q.Product(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("load product %d: %w", line.ProductID, err)
			}
			if p == nil {
				return domain.NotFound("product %d not found", line.ProductID)
			}

			if err := q.DecrementStock(ctx, s.ID, p.ID, line.Quantity); err != nil {
				if _, ok := domain.KindOf(err); ok {
					return err
				}
				return fmt.Errorf("decrement stock for product %d: %w", p.ID, err)
			}

			o.Items = append(o.Items, domain.OrderItem{
				LineItemID: i + 1,
				ProductID:  p.ID,
				UnitPrice:  p.UnitPrice,
				Quantity:   line.Quantity,
			})
		}

		if err := q.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		order, customer = o, c
		return nil
	})
	if err != nil {
		w.reject(ctx, span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))

	units := 0
	for _, item := range order.Items {
		units += item.Quantity
	}
	total := order.Total()
	w.metrics.OrderPlaced(ctx, order.StoreID, units, total.InexactFloat64())

	w.publish(ctx, domain.EventOrderPlaced, order, customer.Email)

	w.logger.Info("order placed", "order_id", order.ID, "customer_id", order.CustomerID,
		"store_id", order.StoreID, "lines", len(order.Items), "total", total.String())
	return order, nil
}

func (w *Workflow) reject(ctx context.Context, span trace.Span, err error) {
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, domain.ErrStockNotAvailable):
		reason = "stock_not_available"
	default:
		if kind, ok := domain.KindOf(err); ok {
			switch kind {
			case domain.KindNotFound:
				reason = "not_found"
			case domain.KindValidation:
				reason = "validation"
			default:
				reason = "bad_request"
			}
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	w.metrics.OrderRejected(ctx, reason)
}

// CancelOrder moves an order to CANCELLED. Stock taken by the order is not
// returned to inventory. Cancelling an already cancelled order succeeds
// without changes; completed orders cannot be cancelled.
func (w *Workflow) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return w.transition(ctx, id, domain.OrderStatusCancelled)
}

// UpdateStatus parses status against the closed set of order statuses and
// applies it if the lifecycle allows the move.
func (w *Workflow) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return w.transition(ctx, id, next)
}

func (w *Workflow) transition(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "TransitionOrder", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status.next", string(next)),
	))
	defer span.End()

	var (
		order   *domain.Order
		email   string
		changed bool
	)
	err := w.store.InTx(ctx, func(q Queries) error {
		o, err := q.LockOrder(ctx, id)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if o == nil {
			return domain.NotFound("order not found")
		}

		if o.Status == next {
			order = o
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return domain.BadRequest("order %d is %s and cannot become %s", o.ID, o.Status, next)
		}

		if err := q.SetOrderStatus(ctx, o.ID, next); err != nil {
			return err
		}

		c, err := q.Customer(ctx, o.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if c != nil {
			email = c.Email
		}

		o.Status = next
		order, changed = o, true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if changed {
		w.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
		if next == domain.OrderStatusCancelled {
			w.metrics.OrderCancelled(ctx)
			w.publish(ctx, domain.EventOrderCancelled, order, email)
		}
	}

	return order, nil
}

func (w *Workflow) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := w.store.Order(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.NotFound("order not found")
	}
	return order, nil
}

// GetOrderDetails adds the store name, per-line product and shipment data and
// the order total to the order header.
func (w *Workflow) GetOrderDetails(ctx context.Context, id int64) (*domain.OrderDetails, error) {
	details, err := w.store.Details(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order details: %w", err)
	}
	if details == nil {
		return nil, domain.NotFound("order not found")
	}
	summarize(details)
	return details, nil
}

// summarize sets the order-level shipment status to the first one found in
// line order and totals unit price times quantity over all lines.
func summarize(d *domain.OrderDetails) {
	total := decimal.Zero
	d.ShipmentStatus = nil
	for _, line := range d.Items {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if d.ShipmentStatus == nil && line.ShipmentStatus != nil {
			st := *line.ShipmentStatus
			d.ShipmentStatus = &st
		}
	}
	d.TotalAmount = total
}

// publish is best effort: the order is already committed, so a broker
// failure is logged and not returned.
func (w *Workflow) publish(ctx context.Context, eventType string, order *domain.Order, email string) {
	if w.publisher == nil {
		return
	}

	event := domain.OrderEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		StoreID:    order.StoreID,
		Email:      email,
		Status:     order.Status,
		Items:      order.Items,
		Total:      order.Total().StringFixed(2),
		Timestamp:  w.now().UTC(),
	}

	if err := w.publisher.Publish(ctx, strconv.FormatInt(order.ID, 10), event); err != nil {
		w.logger.Error("failed to publish order event", "error", err, "order_id", order.ID, "type", eventType)
	}
}
