package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

const dateLayout = "2006-01-02"

// Aggregates is implemented by *ReportRepository.
type Aggregates interface {
	CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	CustomersByOrderQuantityBetween(ctx context.Context, minQty, maxQty int64) ([]CustomerQuantity, error)
	CustomerCountsByShipmentStatus(ctx context.Context) (map[domain.ShipmentStatus]int64, error)
	TotalSoldByShipmentStatus(ctx context.Context) ([]ShipmentStatusTotal, error)
	CustomersWithOrderStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Customer, error)
	CustomersWithShipmentStatus(ctx context.Context, status domain.ShipmentStatus) ([]domain.Customer, error)
}

// OrderLister is implemented by *orders.OrderRepository.
type OrderLister interface {
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	ListByStoreName(ctx context.Context, storeName string) ([]domain.Order, error)
	ListCreatedInRange(ctx context.Context, from, until time.Time) ([]domain.Order, error)
}

type Service struct {
	aggregates Aggregates
	orders     OrderLister
}

func NewService(aggregates Aggregates, orders OrderLister) *Service {
	return &Service{
		aggregates: aggregates,
		orders:     orders,
	}
}

// CountOrdersByStatus reports every status, including those with no orders.
func (s *Service) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	counts, err := s.aggregates.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	out := make(map[domain.OrderStatus]int64, len(counts))
	for _, st := range domain.OrderStatuses() {
		out[st] = counts[st]
	}
	return out, nil
}

// OrdersInDateRange returns orders placed on any UTC day from start through
// end, both given as yyyy-MM-dd.
func (s *Service) OrdersInDateRange(ctx context.Context, start, end string) ([]domain.Order, error) {
	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return nil, domain.BadRequest("dates must be yyyy-MM-dd")
	}
	last, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return nil, domain.BadRequest("dates must be yyyy-MM-dd")
	}
	if from.After(last) {
		return nil, domain.BadRequest("start date %s is after end date %s", start, end)
	}

	out, err := s.orders.ListCreatedInRange(ctx, from, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list orders in range: %w", err)
	}
	return out, nil
}

func (s *Service) CustomersByOrderQuantityBetween(ctx context.Context, minQty, maxQty int64) ([]CustomerQuantity, error) {
	switch {
	case minQty < 0 || maxQty < 0:
		return nil, domain.BadRequest("quantity bounds must not be negative")
	case minQty > maxQty:
		return nil, domain.BadRequest("minimum quantity %d is greater than maximum %d", minQty, maxQty)
	}

	out, err := s.aggregates.CustomersByOrderQuantityBetween(ctx, minQty, maxQty)
	if err != nil {
		return nil, fmt.Errorf("customers by order quantity: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no customers ordered between %d and %d items", minQty, maxQty)
	}
	return out, nil
}

// ShipmentStatusWiseCustomerCount reports every shipment status with the
// number of distinct customers holding a shipment in it.
func (s *Service) ShipmentStatusWiseCustomerCount(ctx context.Context) (map[domain.ShipmentStatus]int64, error) {
	counts, err := s.aggregates.CustomerCountsByShipmentStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer counts by shipment status: %w", err)
	}

	out := make(map[domain.ShipmentStatus]int64, len(counts))
	for _, st := range domain.ShipmentStatuses() {
		out[st] = counts[st]
	}
	return out, nil
}

// TotalSoldByShipmentStatus excludes order lines not yet assigned to a
// shipment.
func (s *Service) TotalSoldByShipmentStatus(ctx context.Context) ([]ShipmentStatusTotal, error) {
	out, err := s.aggregates.TotalSoldByShipmentStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("total sold by shipment status: %w", err)
	}
	return out, nil
}

func (s *Service) CustomersWithCompletedOrders(ctx context.Context) ([]domain.Customer, error) {
	out, err := s.aggregates.CustomersWithOrderStatus(ctx, domain.OrderStatusComplete)
	if err != nil {
		return nil, fmt.Errorf("customers with completed orders: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no customers with completed orders")
	}
	return out, nil
}

func (s *Service) CustomersByShipmentStatus(ctx context.Context, status string) ([]domain.Customer, error) {
	st, err := domain.ParseShipmentStatus(status)
	if err != nil {
		return nil, err
	}

	out, err := s.aggregates.CustomersWithShipmentStatus(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("customers by shipment status: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no customers with %s shipments", st)
	}
	return out, nil
}

func (s *Service) OrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	out, err := s.orders.ListByStatus(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}
	return out, nil
}

func (s *Service) OrdersByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	out, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders by customer: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("no orders for customer %d", customerID)
	}
	return out, nil
}

func (s *Service) OrdersByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	out, err := s.orders.ListByCustomerEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders by customer email: %w", err)
	}
	return out, nil
}

func (s *Service) OrdersByStoreName(ctx context.Context, storeName string) ([]domain.Order, error) {
	out, err := s.orders.ListByStoreName(ctx, storeName)
	if err != nil {
		return nil, fmt.Errorf("list orders by store: %w", err)
	}
	return out, nil
}
