package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusComplete  OrderStatus = "COMPLETE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusPending,
	OrderStatusComplete,
	OrderStatusCancelled,
}

// OrderStatuses lists every order status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return slices.Clone(orderStatuses)
}

// ParseOrderStatus accepts any letter case and rejects values outside the
// closed set with ErrInvalidOrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range orderStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", ErrInvalidOrderStatus
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusComplete || s == OrderStatusCancelled
}

// CanTransitionTo applies the order lifecycle. Orders only move forward
// through NEW, PENDING and a terminal status; staying put is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OrderStatusNew:
		return next == OrderStatusPending || next.Terminal()
	case OrderStatusPending:
		return next.Terminal()
	default:
		return false
	}
}

type OrderItem struct {
	LineItemID int             `json:"line_item_id"`
	ProductID  int64           `json:"product_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ShipmentID *int64          `json:"shipment_id,omitempty"`
}

// Subtotal is the frozen unit price times the ordered quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	StoreID    int64       `json:"store_id"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `json:"items"`
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderLine is a requested product/quantity pair before it is priced and numbered.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type LineItemDetail struct {
	LineItemID     int             `json:"line_item_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	ShipmentStatus *ShipmentStatus `json:"shipment_status"`
}

type OrderDetails struct {
	OrderID        int64            `json:"order_id"`
	OrderStatus    OrderStatus      `json:"order_status"`
	StoreName      string           `json:"store_name"`
	ShipmentStatus *ShipmentStatus  `json:"shipment_status"`
	Items          []LineItemDetail `json:"items"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
}
