package domain

import "time"

const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is published after an order transaction commits.
type OrderEvent struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	StoreID    int64       `json:"store_id"`
	Email      string      `json:"email"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	Total      string      `json:"total"`
	Timestamp  time.Time   `json:"timestamp"`
}

func (e OrderEvent) EventType() string {
	return e.Type
}
