package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/mail"
	"github.com/joao-fontenele/storefront-orders/internal/messaging"
)

// Sender is satisfied by *mail.Client.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Handler turns order events into customer emails.
type Handler struct {
	sender Sender
	logger *slog.Logger
}

func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{
		sender: sender,
		logger: logger,
	}
}

// Handle drops events it cannot act on and returns an error only when the
// email could not be sent, so the message is retried.
func (h *Handler) Handle(ctx context.Context, d messaging.Delivery) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(d.Payload, &event); err != nil {
		h.logger.Error("dropping malformed order event", "error", err, "key", d.Key)
		return nil
	}

	eventType := d.EventType
	if eventType == "" {
		eventType = event.Type
	}

	msg, ok := compose(eventType, event)
	if !ok {
		h.logger.Debug("ignoring event", "type", eventType, "order_id", event.OrderID)
		return nil
	}
	if msg.To == "" {
		h.logger.Warn("order event has no customer email", "type", eventType, "order_id", event.OrderID)
		return nil
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		h.logger.Error("failed to send email", "error", err, "type", eventType, "order_id", event.OrderID)
		return fmt.Errorf("send %s email for order %d: %w", eventType, event.OrderID, err)
	}

	h.logger.Info("customer notified", "type", eventType, "order_id", event.OrderID)
	return nil
}

func compose(eventType string, event domain.OrderEvent) (mail.Message, bool) {
	switch eventType {
	case domain.EventOrderPlaced:
		return mail.Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Order Confirmation: #%d", event.OrderID),
			Body: fmt.Sprintf("Your order %d with %d line items totalling %s has been received and is %s.",
				event.OrderID, len(event.Items), event.Total, event.Status),
		}, true
	case domain.EventOrderCancelled:
		return mail.Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Order Cancelled: #%d", event.OrderID),
			Body:    fmt.Sprintf("Your order %d has been cancelled.", event.OrderID),
		}, true
	default:
		return mail.Message{}, false
	}
}
