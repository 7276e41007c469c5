package mail

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/httpx"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (m Message) validate() error {
	fields := map[string]string{}
	if addr, err := netmail.ParseAddress(m.To); err != nil || addr.Address != strings.TrimSpace(m.To) {
		fields["to"] = "a valid email address is required"
	}
	if strings.TrimSpace(m.Subject) == "" {
		fields["subject"] = "subject is required"
	}
	return domain.Invalid(fields)
}

type Receipt struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// Handler accepts messages and pretends to deliver them after a short delay.
type Handler struct {
	logger *slog.Logger
	delay  func() time.Duration
}

type Option func(*Handler)

func WithDelay(delay func() time.Duration) Option {
	return func(h *Handler) {
		h.delay = delay
	}
}

func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger: logger,
		delay: func() time.Duration {
			return time.Duration(50+rand.IntN(151)) * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httpx.DecodeJSON(r, &msg); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if err := msg.validate(); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	if err := sleep(r.Context(), h.delay()); err != nil {
		h.logger.Warn("send aborted", "to", msg.To, "error", err)
		return
	}

	receipt := Receipt{Status: "sent", MessageID: uuid.NewString()}
	h.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "message_id", receipt.MessageID)
	httpx.WriteJSON(w, h.logger, http.StatusOK, receipt)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
