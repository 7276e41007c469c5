package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/httpx"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, data)
}

func (h *Handler) HandleOrderStatusCounts(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CountOrdersByStatus(r.Context())
	h.respond(w, r, out, err)
}

func (h *Handler) HandleOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.OrdersByStatus(r.Context(), r.PathValue("status"))
	h.respond(w, r, out, err)
}

// HandleOrdersByCustomer accepts either a customer id or an email address.
func (h *Handler) HandleOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	if ref := r.PathValue("id"); strings.Contains(ref, "@") {
		out, err := h.svc.OrdersByCustomerEmail(r.Context(), ref)
		h.respond(w, r, out, err)
		return
	}

	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	out, err := h.svc.OrdersByCustomer(r.Context(), id)
	h.respond(w, r, out, err)
}

func (h *Handler) HandleOrdersByStore(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.OrdersByStoreName(r.Context(), r.PathValue("name"))
	h.respond(w, r, out, err)
}

func (h *Handler) HandleOrdersInDateRange(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.OrdersInDateRange(r.Context(), r.PathValue("start"), r.PathValue("end"))
	h.respond(w, r, out, err)
}

func (h *Handler) HandleCustomersByQuantity(w http.ResponseWriter, r *http.Request) {
	minQty, errMin := strconv.ParseInt(r.PathValue("min"), 10, 64)
	maxQty, errMax := strconv.ParseInt(r.PathValue("max"), 10, 64)
	if errMin != nil || errMax != nil {
		httpx.WriteError(w, r, h.logger, domain.BadRequest("quantity bounds must be integers"))
		return
	}

	out, err := h.svc.CustomersByOrderQuantityBetween(r.Context(), minQty, maxQty)
	h.respond(w, r, out, err)
}

func (h *Handler) HandleShipmentStatusCustomerCounts(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ShipmentStatusWiseCustomerCount(r.Context())
	h.respond(w, r, out, err)
}

func (h *Handler) HandleCustomersByShipmentStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CustomersByShipmentStatus(r.Context(), r.PathValue("status"))
	h.respond(w, r, out, err)
}

func (h *Handler) HandleCustomersWithCompletedOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CustomersWithCompletedOrders(r.Context())
	h.respond(w, r, out, err)
}

func (h *Handler) HandleTotalSoldByShipmentStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.TotalSoldByShipmentStatus(r.Context())
	h.respond(w, r, out, err)
}
