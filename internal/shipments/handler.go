package shipments

import (
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in ShipmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	s, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("shipment created", "shipment_id", s.ID, "customer_id", s.CustomerID)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, s)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, s)
}

// HandleList narrows to one customer's shipments when ?customerid is set.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("customerid")
	if raw == "" {
		out, err := h.svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, h.logger, http.StatusOK, out)
		return
	}

	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || customerID <= 0 {
		httpx.WriteError(w, r, h.logger, domain.BadRequest("invalid customerid"))
		return
	}

	out, err := h.svc.ByCustomer(r.Context(), customerID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	s, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("shipment status updated", "shipment_id", s.ID, "status", s.Status)
	httpx.WriteJSON(w, h.logger, http.StatusOK, s)
}

func (h *Handler) HandleAssignItems(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var in AssignInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	out, err := h.svc.AssignItems(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("order items assigned to shipment", "shipment_id", out.ShipmentID,
		"order_id", out.OrderID, "lines", len(out.LineItemIDs))
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}
