package orders

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-orders/internal/httpx"
)

type Handler struct {
	workflow *Workflow
	logger   *slog.Logger
}

func NewHandler(workflow *Workflow, logger *slog.Logger) *Handler {
	return &Handler{
		workflow: workflow,
		logger:   logger,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.workflow.CreateOrder(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.workflow.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	details, err := h.workflow.GetOrderDetails(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, details)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.workflow.CancelOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.workflow.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}
