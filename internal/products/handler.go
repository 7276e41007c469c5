package products

import (
	"log/slog"
	"net/http"

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

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", p.ID)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, p)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, p)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("product updated", "product_id", p.ID, "unit_price", p.UnitPrice.String())
	httpx.WriteJSON(w, h.logger, http.StatusOK, p)
}

func (h *Handler) HandleByBrand(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ByBrand(r.Context(), r.PathValue("brand"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}

func (h *Handler) HandleByColour(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ByColour(r.Context(), r.PathValue("colour"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}

func (h *Handler) HandleByPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.ByPriceRange(r.Context(), q.Get("min"), q.Get("max"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}
