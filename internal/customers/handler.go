package customers

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
	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("customer created", "customer_id", c.ID)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, c)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, c)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("customer updated", "customer_id", c.ID)
	httpx.WriteJSON(w, h.logger, http.StatusOK, c)
}

func (h *Handler) HandleByEmail(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.ByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, c)
}

func (h *Handler) HandleByName(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ByName(r.Context(), r.PathValue("name"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, out)
}
