package inventory

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

// HandleListStock lists every stock record, or the records of one store when
// the storeid query parameter is present.
func (h *Handler) HandleListStock(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("storeid"); raw != "" {
		storeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || storeID <= 0 {
			httpx.WriteError(w, r, h.logger, domain.BadRequest("invalid storeid"))
			return
		}
		items, err := h.svc.ByStore(r.Context(), storeID)
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, h.logger, http.StatusOK, items)
		return
	}

	items, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("stock listed", "count", len(items))
	httpx.WriteJSON(w, h.logger, http.StatusOK, items)
}

func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathInt64(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	storeID, err := httpx.PathInt64(r, "storeId")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	inv, err := h.svc.ByProductAndStore(r.Context(), productID, storeID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, h.logger, http.StatusOK, inv)
}

func (h *Handler) HandleSetStock(w http.ResponseWriter, r *http.Request) {
	var in StockInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	inv, err := h.svc.SetStock(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("stock set", "store_id", inv.StoreID, "product_id", inv.ProductID, "quantity", inv.Quantity)
	httpx.WriteJSON(w, h.logger, http.StatusOK, inv)
}
