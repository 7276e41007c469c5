package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type errorBody struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a bare 500 so driver messages never reach clients.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeErrorBody(w, logger, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	switch de.Kind {
	case domain.KindNotFound:
		writeErrorBody(w, logger, http.StatusNotFound, de.Message, nil)
	case domain.KindValidation:
		writeErrorBody(w, logger, http.StatusBadRequest, "", de.Fields)
	default:
		writeErrorBody(w, logger, http.StatusBadRequest, de.Message, nil)
	}
}

func writeErrorBody(w http.ResponseWriter, logger *slog.Logger, status int, message string, fields map[string]string) {
	WriteJSON(w, logger, status, errorBody{
		Status:           status,
		Error:            http.StatusText(status),
		Message:          message,
		ValidationErrors: fields,
	})
}

// DecodeJSON rejects unknown fields and trailing garbage.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.BadRequest("invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.BadRequest("invalid request body")
	}
	return nil
}

func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, domain.BadRequest("missing %s", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.BadRequest("invalid %s", name)
	}
	return id, nil
}
