package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jlcaburian/bodega/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// ledgerError maps a stock-ledger failure to the right status code:
// 404 for unknown items, 422 with the user-facing flash message for
// insufficient stock, 400 for input errors surfaced by the store.
func ledgerError(w http.ResponseWriter, err error) {
	var insufficient *store.InsufficientStockError
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.As(err, &insufficient):
		jsonError(w, http.StatusUnprocessableEntity, insufficient.Error())
	default:
		jsonError(w, http.StatusBadRequest, err.Error())
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
