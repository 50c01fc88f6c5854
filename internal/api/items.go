package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlcaburian/bodega/internal/model"
	"github.com/jlcaburian/bodega/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// List handles GET /api/items: the full catalog plus the add-item page
// statistics (creation counts, inventory totals, recent additions).
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := store.ListItems(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	now := time.Now()
	todayAdded, err := store.CountAddedSince(ctx, h.DB, store.StartOfDay(now))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	weekAdded, err := store.CountAddedSince(ctx, h.DB, store.StartOfWeek(now))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	totalValue, totalCostValue, totalProfit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		totalValue = totalValue.Add(item.TotalSellingValue())
		totalCostValue = totalCostValue.Add(item.TotalCostValue())
		totalProfit = totalProfit.Add(item.TotalProfit())
	}

	recent, err := store.RecentAddLogs(ctx, h.DB, time.Time{}, time.Time{}, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent additions")
		return
	}
	if recent == nil {
		recent = []model.AddItemLog{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items": items,
		"units": model.Units,
		"statistics": map[string]any{
			"today_added":      todayAdded,
			"this_week_added":  weekAdded,
			"total_items":      len(items),
			"total_value":      totalValue,
			"total_cost_value": totalCostValue,
			"total_profit":     totalProfit,
		},
		"recent_additions": recent,
	})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.ItemFields
	if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := fields.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, fields, actorID(r.Context()))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "item", item.Name, "amount", item.Amount)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var fields model.ItemFields
	if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := fields.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, id, fields, actorID(r.Context()))
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	err = store.DeleteItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetLogs handles GET /api/items/{id}/logs (full movement history).
func (h *ItemsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}

	jsonResponse(w, http.StatusOK, history)
}
