package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlcaburian/bodega/internal/model"
	"github.com/jlcaburian/bodega/internal/store"
)

// LedgerHandler handles the stock movement endpoints (pull-in,
// pull-out, sell) and their statistics pages.
type LedgerHandler struct {
	DB *sql.DB
}

type movementRequest struct {
	ItemID   int64           `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes"`
}

type sellRequest struct {
	ItemID       int64           `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Notes        string          `json:"notes"`
}

// PullIn handles POST /api/pull-in.
func (h *LedgerHandler) PullIn(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 || !req.Quantity.IsPositive() {
		jsonError(w, http.StatusBadRequest, "item_id and a positive quantity are required")
		return
	}

	item, err := store.PullIn(r.Context(), h.DB, req.ItemID, req.Quantity, req.Notes, actorID(r.Context()))
	if err != nil {
		ledgerError(w, err)
		return
	}

	slog.Info("stock pulled in", "item", item.Name, "quantity", req.Quantity, "amount", item.Amount)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item pulled in successfully!",
		"item":    item,
	})
}

// PullOut handles POST /api/pull-out.
func (h *LedgerHandler) PullOut(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 || !req.Quantity.IsPositive() {
		jsonError(w, http.StatusBadRequest, "item_id and a positive quantity are required")
		return
	}

	item, err := store.PullOut(r.Context(), h.DB, req.ItemID, req.Quantity, req.Notes, actorID(r.Context()))
	if err != nil {
		ledgerError(w, err)
		return
	}

	slog.Info("stock pulled out", "item", item.Name, "quantity", req.Quantity, "amount", item.Amount)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item pulled out successfully!",
		"item":    item,
	})
}

// Sell handles POST /api/sell-item.
func (h *LedgerHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 || !req.Quantity.IsPositive() {
		jsonError(w, http.StatusBadRequest, "item_id and a positive quantity are required")
		return
	}
	if req.SellingPrice.IsNegative() {
		jsonError(w, http.StatusBadRequest, "selling_price must not be negative")
		return
	}

	item, total, err := store.Sell(r.Context(), h.DB, req.ItemID, req.Quantity, req.SellingPrice, req.Notes, actorID(r.Context()))
	if err != nil {
		ledgerError(w, err)
		return
	}

	slog.Info("stock sold", "item", item.Name, "quantity", req.Quantity, "revenue", total)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item sold successfully! Revenue: " + total.StringFixed(2),
		"item":    item,
		"total":   total,
	})
}

// PullInPage handles GET /api/pull-in: in-stock items, receipt
// statistics, and recent activity for the pull-in screen.
func (h *LedgerHandler) PullInPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := store.ListItems(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	today := store.StartOfDay(time.Now())
	stats, err := store.GetPullInStats(ctx, h.DB, today, store.EndOfDay(time.Now()))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	recent, err := store.RecentPullInLogs(ctx, h.DB, time.Time{}, time.Time{}, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent activity")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items":           emptyIfNilItems(items),
		"units":           model.Units,
		"statistics":      stats,
		"recent_activity": emptyIfNilPullIns(recent),
	})
}

// PullOutPage handles GET /api/pull-out.
func (h *LedgerHandler) PullOutPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := store.ListItemsInStock(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	stats, err := store.GetPullOutStats(ctx, h.DB, store.StartOfDay(time.Now()), store.EndOfDay(time.Now()))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	recent, err := store.RecentPullOutLogs(ctx, h.DB, time.Time{}, time.Time{}, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent activity")
		return
	}

	lowStock, err := store.ListLowStockItems(ctx, h.DB, 0)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list low-stock items")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items":           emptyIfNilItems(items),
		"units":           model.Units,
		"statistics":      stats,
		"recent_activity": emptyIfNilPullOuts(recent),
		"low_stock_items": emptyIfNilItems(lowStock),
	})
}

// SellPage handles GET /api/sell-item.
func (h *LedgerHandler) SellPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := store.ListItemsInStock(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	stats, err := store.GetSellStats(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	recent, err := store.RecentSellLogs(ctx, h.DB, time.Time{}, time.Time{}, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent activity")
		return
	}
	if recent == nil {
		recent = []model.SellLog{}
	}

	lowStock, err := store.ListLowStockItems(ctx, h.DB, 0)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list low-stock items")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items":           emptyIfNilItems(items),
		"units":           model.Units,
		"statistics":      stats,
		"recent_activity": recent,
		"low_stock_items": emptyIfNilItems(lowStock),
	})
}

func emptyIfNilItems(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}

func emptyIfNilPullIns(logs []model.PullInLog) []model.PullInLog {
	if logs == nil {
		return []model.PullInLog{}
	}
	return logs
}

func emptyIfNilPullOuts(logs []model.PullOutLog) []model.PullOutLog {
	if logs == nil {
		return []model.PullOutLog{}
	}
	return logs
}
