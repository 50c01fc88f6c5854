package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/jlcaburian/bodega/internal/model"
	"github.com/jlcaburian/bodega/internal/store"
)

// DashboardHandler serves the statistics dashboard.
type DashboardHandler struct {
	DB *sql.DB
}

const dateLayout = "2006-01-02"

// resolveDateRange parses the optional start_date/end_date query
// parameters. Unparseable input falls back to today; an end before the
// start is clamped to the start's end of day.
func resolveDateRange(r *http.Request) (start, end time.Time) {
	now := time.Now()
	start = store.StartOfDay(now)
	end = store.EndOfDay(now)

	if v := r.URL.Query().Get("start_date"); v != "" {
		if t, err := time.ParseInLocation(dateLayout, v, time.UTC); err == nil {
			start = store.StartOfDay(t)
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if t, err := time.ParseInLocation(dateLayout, v, time.UTC); err == nil {
			end = store.EndOfDay(t)
		}
	}
	if end.Before(start) {
		end = store.EndOfDay(start)
	}
	return start, end
}

// Index handles GET /api/dashboard.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end := resolveDateRange(r)

	inventory, err := store.GetInventoryStats(ctx, h.DB, start, end)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute inventory statistics")
		return
	}

	pullIns, err := store.GetPullInStats(ctx, h.DB, start, end)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute pull-in statistics")
		return
	}

	pullOuts, err := store.GetPullOutStats(ctx, h.DB, start, end)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute pull-out statistics")
		return
	}

	recentPullIns, err := store.RecentPullInLogs(ctx, h.DB, start, end, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent pull-ins")
		return
	}

	recentPullOuts, err := store.RecentPullOutLogs(ctx, h.DB, start, end, 10)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list recent pull-outs")
		return
	}

	topByValue, err := store.TopItemsByValue(ctx, h.DB, 5)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to rank items by value")
		return
	}

	topByProfit, err := store.TopItemsByProfit(ctx, h.DB, 5)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to rank items by profit")
		return
	}

	lowStock, err := store.ListLowStockItems(ctx, h.DB, 5)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list low-stock items")
		return
	}

	categories, err := store.GetCategoryStats(ctx, h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute category statistics")
		return
	}
	if categories == nil {
		categories = []store.CategoryStat{}
	}

	trends, err := store.GetMonthlyTrends(ctx, h.DB, 6)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute monthly trends")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"statistics": map[string]any{
			"inventory": inventory,
			"pull_ins":  pullIns,
			"pull_outs": pullOuts,
		},
		"recent_activities": map[string]any{
			"pull_ins":  emptyIfNilPullIns(recentPullIns),
			"pull_outs": emptyIfNilPullOuts(recentPullOuts),
		},
		"top_items_by_value":  emptyIfNilItems(topByValue),
		"top_items_by_profit": emptyIfNilItems(topByProfit),
		"low_stock_items":     emptyIfNilItems(lowStock),
		"category_stats":      categories,
		"monthly_trends":      trends,
		"units":               model.Units,
		"date_range": map[string]string{
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
		},
	})
}
