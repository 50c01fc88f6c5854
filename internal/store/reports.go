package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jlcaburian/bodega/internal/model"
)

// Low-stock threshold: 10 units, in stored hundredths.
const lowStockThreshold = 1000

// InventoryStats summarizes the current inventory plus the realized
// profit over the caller's date window.
type InventoryStats struct {
	TotalItems      int             `json:"total_items"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCostValue  decimal.Decimal `json:"total_cost_value"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	ActualProfit    decimal.Decimal `json:"actual_profit"`
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
}

// MovementStats counts one movement type over the standard trailing
// windows, plus the monetary value of movements in [start, end].
type MovementStats struct {
	Today      int             `json:"today"`
	Weekly     int             `json:"weekly"`
	Monthly    int             `json:"monthly"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// SellStats counts sales and revenue for the item-operations pages.
type SellStats struct {
	Today           int             `json:"today"`
	ThisWeek        int             `json:"this_week"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	ThisWeekRevenue decimal.Decimal `json:"this_week_revenue"`
}

// CategoryStat is one row of the per-category rollup.
type CategoryStat struct {
	Category      string          `json:"category"`
	Count         int             `json:"count"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// MonthlyTrend is one month of movement counts in the trailing trend.
type MonthlyTrend struct {
	Month     string `json:"month"`
	PullIns   int    `json:"pull_ins"`
	PullOuts  int    `json:"pull_outs"`
	SoldItems int    `json:"sold_items"`
}

// GetInventoryStats computes the inventory rollup. ActualProfit sums
// quantity * (selling_price - costprice) over sales in [start, end].
func GetInventoryStats(ctx context.Context, db *sql.DB, start, end time.Time) (*InventoryStats, error) {
	s := &InventoryStats{}
	var value, costValue, profit int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(amount * price), 0),
		        COALESCE(SUM(amount * costprice), 0),
		        COALESCE(SUM(amount * (price - costprice)), 0)
		 FROM items`,
	).Scan(&s.TotalItems, &value, &costValue, &profit)
	if err != nil {
		return nil, fmt.Errorf("computing inventory totals: %w", err)
	}
	s.TotalValue = fromTenThousandths(value)
	s.TotalCostValue = fromTenThousandths(costValue)
	s.TotalProfit = fromTenThousandths(profit)

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(CASE WHEN amount <= ? THEN 1 END),
		        COUNT(CASE WHEN amount <= 0 THEN 1 END)
		 FROM items`, lowStockThreshold,
	).Scan(&s.LowStockItems, &s.OutOfStockItems)
	if err != nil {
		return nil, fmt.Errorf("computing stock alerts: %w", err)
	}

	var actual int64
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(l.quantity * (l.selling_price - i.costprice)), 0)
		 FROM sell_logs l JOIN items i ON i.id = l.item_id
		 WHERE l.created_at >= ? AND l.created_at <= ?`,
		sqliteTime(start), sqliteTime(end),
	).Scan(&actual)
	if err != nil {
		return nil, fmt.Errorf("computing actual profit: %w", err)
	}
	s.ActualProfit = fromTenThousandths(actual)

	return s, nil
}

// GetPullInStats counts pull-ins today/this week/this month and values
// those inside [start, end] at the item's current selling price.
func GetPullInStats(ctx context.Context, db *sql.DB, start, end time.Time) (*MovementStats, error) {
	return movementStats(ctx, db, "pull_in_logs", start, end)
}

// GetPullOutStats is GetPullInStats for pull-outs.
func GetPullOutStats(ctx context.Context, db *sql.DB, start, end time.Time) (*MovementStats, error) {
	return movementStats(ctx, db, "pull_out_logs", start, end)
}

func movementStats(ctx context.Context, db *sql.DB, table string, start, end time.Time) (*MovementStats, error) {
	s := &MovementStats{}
	var err error

	if s.Today, err = countSince(ctx, db, table, StartOfDay(time.Now())); err != nil {
		return nil, err
	}
	if s.Weekly, err = countSince(ctx, db, table, StartOfWeek(time.Now())); err != nil {
		return nil, err
	}
	if s.Monthly, err = countSince(ctx, db, table, startOfMonth(time.Now())); err != nil {
		return nil, err
	}

	var value int64
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(l.quantity * i.price), 0)
		 FROM `+table+` l JOIN items i ON i.id = l.item_id
		 WHERE l.created_at >= ? AND l.created_at <= ?`,
		sqliteTime(start), sqliteTime(end),
	).Scan(&value)
	if err != nil {
		return nil, fmt.Errorf("valuing %s: %w", table, err)
	}
	s.TotalValue = fromTenThousandths(value)

	return s, nil
}

// GetSellStats counts sales and sums realized revenue for today and the
// current week.
func GetSellStats(ctx context.Context, db *sql.DB) (*SellStats, error) {
	s := &SellStats{}
	day := StartOfDay(time.Now())
	week := StartOfWeek(time.Now())

	var todayRevenue, weekRevenue int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(CASE WHEN created_at >= ? THEN 1 END),
		        COUNT(*),
		        COALESCE(SUM(CASE WHEN created_at >= ? THEN total_amount END), 0),
		        COALESCE(SUM(total_amount), 0)
		 FROM sell_logs WHERE created_at >= ?`,
		sqliteTime(day), sqliteTime(day), sqliteTime(week),
	).Scan(&s.Today, &s.ThisWeek, &todayRevenue, &weekRevenue)
	if err != nil {
		return nil, fmt.Errorf("computing sell stats: %w", err)
	}
	s.TodayRevenue = fromCents(todayRevenue)
	s.ThisWeekRevenue = fromCents(weekRevenue)
	return s, nil
}

// CountAddedSince counts item creation log entries at or after t.
func CountAddedSince(ctx context.Context, db *sql.DB, t time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM add_item_logs WHERE action_type = ? AND created_at >= ?`,
		model.ActionCreated, sqliteTime(t),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting add logs: %w", err)
	}
	return count, nil
}

// TopItemsByValue returns the items with the highest amount * price.
func TopItemsByValue(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items ORDER BY amount * price DESC LIMIT ?`, limit)
}

// TopItemsByProfit returns the items with the highest potential profit.
func TopItemsByProfit(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items ORDER BY amount * (price - costprice) DESC LIMIT ?`, limit)
}

// GetCategoryStats rolls up the current inventory by category, highest
// value first. Items without a category group under the empty string.
func GetCategoryStats(ctx context.Context, db *sql.DB) ([]CategoryStat, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT COALESCE(category, ''), COUNT(*),
		        COALESCE(SUM(amount * price), 0),
		        COALESCE(SUM(amount), 0)
		 FROM items GROUP BY category ORDER BY SUM(amount * price) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("computing category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var s CategoryStat
		var value, quantity int64
		if err := rows.Scan(&s.Category, &s.Count, &value, &quantity); err != nil {
			return nil, fmt.Errorf("scanning category stat: %w", err)
		}
		s.TotalValue = fromTenThousandths(value)
		s.TotalQuantity = fromCents(quantity)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetMonthlyTrends counts movements per calendar month for the trailing
// n months, oldest first.
func GetMonthlyTrends(ctx context.Context, db *sql.DB, months int) ([]MonthlyTrend, error) {
	now := time.Now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var trends []MonthlyTrend
	for i := months - 1; i >= 0; i-- {
		monthStart := current.AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		t := MonthlyTrend{Month: monthStart.Format("Jan 2006")}
		var err error
		if t.PullIns, err = countBetween(ctx, db, "pull_in_logs", monthStart, monthEnd); err != nil {
			return nil, err
		}
		if t.PullOuts, err = countBetween(ctx, db, "pull_out_logs", monthStart, monthEnd); err != nil {
			return nil, err
		}
		if t.SoldItems, err = countBetween(ctx, db, "sell_logs", monthStart, monthEnd); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, nil
}

func countSince(ctx context.Context, db *sql.DB, table string, t time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE created_at >= ?`, sqliteTime(t),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return count, nil
}

func countBetween(ctx context.Context, db *sql.DB, table string, start, end time.Time) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE created_at >= ? AND created_at < ?`,
		sqliteTime(start), sqliteTime(end),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return count, nil
}

// StartOfDay truncates t to midnight UTC (timestamps are stored in UTC).
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the most recent Monday midnight UTC.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// startOfMonth returns the first of t's month, midnight UTC.
func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last second of t's day in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Second)
}
