package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jlcaburian/bodega/internal/model"
)

// Log queries join item name/unit and the acting user's username. The
// user join is LEFT: logs keep a weak reference and survive user
// removal.

// buildLogQuery assembles the shared SELECT for a movement log table.
// extraCols must start with a comma when non-empty.
func buildLogQuery(table, extraCols string, start, end time.Time, limit int) (string, []any) {
	query := `SELECT l.id, l.item_id, l.quantity` + extraCols + `, l.notes, l.user_id, l.created_at,
	                 i.name, i.unit, COALESCE(u.username, '')
	          FROM ` + table + ` l
	          JOIN items i ON i.id = l.item_id
	          LEFT JOIN users u ON u.id = l.user_id`
	var args []any
	if !start.IsZero() {
		query += ` WHERE l.created_at >= ? AND l.created_at <= ?`
		args = append(args, sqliteTime(start), sqliteTime(end))
	}
	query += ` ORDER BY l.created_at DESC, l.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return query, args
}

// RecentAddLogs returns the latest item creation/correction entries.
// Zero start/end means no date filter.
func RecentAddLogs(ctx context.Context, db *sql.DB, start, end time.Time, limit int) ([]model.AddItemLog, error) {
	query, args := buildLogQuery("add_item_logs", ", l.action_type", start, end, limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing add logs: %w", err)
	}
	defer rows.Close()

	var logs []model.AddItemLog
	for rows.Next() {
		var l model.AddItemLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &l.ActionType, &notes, &l.UserID, &l.CreatedAt,
			&l.ItemName, &l.ItemUnit, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning add log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentPullInLogs returns the latest pull-in entries, optionally
// bounded to [start, end].
func RecentPullInLogs(ctx context.Context, db *sql.DB, start, end time.Time, limit int) ([]model.PullInLog, error) {
	query, args := buildLogQuery("pull_in_logs", "", start, end, limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pull-in logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PullInLog
	for rows.Next() {
		var l model.PullInLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &notes, &l.UserID, &l.CreatedAt,
			&l.ItemName, &l.ItemUnit, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning pull-in log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentPullOutLogs returns the latest pull-out entries, optionally
// bounded to [start, end].
func RecentPullOutLogs(ctx context.Context, db *sql.DB, start, end time.Time, limit int) ([]model.PullOutLog, error) {
	query, args := buildLogQuery("pull_out_logs", "", start, end, limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pull-out logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PullOutLog
	for rows.Next() {
		var l model.PullOutLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &notes, &l.UserID, &l.CreatedAt,
			&l.ItemName, &l.ItemUnit, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning pull-out log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentSellLogs returns the latest sell entries, optionally bounded to
// [start, end].
func RecentSellLogs(ctx context.Context, db *sql.DB, start, end time.Time, limit int) ([]model.SellLog, error) {
	query, args := buildLogQuery("sell_logs", ", l.selling_price, l.total_amount", start, end, limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sell logs: %w", err)
	}
	defer rows.Close()

	var logs []model.SellLog
	for rows.Next() {
		var l model.SellLog
		var qty, price, total int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &price, &total, &notes, &l.UserID, &l.CreatedAt,
			&l.ItemName, &l.ItemUnit, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning sell log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.SellingPrice = fromCents(price)
		l.TotalAmount = fromCents(total)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ItemHistory bundles every movement log for one item.
type ItemHistory struct {
	AddLogs     []model.AddItemLog `json:"add_logs"`
	PullInLogs  []model.PullInLog  `json:"pull_in_logs"`
	PullOutLogs []model.PullOutLog `json:"pull_out_logs"`
	SellLogs    []model.SellLog    `json:"sell_logs"`
}

// GetItemHistory returns the complete movement history of an item.
func GetItemHistory(ctx context.Context, db *sql.DB, itemID int64) (*ItemHistory, error) {
	h := &ItemHistory{}
	var err error

	if h.AddLogs, err = itemAddLogs(ctx, db, itemID); err != nil {
		return nil, err
	}
	if h.PullInLogs, err = itemPullInLogs(ctx, db, itemID); err != nil {
		return nil, err
	}
	if h.PullOutLogs, err = itemPullOutLogs(ctx, db, itemID); err != nil {
		return nil, err
	}
	if h.SellLogs, err = itemSellLogs(ctx, db, itemID); err != nil {
		return nil, err
	}
	return h, nil
}

func itemAddLogs(ctx context.Context, db *sql.DB, itemID int64) ([]model.AddItemLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.quantity, l.action_type, l.notes, l.user_id, l.created_at,
		        COALESCE(u.username, '')
		 FROM add_item_logs l LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.item_id = ? ORDER BY l.created_at DESC, l.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting add logs: %w", err)
	}
	defer rows.Close()

	var logs []model.AddItemLog
	for rows.Next() {
		var l model.AddItemLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &l.ActionType, &notes, &l.UserID, &l.CreatedAt, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning add log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func itemPullInLogs(ctx context.Context, db *sql.DB, itemID int64) ([]model.PullInLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.quantity, l.notes, l.user_id, l.created_at,
		        COALESCE(u.username, '')
		 FROM pull_in_logs l LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.item_id = ? ORDER BY l.created_at DESC, l.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting pull-in logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PullInLog
	for rows.Next() {
		var l model.PullInLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &notes, &l.UserID, &l.CreatedAt, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning pull-in log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func itemPullOutLogs(ctx context.Context, db *sql.DB, itemID int64) ([]model.PullOutLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.quantity, l.notes, l.user_id, l.created_at,
		        COALESCE(u.username, '')
		 FROM pull_out_logs l LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.item_id = ? ORDER BY l.created_at DESC, l.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting pull-out logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PullOutLog
	for rows.Next() {
		var l model.PullOutLog
		var qty int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &notes, &l.UserID, &l.CreatedAt, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning pull-out log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func itemSellLogs(ctx context.Context, db *sql.DB, itemID int64) ([]model.SellLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.item_id, l.quantity, l.selling_price, l.total_amount, l.notes, l.user_id, l.created_at,
		        COALESCE(u.username, '')
		 FROM sell_logs l LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.item_id = ? ORDER BY l.created_at DESC, l.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting sell logs: %w", err)
	}
	defer rows.Close()

	var logs []model.SellLog
	for rows.Next() {
		var l model.SellLog
		var qty, price, total int64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &qty, &price, &total, &notes, &l.UserID, &l.CreatedAt, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning sell log: %w", err)
		}
		l.Quantity = fromCents(qty)
		l.SellingPrice = fromCents(price)
		l.TotalAmount = fromCents(total)
		l.Notes = notes.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
