package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jlcaburian/bodega/internal/model"
)

const itemColumns = `id, name, description, category, unit, amount, price, costprice, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, category sql.NullString
	var amount, price, costprice int64
	err := row.Scan(&item.ID, &item.Name, &description, &category, &item.Unit,
		&amount, &price, &costprice, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Category = category.String
	item.Amount = fromCents(amount)
	item.Price = fromCents(price)
	item.CostPrice = fromCents(costprice)
	return item, nil
}

// GetItem returns an item by ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, newest first.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC`)
}

// ListItemsInStock returns items with a positive on-hand amount,
// ordered by name.
func ListItemsInStock(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items WHERE amount > 0 ORDER BY name`)
}

// ListLowStockItems returns in-stock items at or below the low-stock
// threshold (10 units), lowest first. A limit of 0 means no limit.
func ListLowStockItems(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
	          WHERE amount <= ? AND amount > 0 ORDER BY amount`
	args := []any{lowStockThreshold}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return queryItems(ctx, db, query, args...)
}

// DeleteItem removes an item permanently; its movement logs are removed
// with it via the cascading foreign keys.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
