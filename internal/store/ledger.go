package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jlcaburian/bodega/internal/model"
)

// ErrItemNotFound is returned by ledger operations on an unknown item.
var ErrItemNotFound = errors.New("item not found")

// InsufficientStockError is returned when a pull-out or sell asks for
// more than the current on-hand amount. The item and its logs are left
// untouched.
type InsufficientStockError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock! Available: %s %s", e.Available.StringFixed(2), e.Unit)
}

// Every ledger operation pairs an item mutation with exactly one log
// insert inside a single transaction, so a stock change can never
// persist unlogged and a log can never outlive a rolled-back change.

// CreateItem inserts a new item with its initial amount and records a
// 'created' log entry for the same quantity.
func CreateItem(ctx context.Context, db *sql.DB, f model.ItemFields, userID *int64) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, description, category, unit, amount, price, costprice)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Description, f.Category, f.Unit,
		cents(f.Amount), cents(f.Price), cents(f.CostPrice),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO add_item_logs (item_id, quantity, notes, user_id, action_type)
		 VALUES (?, ?, ?, ?, ?)`,
		id, cents(f.Amount), "Item created with initial stock", userID, model.ActionCreated,
	)
	if err != nil {
		return nil, fmt.Errorf("logging item creation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, id)
}

// UpdateItem overwrites an item's fields. If the amount changed, an
// 'updated' log entry records the signed delta (new - old) and a note
// naming both values. Administrative corrections do not go through the
// stock check; the HTTP layer rejects negative amounts up front.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, f model.ItemFields, userID *int64) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var oldAmount int64
	err = tx.QueryRowContext(ctx,
		`SELECT amount FROM items WHERE id = ?`, id,
	).Scan(&oldAmount)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading item: %w", err)
	}

	newAmount := cents(f.Amount)
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, category = ?, unit = ?,
		        amount = ?, price = ?, costprice = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		f.Name, f.Description, f.Category, f.Unit,
		newAmount, cents(f.Price), cents(f.CostPrice), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if newAmount != oldAmount {
		notes := fmt.Sprintf("Item quantity updated from %s to %s",
			fromCents(oldAmount).StringFixed(2), fromCents(newAmount).StringFixed(2))
		_, err = tx.ExecContext(ctx,
			`INSERT INTO add_item_logs (item_id, quantity, notes, user_id, action_type)
			 VALUES (?, ?, ?, ?, ?)`,
			id, newAmount-oldAmount, notes, userID, model.ActionUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("logging item update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// PullIn receives stock: amount += quantity, plus a pull-in log entry.
func PullIn(ctx context.Context, db *sql.DB, itemID int64, quantity decimal.Decimal, notes string, userID *int64) (*model.Item, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qty := cents(quantity)
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET amount = amount + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		qty, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("adding stock: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrItemNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pull_in_logs (item_id, quantity, notes, user_id) VALUES (?, ?, ?, ?)`,
		itemID, qty, notes, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("logging pull-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pull-in: %w", err)
	}

	return GetItem(ctx, db, itemID)
}

// PullOut dispatches stock without a sale. The decrement is guarded
// (amount = amount - q only where amount >= q), so concurrent pull-outs
// cannot drive the amount negative.
func PullOut(ctx context.Context, db *sql.DB, itemID int64, quantity decimal.Decimal, notes string, userID *int64) (*model.Item, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qty := cents(quantity)
	if err := decrementStock(ctx, tx, itemID, qty); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pull_out_logs (item_id, quantity, notes, user_id) VALUES (?, ?, ?, ?)`,
		itemID, qty, notes, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("logging pull-out: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pull-out: %w", err)
	}

	return GetItem(ctx, db, itemID)
}

// Sell dispatches stock against a sale. The sell log records the
// realized unit price and total = quantity * sellingPrice, rounded to
// two fractional digits.
func Sell(ctx context.Context, db *sql.DB, itemID int64, quantity, sellingPrice decimal.Decimal, notes string, userID *int64) (*model.Item, decimal.Decimal, error) {
	if !quantity.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("quantity must be positive")
	}
	if sellingPrice.IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("selling price must not be negative")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qty := cents(quantity)
	if err := decrementStock(ctx, tx, itemID, qty); err != nil {
		return nil, decimal.Zero, err
	}

	total := quantity.Mul(sellingPrice).Round(2)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sell_logs (item_id, quantity, selling_price, total_amount, notes, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, qty, cents(sellingPrice), cents(total), notes, userID,
	)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("logging sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("committing sale: %w", err)
	}

	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return item, total, nil
}

// decrementStock atomically subtracts qty from the item's amount,
// failing without side effects when the item is missing or the stock is
// insufficient.
func decrementStock(ctx context.Context, tx *sql.Tx, itemID, qty int64) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET amount = amount - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND amount >= ?`,
		qty, itemID, qty,
	)
	if err != nil {
		return fmt.Errorf("removing stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing stock: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Zero rows: either the item doesn't exist or the stock is short.
	var available int64
	var unit string
	err = tx.QueryRowContext(ctx,
		`SELECT amount, unit FROM items WHERE id = ?`, itemID,
	).Scan(&available, &unit)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("checking available stock: %w", err)
	}

	return &InsufficientStockError{
		Requested: fromCents(qty),
		Available: fromCents(available),
		Unit:      unit,
	}
}
