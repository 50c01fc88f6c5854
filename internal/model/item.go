package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a stock item. Amount is the current on-hand quantity
// in the item's unit of measure; all decimal fields carry two fractional
// digits.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Unit        string          `json:"unit"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"costprice"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TotalSellingValue is amount * price.
func (i Item) TotalSellingValue() decimal.Decimal {
	return i.Amount.Mul(i.Price)
}

// TotalCostValue is amount * costprice.
func (i Item) TotalCostValue() decimal.Decimal {
	return i.Amount.Mul(i.CostPrice)
}

// TotalProfit is amount * (price - costprice).
func (i Item) TotalProfit() decimal.Decimal {
	return i.Amount.Mul(i.Price.Sub(i.CostPrice))
}

// Units maps unit keys to display names, in the order the frontend
// shows them.
var Units = map[string]string{
	"pcs":    "Pieces",
	"kg":     "Kilograms",
	"g":      "Grams",
	"l":      "Liters",
	"ml":     "Milliliters",
	"box":    "Box",
	"pack":   "Pack",
	"bottle": "Bottle",
	"bag":    "Bag",
	"roll":   "Roll",
	"meter":  "Meter",
	"cm":     "Centimeter",
	"set":    "Set",
	"pair":   "Pair",
	"dozen":  "Dozen",
	"sks":    "Sack",
}

// ValidUnit reports whether key is a known unit of measure.
func ValidUnit(key string) bool {
	_, ok := Units[key]
	return ok
}

// ItemFields holds the writable fields of an item, as submitted by a
// create or update request.
type ItemFields struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"costprice"`
}

// Validate checks field constraints shared by item create and update.
func (f ItemFields) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("name required")
	}
	if len(f.Name) > 255 {
		return fmt.Errorf("name must be at most 255 characters")
	}
	if !ValidUnit(f.Unit) {
		return fmt.Errorf("unknown unit %q", f.Unit)
	}
	if f.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if f.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if f.CostPrice.IsNegative() {
		return fmt.Errorf("costprice must not be negative")
	}
	return nil
}
