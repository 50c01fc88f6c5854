package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action types for item add logs.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// AddItemLog records item creation and administrative quantity
// corrections. Quantity is signed: the initial amount for 'created'
// entries, the delta (new - old) for 'updated' entries.
type AddItemLog struct {
	ID         int64           `json:"id"`
	ItemID     int64           `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
	UserID     *int64          `json:"user_id,omitempty"`
	ActionType string          `json:"action_type"`
	CreatedAt  time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	ItemUnit string `json:"item_unit,omitempty"`
	Username string `json:"username,omitempty"`
}

// PullInLog records a stock receipt.
type PullInLog struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
	UserID    *int64          `json:"user_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	ItemName string `json:"item_name,omitempty"`
	ItemUnit string `json:"item_unit,omitempty"`
	Username string `json:"username,omitempty"`
}

// PullOutLog records a stock dispatch without a sale.
type PullOutLog struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
	UserID    *int64          `json:"user_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	ItemName string `json:"item_name,omitempty"`
	ItemUnit string `json:"item_unit,omitempty"`
	Username string `json:"username,omitempty"`
}

// SellLog records a stock dispatch with its realized revenue.
type SellLog struct {
	ID           int64           `json:"id"`
	ItemID       int64           `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Notes        string          `json:"notes,omitempty"`
	UserID       *int64          `json:"user_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`

	ItemName string `json:"item_name,omitempty"`
	ItemUnit string `json:"item_unit,omitempty"`
	Username string `json:"username,omitempty"`
}
