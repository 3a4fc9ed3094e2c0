package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a snapshot of an account's state.
// The ledger owns the live state; values of this type are copies.
type Account struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
