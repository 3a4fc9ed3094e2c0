package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tells whether an entry credited or debited its account
type EntryType string

const (
	EntryDeposit    EntryType = "deposit"
	EntryWithdrawal EntryType = "withdrawal"
)

// LedgerEntry represents a single history record for an account.
// Entries are append-only: once posted they are never changed or reordered.
type LedgerEntry struct {
	ID        string          `json:"id"`         // unique identifier (uuid)
	AccountID string          `json:"account_id"` // which account this entry belongs to
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"` // signed: positive for deposits, negative for withdrawals
	CreatedAt time.Time       `json:"created_at"`
}
