package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicAccountCreated = "account_created"
	TopicEntryPosted    = "ledger_entry_posted"
)

type AccountCreated struct {
	EventID    string    `json:"event_id"`
	AccountID  string    `json:"account_id"`
	Owner      string    `json:"owner"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EntryPosted is emitted after a deposit or withdrawal has been applied.
type EntryPosted struct {
	EventID    string          `json:"event_id"`
	EntryID    string          `json:"entry_id"`
	AccountID  string          `json:"account_id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}
