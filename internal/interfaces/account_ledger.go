package interfaces

import (
	"context"

	"github.com/sheikh-saqib/account-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// AccountLedger is the public contract of the ledger. Callers (the HTTP
// handler, cmd/server) depend on this rather than on a concrete type so the
// backing store can change without touching them.
type AccountLedger interface {
	Version() string
	CreateAccount(ctx context.Context, owner string) (string, error)
	Deposit(ctx context.Context, accountId string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, accountId string, amount decimal.Decimal) error
	Balance(ctx context.Context, accountId string) (decimal.Decimal, error)
	// Transactions returns the signed amounts in posting order. The slice is a fresh copy.
	Transactions(ctx context.Context, accountId string) ([]decimal.Decimal, error)
	Account(ctx context.Context, accountId string) (models.Account, error)
	Entries(ctx context.Context, accountId string) ([]models.LedgerEntry, error)
	LedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
}
