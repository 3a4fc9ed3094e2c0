package interfaces

import (
	"context"

	"github.com/sheikh-saqib/account-ledger/internal/models"
)

// LedgerStore is the backing store behind the ledger.
// Implementations do not validate amounts; the ledger does that before calling them.
type LedgerStore interface {
	CountAccounts(ctx context.Context) (int, error)
	SaveAccount(ctx context.Context, account models.Account) error
	// GetAccount reports found=false when no account has the given id.
	GetAccount(ctx context.Context, accountId string) (account models.Account, found bool, err error)
	// SaveEntry appends the entry and applies its amount to the account balance atomically.
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntriesByAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
}
