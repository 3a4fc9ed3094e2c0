package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"fmt"
	"sync" // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/account-ledger/internal/models"                // domain models: Account, LedgerEntry
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// It keeps accounts in a map and entries in a slice, and is safe for concurrent use.
type MemoryLedgerStore struct {
	mu        sync.Mutex                 // protects everything below
	accounts  map[string]*models.Account // account id -> live account state
	entries   []models.LedgerEntry       // every entry of every account, in posting order
	byAccount map[string][]int           // account id -> positions in entries
}

// NewMemoryLedgerStore creates and returns a new, empty MemoryLedgerStore
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts:  make(map[string]*models.Account),
		entries:   make([]models.LedgerEntry, 0),
		byAccount: make(map[string][]int),
	}
}

func (m *MemoryLedgerStore) CountAccounts(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.accounts), nil
}

// SaveAccount stores a new account. Ids are never reused, so saving an id
// that already exists is an error rather than an overwrite.
func (m *MemoryLedgerStore) SaveAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.ID]; exists {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	stored := account // keep our own copy so the caller cannot reach internal state
	m.accounts[account.ID] = &stored
	return nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, accountId string) (models.Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[accountId]
	if !exists {
		return models.Account{}, false, nil
	}
	return *account, true, nil // return a value copy
}

// SaveEntry appends a LedgerEntry and applies its amount to the owning account.
// Both happen under the same lock so balance always equals the sum of entries.
func (m *MemoryLedgerStore) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {

	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits (even if error occurs)

	account, exists := m.accounts[entry.AccountID]
	if !exists {
		return fmt.Errorf("account %s not found", entry.AccountID)
	}

	m.entries = append(m.entries, entry)
	m.byAccount[entry.AccountID] = append(m.byAccount[entry.AccountID], len(m.entries)-1)
	account.Balance = account.Balance.Add(entry.Amount)
	return nil
}

// GetLedgerEntries returns a copy of all ledger entries stored in memory.
// Useful for testing, debugging, and printing ledger state.
func (m *MemoryLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {

	m.mu.Lock()         // lock to prevent concurrent modification while reading
	defer m.mu.Unlock() // unlock automatically at the end

	// create a new slice to copy entries
	copied := make([]models.LedgerEntry, len(m.entries))
	copy(copied, m.entries) // copy all entries to the new slice
	return copied, nil      // return the copy so external code can't modify internal state
}

func (m *MemoryLedgerStore) GetEntriesByAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	positions := m.byAccount[accountId]
	result := make([]models.LedgerEntry, 0, len(positions))
	for _, i := range positions {
		result = append(result, m.entries[i])
	}
	return result, nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
