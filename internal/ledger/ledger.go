package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger/internal/models"
	"github.com/sheikh-saqib/account-ledger/internal/models/events"
	"github.com/shopspring/decimal"
)

const (
	// Version is the version of the ledger API.
	Version = "1"

	// AccountPrefix is prepended to the sequence number of every account id.
	AccountPrefix = "ACC"

	// MaxAmountScale bounds the decimal exponent of an amount in both
	// directions. Amounts outside it are rejected before any arithmetic.
	MaxAmountScale = 18

	eventQueueSize = 256
)

type pendingEvent struct {
	topic string
	event any
}

// Ledger is the sole owner of account state.
// It holds a reference to the storage layer, an optional event publisher and
// a single lock that serializes every operation on the ledger.
//
// Events are queued while the lock is held and sent by one goroutine, so
// they reach the publisher in commit order without a slow publisher
// holding up the ledger.
type Ledger struct {
	store     interfaces.LedgerStore    // where accounts and entries live; memory, postgres, ...
	publisher interfaces.EventPublisher // may be nil, in which case no events are sent
	mu        sync.RWMutex              // writers take Lock, readers RLock
	now       func() time.Time

	events    chan pendingEvent // nil when there is no publisher; guarded by mu
	drained   chan struct{}
	closeOnce sync.Once
}

// NewLedger creates a Ledger over the given store.
// publisher may be nil. When it is not, call Close to flush queued events.
func NewLedger(store interfaces.LedgerStore, publisher interfaces.EventPublisher) *Ledger {
	l := &Ledger{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	if publisher != nil {
		l.events = make(chan pendingEvent, eventQueueSize)
		l.drained = make(chan struct{})
		go l.drainEvents(l.events)
	}
	return l
}

// Close stops accepting events and waits until every queued event has been
// handed to the publisher. Operations keep working after Close; they just
// no longer emit events.
func (l *Ledger) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		if l.events != nil {
			close(l.events)
			l.events = nil
		}
		l.mu.Unlock()
	})
	if l.drained != nil {
		<-l.drained
	}
	return nil
}

func (l *Ledger) Version() string {
	return Version
}

// CreateAccount opens a new account with a zero balance and returns its id.
// Ids are ACC-1, ACC-2, ... in creation order. The count and the save happen
// under the write lock so two callers can never be handed the same id.
// The owner is stored as given; it is not validated.
func (l *Ledger) CreateAccount(ctx context.Context, owner string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count, err := l.store.CountAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("count accounts: %w", err)
	}

	account := models.Account{
		ID:        fmt.Sprintf("%s-%d", AccountPrefix, count+1),
		Owner:     owner,
		Balance:   decimal.Zero,
		CreatedAt: l.now(),
	}
	if err := l.store.SaveAccount(ctx, account); err != nil {
		return "", fmt.Errorf("save account %s: %w", account.ID, err)
	}

	l.enqueue(events.TopicAccountCreated, events.AccountCreated{
		EventID:    uuid.New().String(),
		AccountID:  account.ID,
		Owner:      account.Owner,
		OccurredAt: account.CreatedAt,
	})
	return account.ID, nil
}

// Deposit credits amount to the account.
// Fails with InvalidAccount, then NonPositiveAmount, then AmountOutOfRange.
func (l *Ledger) Deposit(ctx context.Context, accountId string, amount decimal.Decimal) error {
	return l.post(ctx, accountId, amount, models.EntryDeposit)
}

// Withdraw debits amount from the account.
// Fails with InvalidAccount, then NonPositiveAmount, then AmountOutOfRange,
// then InsufficientFunds.
// On failure the account is left untouched.
func (l *Ledger) Withdraw(ctx context.Context, accountId string, amount decimal.Decimal) error {
	return l.post(ctx, accountId, amount, models.EntryWithdrawal)
}

// post validates and records one entry, then queues its event.
func (l *Ledger) post(ctx context.Context, accountId string, amount decimal.Decimal, entryType models.EntryType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.getAccount(ctx, accountId)
	if err != nil {
		return err
	}

	// Sign and Exponent are O(1); nothing below may rescale an out-of-range amount.
	if amount.Sign() <= 0 {
		return nonPositiveAmount(amount)
	}
	if exp := amount.Exponent(); exp < -MaxAmountScale || exp > MaxAmountScale {
		return amountOutOfRange(exp)
	}

	signed := amount
	if entryType == models.EntryWithdrawal {
		if amount.GreaterThan(account.Balance) {
			return insufficientFunds(accountId, amount, account.Balance)
		}
		signed = amount.Neg()
	}

	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		AccountID: accountId,
		Type:      entryType,
		Amount:    signed,
		CreatedAt: l.now(),
	}
	if err := l.store.SaveEntry(ctx, entry); err != nil {
		return fmt.Errorf("save %s entry for %s: %w", entryType, accountId, err)
	}

	l.enqueue(events.TopicEntryPosted, events.EntryPosted{
		EventID:    uuid.New().String(),
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Type:       string(entry.Type),
		Amount:     entry.Amount,
		Balance:    account.Balance.Add(signed),
		OccurredAt: entry.CreatedAt,
	})
	return nil
}

func (l *Ledger) Balance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	account, err := l.Account(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Account returns a snapshot of the account, including its owner.
func (l *Ledger) Account(ctx context.Context, accountId string) (models.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.getAccount(ctx, accountId)
}

func (l *Ledger) Transactions(ctx context.Context, accountId string) ([]decimal.Decimal, error) {
	entries, err := l.Entries(ctx, accountId)
	if err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, len(entries))
	for i, entry := range entries {
		amounts[i] = entry.Amount
	}
	return amounts, nil
}

// Entries returns the account's full entries in posting order.
func (l *Ledger) Entries(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := l.getAccount(ctx, accountId); err != nil {
		return nil, err
	}

	entries, err := l.store.GetEntriesByAccount(ctx, accountId)
	if err != nil {
		return nil, fmt.Errorf("load entries for %s: %w", accountId, err)
	}
	return entries, nil
}

// LedgerEntries returns every entry of every account in posting order.
func (l *Ledger) LedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ledgerEntries, err := l.store.GetLedgerEntries(ctx)
	if err != nil {
		return []models.LedgerEntry{}, fmt.Errorf("load ledger entries: %w", err)
	}
	return ledgerEntries, nil
}

// getAccount must be called with l.mu held.
func (l *Ledger) getAccount(ctx context.Context, accountId string) (models.Account, error) {
	account, found, err := l.store.GetAccount(ctx, accountId)
	if err != nil {
		return models.Account{}, fmt.Errorf("load account %s: %w", accountId, err)
	}
	if !found {
		return models.Account{}, invalidAccount(accountId)
	}
	return account, nil
}

// enqueue must be called with l.mu held for writing, right after the change
// it describes was committed. A full queue blocks the caller.
func (l *Ledger) enqueue(topic string, event any) {
	if l.events == nil {
		return
	}
	l.events <- pendingEvent{topic: topic, event: event}
}

// drainEvents hands queued events to the publisher one at a time. The
// operations they describe are already committed, so a failure is logged
// and not returned.
func (l *Ledger) drainEvents(queue <-chan pendingEvent) {
	defer close(l.drained)
	for ev := range queue {
		if err := l.publisher.Publish(ev.topic, ev.event); err != nil {
			log.Printf("ledger: publish to %s failed: %v", ev.topic, err)
		}
	}
}

var _ interfaces.AccountLedger = (*Ledger)(nil)
