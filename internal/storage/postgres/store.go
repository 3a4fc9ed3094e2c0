package postgres

import (
	"context"
	"database/sql"
	"fmt"

	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/account-ledger/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	balance    NUMERIC NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL REFERENCES accounts(id),
	entry_type TEXT NOT NULL,
	amount     NUMERIC NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS ledger_entries_account_seq ON ledger_entries (account_id, seq);
`

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Migrate creates the tables if they do not exist yet.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresLedgerStore) CountAccounts(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM accounts`

	var count int
	if err := p.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PostgresLedgerStore) SaveAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, owner, balance, created_at)
	VALUES ($1,$2,$3,$4)`

	_, err := p.db.ExecContext(ctx, query, account.ID, account.Owner, account.Balance, account.CreatedAt)
	return err
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, accountId string) (models.Account, bool, error) {
	const query = `SELECT id, owner, balance, created_at FROM accounts WHERE id = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, accountId).Scan(
		&account.ID,
		&account.Owner,
		&account.Balance,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, err
	}
	return account, true, nil
}

// SaveEntry inserts the entry and moves the balance in one database transaction.
func (p *PostgresLedgerStore) SaveEntry(ctx context.Context, entry models.LedgerEntry) (err error) {
	const insertEntry = `INSERT INTO ledger_entries (id, account_id, entry_type, amount, created_at)
	VALUES ($1,$2,$3,$4,$5)`
	const updateBalance = `UPDATE accounts SET balance = balance + $1 WHERE id = $2`

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	res, err := dbTx.ExecContext(ctx, updateBalance, entry.Amount, entry.AccountID)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		err = fmt.Errorf("account %s not found", entry.AccountID)
		return err
	}

	_, err = dbTx.ExecContext(ctx, insertEntry, entry.ID, entry.AccountID, string(entry.Type), entry.Amount, entry.CreatedAt)
	if err != nil {
		return err
	}

	return dbTx.Commit()
}

func (p *PostgresLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {

	const query = `SELECT id, account_id, entry_type, amount, created_at FROM ledger_entries ORDER BY seq`

	return p.queryEntries(ctx, query)
}

func (p *PostgresLedgerStore) GetEntriesByAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, entry_type, amount, created_at FROM ledger_entries
	WHERE account_id = $1 ORDER BY seq`

	return p.queryEntries(ctx, query, accountId)
}

func (p *PostgresLedgerStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)

	for rows.Next() {
		var entry models.LedgerEntry
		var entryType string
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entryType,
			&entry.Amount,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.Type = models.EntryType(entryType)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
