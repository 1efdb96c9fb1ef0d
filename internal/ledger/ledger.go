// Package ledger is the money-movement capability behind every custody
// operation. Accounts are opaque string identifiers; a transfer debits one
// account and credits another in the caller's transaction, and fails closed
// when the source balance is insufficient.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/apperr"
)

// DBTX is the subset of pgx executable by both a pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Account id helpers. User and escrow accounts are derived from their
// owning record's id so they never collide with platform accounts.

func UserAccount(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func EscrowAccount(escrowID uuid.UUID) string {
	return "escrow:" + escrowID.String()
}

type Ledger struct {
	db DBTX
}

func New(pool *pgxpool.Pool) *Ledger {
	return &Ledger{db: pool}
}

// WithTx returns a Ledger bound to tx so transfers commit or roll back with
// the caller's other writes.
func (l *Ledger) WithTx(tx pgx.Tx) *Ledger {
	return &Ledger{db: tx}
}

// EnsureAccount creates the account with a zero balance if it does not exist.
func (l *Ledger) EnsureAccount(ctx context.Context, account string) error {
	_, err := l.db.Exec(ctx, `
		INSERT INTO ledger_accounts (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, account)
	return err
}

func (l *Ledger) Balance(ctx context.Context, account string) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE id = $1`, account).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Deposit credits an account from outside the ledger (funding top-up).
func (l *Ledger) Deposit(ctx context.Context, account string, amount int64, ref string) error {
	if amount <= 0 {
		return apperr.Validation("deposit amount must be positive")
	}
	if err := l.EnsureAccount(ctx, account); err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, `
		UPDATE ledger_accounts SET balance = balance + $1 WHERE id = $2
	`, amount, account); err != nil {
		return err
	}
	_, err := l.db.Exec(ctx, `
		INSERT INTO ledger_entries (from_account, to_account, amount, ref)
		VALUES ('external:deposit', $1, $2, $3)
	`, account, amount, ref)
	return err
}

// Transfer moves amount from one account to another. The debit is guarded by
// the source balance; an underfunded source yields a transfer error and no
// rows are written. Run inside the caller's transaction for atomicity with
// the surrounding state change.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount int64, ref string) error {
	if amount < 0 {
		return apperr.Validation("transfer amount must be non-negative")
	}
	if amount == 0 {
		return nil
	}
	if from == to {
		return apperr.Validation("transfer source and destination are the same account")
	}

	if err := l.EnsureAccount(ctx, to); err != nil {
		return err
	}

	tag, err := l.db.Exec(ctx, `
		UPDATE ledger_accounts SET balance = balance - $1
		WHERE id = $2 AND balance >= $1
	`, amount, from)
	if err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Transfer("insufficient funds in %s for %d", from, amount)
	}

	if _, err := l.db.Exec(ctx, `
		UPDATE ledger_accounts SET balance = balance + $1 WHERE id = $2
	`, amount, to); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO ledger_entries (from_account, to_account, amount, ref)
		VALUES ($1, $2, $3, $4)
	`, from, to, amount, ref)
	return err
}

// Entry is one row of the transfer history.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	FromAccount string    `json:"from_account"`
	ToAccount   string    `json:"to_account"`
	Amount      int64     `json:"amount"`
	Ref         string    `json:"ref"`
	CreatedAt   int64     `json:"created_at"`
}

// History lists entries touching the account, newest first.
func (l *Ledger) History(ctx context.Context, account string, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
		SELECT id, from_account, to_account, amount, ref, extract(epoch from created_at)::bigint
		FROM ledger_entries
		WHERE from_account = $1 OR to_account = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, account, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FromAccount, &e.ToAccount, &e.Amount, &e.Ref, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
