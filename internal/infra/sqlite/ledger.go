package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
	"quiz-royale/internal/domain"
)

// Ledger keeps the reward pool in a single SQLite file. Wei amounts are
// stored as decimal text because they exceed int64.
type Ledger struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates the database file if needed and initializes the schema.
// Use ":memory:" for a throwaway ledger.
func Open(dbPath string) (*Ledger, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; also keeps a ":memory:" database on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	l := &Ledger{db: db, clock: time.Now}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return l, nil
}

func (l *Ledger) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS reward_pool (
		id INTEGER PRIMARY KEY,
		balance_wei TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reward_claims (
		address TEXT PRIMARY KEY,
		tx_ref TEXT NOT NULL UNIQUE,
		amount_wei TEXT NOT NULL,
		claimed_at INTEGER NOT NULL
	);
	`
	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) HasClaimed(ctx context.Context, address string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reward_claims WHERE address = ?`, address).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query claim: %w", err)
	}
	return n > 0, nil
}

func (l *Ledger) Balance(ctx context.Context) (*big.Int, error) {
	return balanceOf(ctx, l.db)
}

func (l *Ledger) Claim(ctx context.Context, address string, amount *big.Int, txRef string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM reward_claims WHERE address = ?`, address).Scan(&n); err != nil {
		return fmt.Errorf("query claim: %w", err)
	}
	if n > 0 {
		return domain.ErrAlreadyClaimed
	}

	balance, err := balanceOf(ctx, tx)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}

	now := l.clock().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reward_claims (address, tx_ref, amount_wei, claimed_at) VALUES (?, ?, ?, ?)`,
		address, txRef, amount.String(), now); err != nil {
		return fmt.Errorf("record claim: %w", err)
	}
	remaining := new(big.Int).Sub(balance, amount)
	if _, err := tx.ExecContext(ctx,
		`UPDATE reward_pool SET balance_wei = ?, updated_at = ? WHERE id = 1`,
		remaining.String(), now); err != nil {
		return fmt.Errorf("debit pool: %w", err)
	}
	return tx.Commit()
}

func (l *Ledger) Fund(ctx context.Context, amount *big.Int) (*big.Int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin fund: %w", err)
	}
	defer tx.Rollback()

	balance, err := balanceOf(ctx, tx)
	if err != nil {
		return nil, err
	}
	balance.Add(balance, amount)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reward_pool (id, balance_wei, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET balance_wei = excluded.balance_wei, updated_at = excluded.updated_at`,
		balance.String(), l.clock().Unix()); err != nil {
		return nil, fmt.Errorf("credit pool: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return balance, nil
}

// Claims lists recorded payouts, oldest first.
func (l *Ledger) Claims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT address, tx_ref, amount_wei, claimed_at FROM reward_claims ORDER BY claimed_at, address`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		var (
			c         domain.Claim
			amount    string
			claimedAt int64
		)
		if err := rows.Scan(&c.Address, &c.TxRef, &amount, &claimedAt); err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		c.AmountWei = amount
		c.ClaimedAt = time.Unix(claimedAt, 0)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func balanceOf(ctx context.Context, q queryer) (*big.Int, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT balance_wei FROM reward_pool WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}
	balance, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt balance %q", raw)
	}
	return balance, nil
}
