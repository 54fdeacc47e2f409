package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/uptrace/bun"
	"quiz-royale/internal/domain"
)

const poolID = 1

type poolRow struct {
	bun.BaseModel `bun:"table:reward_pool"`

	ID         int       `bun:"id,pk"`
	BalanceWei string    `bun:"balance_wei,type:numeric"`
	UpdatedAt  time.Time `bun:"updated_at"`
}

type claimRow struct {
	bun.BaseModel `bun:"table:reward_claims"`

	Address   string    `bun:"address,pk"`
	TxRef     string    `bun:"tx_ref"`
	AmountWei string    `bun:"amount_wei,type:numeric"`
	ClaimedAt time.Time `bun:"claimed_at"`
}

// Ledger keeps the reward pool in Postgres. Claims lock the pool row so
// concurrent payouts serialize.
type Ledger struct {
	db    *bun.DB
	clock func() time.Time
}

func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{db: db, clock: time.Now}
}

func (l *Ledger) HasClaimed(ctx context.Context, address string) (bool, error) {
	return l.db.NewSelect().Model((*claimRow)(nil)).Where("address = ?", address).Exists(ctx)
}

func (l *Ledger) Balance(ctx context.Context) (*big.Int, error) {
	var row poolRow
	err := l.db.NewSelect().Model(&row).Where("id = ?", poolID).Scan(ctx)
	if err == sql.ErrNoRows {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return parseNumeric(row.BalanceWei)
}

func (l *Ledger) Claim(ctx context.Context, address string, amount *big.Int, txRef string) error {
	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var pool poolRow
		err := tx.NewSelect().Model(&pool).Where("id = ?", poolID).For("UPDATE").Scan(ctx)
		if err == sql.ErrNoRows {
			return domain.ErrInsufficientFunds
		}
		if err != nil {
			return err
		}

		exists, err := tx.NewSelect().Model((*claimRow)(nil)).Where("address = ?", address).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyClaimed
		}

		balance, err := parseNumeric(pool.BalanceWei)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return domain.ErrInsufficientFunds
		}

		now := l.clock().UTC()
		claim := claimRow{Address: address, TxRef: txRef, AmountWei: amount.String(), ClaimedAt: now}
		if _, err := tx.NewInsert().Model(&claim).Exec(ctx); err != nil {
			return fmt.Errorf("record claim: %w", err)
		}
		pool.BalanceWei = new(big.Int).Sub(balance, amount).String()
		pool.UpdatedAt = now
		if _, err := tx.NewUpdate().Model(&pool).Column("balance_wei", "updated_at").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("debit pool: %w", err)
		}
		return nil
	})
}

func (l *Ledger) Fund(ctx context.Context, amount *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pool := poolRow{ID: poolID, BalanceWei: "0", UpdatedAt: l.clock().UTC()}
		if _, err := tx.NewInsert().Model(&pool).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
			return err
		}
		if err := tx.NewSelect().Model(&pool).Where("id = ?", poolID).For("UPDATE").Scan(ctx); err != nil {
			return err
		}
		current, err := parseNumeric(pool.BalanceWei)
		if err != nil {
			return err
		}
		balance = current.Add(current, amount)
		pool.BalanceWei = balance.String()
		pool.UpdatedAt = l.clock().UTC()
		_, err = tx.NewUpdate().Model(&pool).Column("balance_wei", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Claims lists recorded payouts, oldest first.
func (l *Ledger) Claims(ctx context.Context) ([]domain.Claim, error) {
	var rows []claimRow
	if err := l.db.NewSelect().Model(&rows).Order("claimed_at ASC", "address ASC").Scan(ctx); err != nil {
		return nil, err
	}
	claims := make([]domain.Claim, 0, len(rows))
	for _, r := range rows {
		claims = append(claims, domain.Claim{
			Address:   r.Address,
			TxRef:     r.TxRef,
			AmountWei: r.AmountWei,
			ClaimedAt: r.ClaimedAt,
		})
	}
	return claims, nil
}

func parseNumeric(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt numeric balance %q", raw)
	}
	return value, nil
}
