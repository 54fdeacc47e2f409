package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"quiz-royale/internal/domain"
)

// Ledger is an in-process reward pool, useful for development and tests.
type Ledger struct {
	mu      sync.Mutex
	balance *big.Int
	claims  map[string]domain.Claim
	clock   func() time.Time
}

func NewLedger(initial *big.Int) *Ledger {
	balance := new(big.Int)
	if initial != nil {
		balance.Set(initial)
	}
	return &Ledger{
		balance: balance,
		claims:  make(map[string]domain.Claim),
		clock:   time.Now,
	}
}

func (l *Ledger) HasClaimed(_ context.Context, address string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.claims[address]
	return ok, nil
}

func (l *Ledger) Balance(_ context.Context) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance), nil
}

func (l *Ledger) Claim(_ context.Context, address string, amount *big.Int, txRef string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.claims[address]; ok {
		return domain.ErrAlreadyClaimed
	}
	if l.balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	l.balance.Sub(l.balance, amount)
	l.claims[address] = domain.Claim{
		Address:   address,
		TxRef:     txRef,
		AmountWei: amount.String(),
		ClaimedAt: l.clock(),
	}
	return nil
}

func (l *Ledger) Fund(_ context.Context, amount *big.Int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance.Add(l.balance, amount)
	return new(big.Int).Set(l.balance), nil
}

// Claims lists recorded payouts, oldest first.
func (l *Ledger) Claims(_ context.Context) ([]domain.Claim, error) {
	l.mu.Lock()
	claims := make([]domain.Claim, 0, len(l.claims))
	for _, c := range l.claims {
		claims = append(claims, c)
	}
	l.mu.Unlock()

	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].ClaimedAt.Equal(claims[j].ClaimedAt) {
			return claims[i].ClaimedAt.Before(claims[j].ClaimedAt)
		}
		return claims[i].Address < claims[j].Address
	})
	return claims, nil
}
