// Package reward implements the reward submission boundary: the contract
// view calls, the claim submission and its user-facing status messages.
package reward

import (
	"context"
	"math/big"

	"quiz-royale/internal/domain"
)

// SentinelAnswer encodes "no selection" in a submitted answer log.
const SentinelAnswer uint8 = 255

// Gateway is the reward contract boundary.
type Gateway interface {
	// HasClaimed reports whether address already received the reward.
	HasClaimed(ctx context.Context, address string) (bool, error)
	// RewardAmount returns the payout of a perfect score, in wei.
	RewardAmount(ctx context.Context) (*big.Int, error)
	// HasSufficientFunds reports whether the pool can cover one payout.
	HasSufficientFunds(ctx context.Context) (bool, error)
	// Submit sends the answer log for address. It never retries.
	Submit(ctx context.Context, address string, answers []uint8) domain.ClaimResult
}

// Ledger stores reward pool state: balance and claimed addresses.
type Ledger interface {
	HasClaimed(ctx context.Context, address string) (bool, error)
	Balance(ctx context.Context) (*big.Int, error)
	// Claim atomically records a payout of amount to address and debits the pool.
	// It returns domain.ErrAlreadyClaimed or domain.ErrInsufficientFunds on refusal.
	Claim(ctx context.Context, address string, amount *big.Int, txRef string) error
	// Fund credits the pool and returns the new balance.
	Fund(ctx context.Context, amount *big.Int) (*big.Int, error)
	// Claims lists recorded payouts, oldest first.
	Claims(ctx context.Context) ([]domain.Claim, error)
}

// EncodeAnswers converts an answer log into the contract's uint8 form.
func EncodeAnswers(answers []int) []uint8 {
	out := make([]uint8, len(answers))
	for i, a := range answers {
		if a < 0 || a > 254 {
			out[i] = SentinelAnswer
			continue
		}
		out[i] = uint8(a)
	}
	return out
}
