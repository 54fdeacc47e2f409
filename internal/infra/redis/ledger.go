package redis

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-royale/internal/domain"
)

// Ledger keeps the reward pool in Redis:
//
//	HSET reward:claims     {address} {txRef}
//	HSET reward:amounts    {address} {wei}
//	HSET reward:claimed_at {address} {unix}
//	SET  reward:pool       {balance in wei}
//
// Balances are Redis integers, so the pool is limited to int64 wei.
type Ledger struct {
	client *redis.Client
	prefix string
	clock  func() time.Time
}

// claimScript refuses a second claim or an overdraft, otherwise debits the
// pool and records the claim in one atomic step.
var claimScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  return -1
end
local left = redis.call('DECRBY', KEYS[2], ARGV[2])
if left < 0 then
  redis.call('INCRBY', KEYS[2], ARGV[2])
  return -2
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[4])
redis.call('HSET', KEYS[4], ARGV[1], ARGV[2])
return 1
`)

func NewLedger(client *redis.Client) *Ledger {
	return &Ledger{client: client, prefix: "reward", clock: time.Now}
}

func (l *Ledger) HasClaimed(ctx context.Context, address string) (bool, error) {
	return l.client.HExists(ctx, l.claimsKey(), address).Result()
}

func (l *Ledger) Balance(ctx context.Context) (*big.Int, error) {
	raw, err := l.client.Get(ctx, l.poolKey()).Result()
	if err == redis.Nil {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt pool balance %q", raw)
	}
	return balance, nil
}

func (l *Ledger) Claim(ctx context.Context, address string, amount *big.Int, txRef string) error {
	if !amount.IsInt64() {
		return fmt.Errorf("amount %s exceeds redis integer range", amount)
	}
	keys := []string{l.claimsKey(), l.poolKey(), l.claimedAtKey(), l.amountsKey()}
	res, err := claimScript.Run(ctx, l.client, keys, address, amount.Int64(), txRef, l.clock().Unix()).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return domain.ErrAlreadyClaimed
	case -2:
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (l *Ledger) Fund(ctx context.Context, amount *big.Int) (*big.Int, error) {
	if !amount.IsInt64() {
		return nil, fmt.Errorf("amount %s exceeds redis integer range", amount)
	}
	balance, err := l.client.IncrBy(ctx, l.poolKey(), amount.Int64()).Result()
	if err != nil {
		return nil, err
	}
	return big.NewInt(balance), nil
}

// Claims lists recorded payouts, oldest first.
func (l *Ledger) Claims(ctx context.Context) ([]domain.Claim, error) {
	pipe := l.client.Pipeline()
	txRefsCmd := pipe.HGetAll(ctx, l.claimsKey())
	amountsCmd := pipe.HGetAll(ctx, l.amountsKey())
	timesCmd := pipe.HGetAll(ctx, l.claimedAtKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	amounts, times := amountsCmd.Val(), timesCmd.Val()

	claims := make([]domain.Claim, 0, len(txRefsCmd.Val()))
	for address, txRef := range txRefsCmd.Val() {
		claim := domain.Claim{Address: address, TxRef: txRef, AmountWei: amounts[address]}
		if unix, err := strconv.ParseInt(times[address], 10, 64); err == nil {
			claim.ClaimedAt = time.Unix(unix, 0).UTC()
		}
		claims = append(claims, claim)
	}
	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].ClaimedAt.Equal(claims[j].ClaimedAt) {
			return claims[i].ClaimedAt.Before(claims[j].ClaimedAt)
		}
		return claims[i].Address < claims[j].Address
	})
	return claims, nil
}

func (l *Ledger) claimsKey() string    { return l.prefix + ":claims" }
func (l *Ledger) claimedAtKey() string { return l.prefix + ":claimed_at" }
func (l *Ledger) amountsKey() string   { return l.prefix + ":amounts" }
func (l *Ledger) poolKey() string      { return l.prefix + ":pool" }
