package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/redis/go-redis/v9"
	"quiz-royale/internal/config"
	"quiz-royale/internal/infra/memory"
	"quiz-royale/internal/infra/postgres"
	infraredis "quiz-royale/internal/infra/redis"
	"quiz-royale/internal/infra/sqlite"
	"quiz-royale/internal/reward"
)

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// openLedger builds the reward ledger named by reward.ledger. It returns a
// nil ledger for "none"; the close func is always safe to call.
func openLedger(cfg config.Config, redisClient *redis.Client) (reward.Ledger, func(), error) {
	noop := func() {}
	switch cfg.Reward.Ledger {
	case config.LedgerNone:
		return nil, noop, nil
	case config.LedgerMemory:
		return memory.NewLedger(nil), noop, nil
	case config.LedgerRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis ledger requires redis.addr")
		}
		return infraredis.NewLedger(redisClient), noop, nil
	case config.LedgerPostgres:
		db := openBun(cfg.Postgres.URL)
		return postgres.NewLedger(db), func() { db.Close() }, nil
	case config.LedgerSQLite:
		ledger, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return ledger, func() { ledger.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown reward ledger %q", cfg.Reward.Ledger)
	}
}

// seedPool credits initial_pool_wei into an empty pool.
func seedPool(ctx context.Context, ledger reward.Ledger, raw string) (*big.Int, error) {
	if raw == "" {
		return nil, nil
	}
	amount, err := reward.ParseWei(raw)
	if err != nil {
		return nil, err
	}
	balance, err := ledger.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if balance.Sign() > 0 || amount.Sign() == 0 {
		return balance, nil
	}
	return ledger.Fund(ctx, amount)
}
