package reward

import (
	"context"
	"math/big"
	"time"

	"github.com/patrickmn/go-cache"
	"quiz-royale/internal/domain"
)

const (
	amountKey = "reward-amount"
	fundsKey  = "sufficient-funds"
)

// CachedGateway memoizes the contract view calls for ttl. Claims always go
// through and invalidate the funds view.
type CachedGateway struct {
	Gateway
	cache *cache.Cache
}

func NewCachedGateway(inner Gateway, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		Gateway: inner,
		cache:   cache.New(ttl, 2*ttl),
	}
}

func (g *CachedGateway) RewardAmount(ctx context.Context) (*big.Int, error) {
	if v, found := g.cache.Get(amountKey); found {
		return new(big.Int).Set(v.(*big.Int)), nil
	}
	amount, err := g.Gateway.RewardAmount(ctx)
	if err != nil {
		return nil, err
	}
	g.cache.SetDefault(amountKey, new(big.Int).Set(amount))
	return amount, nil
}

func (g *CachedGateway) HasSufficientFunds(ctx context.Context) (bool, error) {
	if v, found := g.cache.Get(fundsKey); found {
		return v.(bool), nil
	}
	ok, err := g.Gateway.HasSufficientFunds(ctx)
	if err != nil {
		return false, err
	}
	g.cache.SetDefault(fundsKey, ok)
	return ok, nil
}

func (g *CachedGateway) Submit(ctx context.Context, address string, answers []uint8) domain.ClaimResult {
	defer g.cache.Delete(fundsKey)
	return g.Gateway.Submit(ctx, address, answers)
}
