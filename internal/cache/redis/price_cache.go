package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes. Each symbol's
// last known price is stored at key "price:{symbol}" with fields "price"
// (decimal string, so no float round-trip) and "ts" (Unix nanoseconds).
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache creates a PriceCache backed by the given Client. Entries
// expire after ttl so a long-dead ticker does not linger forever; ttl <= 0
// disables expiry.
func NewPriceCache(c *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: c.Underlying(), ttl: ttl}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// SetPrices stores a whole ticker snapshot using a pipeline. The snapshot
// timestamp is written alongside every price so a future reader can judge
// staleness.
func (pc *PriceCache) SetPrices(ctx context.Context, prices map[string]decimal.Decimal, ts time.Time) error {
	if len(prices) == 0 {
		return nil
	}

	tsStr := strconv.FormatInt(ts.UnixNano(), 10)
	pipe := pc.rdb.Pipeline()
	for symbol, price := range prices {
		key := priceKey(symbol)
		pipe.HSet(ctx, key, map[string]interface{}{
			"price": price.String(),
			"ts":    tsStr,
		})
		if pc.ttl > 0 {
			pipe.Expire(ctx, key, pc.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set prices pipeline: %w", err)
	}
	return nil
}

// GetPrices retrieves the latest prices for multiple symbols using a
// pipeline. Symbols without a cached price are silently omitted.
func (pc *PriceCache) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	pipe := pc.rdb.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(symbols))
	for _, symbol := range symbols {
		cmds[symbol] = pipe.HGetAll(ctx, priceKey(symbol))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	result := make(map[string]decimal.Decimal, len(symbols))
	for symbol, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil || len(vals) == 0 {
			continue
		}
		priceStr, ok := vals["price"]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			continue
		}
		result[symbol] = price
	}

	return result, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
