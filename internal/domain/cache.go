package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceCache stores the last known ticker snapshot so a failed live fetch can
// fall back to stale-but-present prices instead of blanking the dashboard.
// The portfolio pipeline only ever moves whole snapshots, so both operations
// are batch-shaped.
type PriceCache interface {
	SetPrices(ctx context.Context, prices map[string]decimal.Decimal, ts time.Time) error
	GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
