package domain

import "context"

// StrategyStore persists user-edited strategy levels. This is the only state
// that survives across refreshes; everything else is recomputed from live
// account data.
type StrategyStore interface {
	Upsert(ctx context.Context, levels StrategyLevels) error
	Get(ctx context.Context, asset string) (StrategyLevels, error)
	List(ctx context.Context) ([]StrategyLevels, error)
	Delete(ctx context.Context, asset string) error
}
