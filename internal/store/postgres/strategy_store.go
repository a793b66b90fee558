package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidhsu/binfolio/internal/domain"
)

// StrategyStore implements domain.StrategyStore using PostgreSQL. Levels are
// stored as NUMERIC so decimal values round-trip without float drift.
type StrategyStore struct {
	pool *pgxpool.Pool
}

// NewStrategyStore creates a StrategyStore backed by the given connection pool.
func NewStrategyStore(pool *pgxpool.Pool) *StrategyStore {
	return &StrategyStore{pool: pool}
}

// Upsert inserts or updates the strategy levels for one asset.
func (s *StrategyStore) Upsert(ctx context.Context, levels domain.StrategyLevels) error {
	const query = `
		INSERT INTO strategy_levels (asset, low_buy_1, low_buy_2, high_sell_1, high_sell_2, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (asset) DO UPDATE SET
			low_buy_1   = EXCLUDED.low_buy_1,
			low_buy_2   = EXCLUDED.low_buy_2,
			high_sell_1 = EXCLUDED.high_sell_1,
			high_sell_2 = EXCLUDED.high_sell_2,
			updated_at  = NOW()`

	_, err := s.pool.Exec(ctx, query,
		levels.Asset, levels.LowBuy1, levels.LowBuy2, levels.HighSell1, levels.HighSell2,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert strategy levels %s: %w", levels.Asset, err)
	}
	return nil
}

// Get retrieves the strategy levels for one asset.
func (s *StrategyStore) Get(ctx context.Context, asset string) (domain.StrategyLevels, error) {
	const query = `
		SELECT asset, low_buy_1, low_buy_2, high_sell_1, high_sell_2, updated_at
		FROM strategy_levels WHERE asset = $1`

	var lv domain.StrategyLevels
	err := s.pool.QueryRow(ctx, query, asset).Scan(
		&lv.Asset, &lv.LowBuy1, &lv.LowBuy2, &lv.HighSell1, &lv.HighSell2, &lv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StrategyLevels{}, domain.ErrNotFound
		}
		return domain.StrategyLevels{}, fmt.Errorf("postgres: get strategy levels %s: %w", asset, err)
	}
	return lv, nil
}

// List returns strategy levels for every configured asset, ordered by asset.
func (s *StrategyStore) List(ctx context.Context) ([]domain.StrategyLevels, error) {
	const query = `
		SELECT asset, low_buy_1, low_buy_2, high_sell_1, high_sell_2, updated_at
		FROM strategy_levels ORDER BY asset`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list strategy levels: %w", err)
	}
	defer rows.Close()

	var all []domain.StrategyLevels
	for rows.Next() {
		var lv domain.StrategyLevels
		if err := rows.Scan(&lv.Asset, &lv.LowBuy1, &lv.LowBuy2, &lv.HighSell1, &lv.HighSell2, &lv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan strategy levels: %w", err)
		}
		all = append(all, lv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list strategy levels rows: %w", err)
	}
	return all, nil
}

// Delete removes the strategy levels for one asset. Deleting an unknown asset
// is not an error.
func (s *StrategyStore) Delete(ctx context.Context, asset string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM strategy_levels WHERE asset = $1`, asset); err != nil {
		return fmt.Errorf("postgres: delete strategy levels %s: %w", asset, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.StrategyStore = (*StrategyStore)(nil)
