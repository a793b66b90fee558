package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

// fakeStrategyStore holds levels in memory.
type fakeStrategyStore struct {
	levels map[string]domain.StrategyLevels
}

func (f *fakeStrategyStore) Upsert(_ context.Context, lv domain.StrategyLevels) error {
	f.levels[lv.Asset] = lv
	return nil
}

func (f *fakeStrategyStore) Get(_ context.Context, asset string) (domain.StrategyLevels, error) {
	lv, ok := f.levels[asset]
	if !ok {
		return domain.StrategyLevels{}, domain.ErrNotFound
	}
	return lv, nil
}

func (f *fakeStrategyStore) List(context.Context) ([]domain.StrategyLevels, error) {
	out := make([]domain.StrategyLevels, 0, len(f.levels))
	for _, lv := range f.levels {
		out = append(out, lv)
	}
	return out, nil
}

func (f *fakeStrategyStore) Delete(_ context.Context, asset string) error {
	delete(f.levels, asset)
	return nil
}

func rowAt(asset, price string) domain.Row {
	return domain.Row{
		Asset:       asset,
		Quantity:    d("1"),
		MarketPrice: decimal.NewNullDecimal(d(price)),
	}
}

func TestAlertServiceCheckTriggersConfiguredLevels(t *testing.T) {
	store := &fakeStrategyStore{levels: map[string]domain.StrategyLevels{
		"BTC": {Asset: "BTC", HighSell1: d("100")},
	}}
	svc := NewAlertService(store, nil, 0, discard())

	triggered, err := svc.Check(context.Background(), []domain.Row{rowAt("BTC", "120")})
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, "high_sell_1", triggered[0].Level)
}

func TestAlertServiceCheckNoLevelsConfigured(t *testing.T) {
	store := &fakeStrategyStore{levels: map[string]domain.StrategyLevels{}}
	svc := NewAlertService(store, nil, 0, discard())

	triggered, err := svc.Check(context.Background(), []domain.Row{rowAt("BTC", "120")})
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestAlertServiceCooldownSuppressesRepeats(t *testing.T) {
	store := &fakeStrategyStore{levels: map[string]domain.StrategyLevels{
		"BTC": {Asset: "BTC", HighSell1: d("100")},
	}}
	svc := NewAlertService(store, nil, time.Hour, discard())
	rows := []domain.Row{rowAt("BTC", "120")}

	triggered, err := svc.Check(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	// Still breached on the next cycle, but inside the cooldown window.
	triggered, err = svc.Check(context.Background(), rows)
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestAlertServiceCooldownIsPerAssetLevel(t *testing.T) {
	store := &fakeStrategyStore{levels: map[string]domain.StrategyLevels{
		"BTC": {Asset: "BTC", HighSell1: d("100"), HighSell2: d("150")},
	}}
	svc := NewAlertService(store, nil, time.Hour, discard())

	triggered, err := svc.Check(context.Background(), []domain.Row{rowAt("BTC", "120")})
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	// The second level breaching later still fires even though the first
	// is cooling down.
	triggered, err = svc.Check(context.Background(), []domain.Row{rowAt("BTC", "160")})
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, "high_sell_2", triggered[0].Level)
}
