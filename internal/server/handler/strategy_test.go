package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

type memoryStrategyStore struct {
	levels map[string]domain.StrategyLevels
}

func newMemoryStrategyStore() *memoryStrategyStore {
	return &memoryStrategyStore{levels: make(map[string]domain.StrategyLevels)}
}

func (s *memoryStrategyStore) Upsert(_ context.Context, lv domain.StrategyLevels) error {
	s.levels[lv.Asset] = lv
	return nil
}

func (s *memoryStrategyStore) Get(_ context.Context, asset string) (domain.StrategyLevels, error) {
	lv, ok := s.levels[asset]
	if !ok {
		return domain.StrategyLevels{}, domain.ErrNotFound
	}
	return lv, nil
}

func (s *memoryStrategyStore) List(context.Context) ([]domain.StrategyLevels, error) {
	out := make([]domain.StrategyLevels, 0, len(s.levels))
	for _, lv := range s.levels {
		out = append(out, lv)
	}
	return out, nil
}

func (s *memoryStrategyStore) Delete(_ context.Context, asset string) error {
	delete(s.levels, asset)
	return nil
}

func assetRequest(method, asset, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/strategies/"+asset, strings.NewReader(body))
	req.SetPathValue("asset", asset)
	return req
}

func TestPutLevelsUppercasesAsset(t *testing.T) {
	store := newMemoryStrategyStore()
	h := NewStrategyHandler(store, discard())

	rec := httptest.NewRecorder()
	h.PutLevels(rec, assetRequest(http.MethodPut, "btc", `{"low_buy_1":"40000","high_sell_1":"80000"}`))

	require.Equal(t, http.StatusOK, rec.Code)

	lv, ok := store.levels["BTC"]
	require.True(t, ok)
	assert.True(t, lv.LowBuy1.Equal(decimal.RequireFromString("40000")))
	assert.True(t, lv.HighSell1.Equal(decimal.RequireFromString("80000")))
	assert.True(t, lv.LowBuy2.IsZero())
	assert.False(t, lv.UpdatedAt.IsZero())
}

func TestPutLevelsRejectsNegative(t *testing.T) {
	h := NewStrategyHandler(newMemoryStrategyStore(), discard())

	rec := httptest.NewRecorder()
	h.PutLevels(rec, assetRequest(http.MethodPut, "BTC", `{"low_buy_1":"-1"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutLevelsRejectsBadBody(t *testing.T) {
	h := NewStrategyHandler(newMemoryStrategyStore(), discard())

	rec := httptest.NewRecorder()
	h.PutLevels(rec, assetRequest(http.MethodPut, "BTC", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLevelsNotFound(t *testing.T) {
	h := NewStrategyHandler(newMemoryStrategyStore(), discard())

	rec := httptest.NewRecorder()
	h.GetLevels(rec, assetRequest(http.MethodGet, "ETH", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLevelsRoundTrip(t *testing.T) {
	store := newMemoryStrategyStore()
	h := NewStrategyHandler(store, discard())

	rec := httptest.NewRecorder()
	h.PutLevels(rec, assetRequest(http.MethodPut, "ETH", `{"high_sell_2":"5000"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetLevels(rec, assetRequest(http.MethodGet, "eth", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var lv domain.StrategyLevels
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lv))
	assert.Equal(t, "ETH", lv.Asset)
	assert.True(t, lv.HighSell2.Equal(decimal.RequireFromString("5000")))
}

func TestListLevelsEmptyIsArray(t *testing.T) {
	h := NewStrategyHandler(newMemoryStrategyStore(), discard())

	rec := httptest.NewRecorder()
	h.ListLevels(rec, httptest.NewRequest(http.MethodGet, "/api/strategies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"strategies":[]`)
}

func TestDeleteLevelsIsIdempotent(t *testing.T) {
	store := newMemoryStrategyStore()
	h := NewStrategyHandler(store, discard())

	rec := httptest.NewRecorder()
	h.DeleteLevels(rec, assetRequest(http.MethodDelete, "BTC", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
}
