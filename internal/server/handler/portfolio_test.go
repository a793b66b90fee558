package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSnapshots struct {
	summary domain.PortfolioSummary
	err     error
}

func (f *fakeSnapshots) Snapshot(context.Context) (domain.PortfolioSummary, error) {
	return f.summary, f.err
}

func sampleSummary() domain.PortfolioSummary {
	return domain.PortfolioSummary{
		Rows: []domain.Row{
			{
				Asset:       "BTC",
				Quantity:    decimal.RequireFromString("2"),
				AverageCost: decimal.RequireFromString("100"),
				MarketPrice: decimal.NewNullDecimal(decimal.RequireFromString("150")),
				MarketValue: decimal.NewNullDecimal(decimal.RequireFromString("300")),
			},
		},
		TotalCostBasis:   decimal.RequireFromString("200"),
		TotalMarketValue: decimal.RequireFromString("300"),
	}
}

func TestGetPortfolio(t *testing.T) {
	h := NewPortfolioHandler(&fakeSnapshots{summary: sampleSummary()}, discard())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	h.GetPortfolio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp struct {
		AsOf             string          `json:"as_of"`
		Rows             []domain.Row    `json:"rows"`
		TotalMarketValue string          `json:"total_market_value"`
		Unpriced         json.RawMessage `json:"unpriced"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AsOf)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "BTC", resp.Rows[0].Asset)
	assert.Equal(t, "300", resp.TotalMarketValue)
	assert.Empty(t, resp.Unpriced, "empty unpriced list omitted")
}

func TestGetPortfolioUpstreamFailure(t *testing.T) {
	h := NewPortfolioHandler(&fakeSnapshots{err: errors.New("exchange down")}, discard())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	h.GetPortfolio(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exchange down", "upstream detail not leaked")
}

func TestExportPortfolio(t *testing.T) {
	h := NewPortfolioHandler(&fakeSnapshots{summary: sampleSummary()}, discard())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/export", nil)
	rec := httptest.NewRecorder()
	h.ExportPortfolio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio-")

	body := rec.Body.String()
	assert.Contains(t, body, "asset,quantity")
	assert.Contains(t, body, "BTC")
	assert.Contains(t, body, "TOTAL")
}
