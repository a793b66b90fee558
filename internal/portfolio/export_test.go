package portfolio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	summary := Summarize([]AssetResult{
		pricedResult("BTC", "2", "100", "150", "5"),
		{
			Asset:     "OBSCURE",
			Quantity:  d("5"),
			CostBasis: domain.CostBasisResult{Asset: "OBSCURE", AverageCost: d("10"), RemainingQuantity: d("5")},
			Valuation: domain.ValuationResult{Asset: "OBSCURE"},
		},
		{Asset: "BROKEN", Quantity: d("1"), Err: errors.New("boom")},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, summary))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + 3 rows + totals

	assert.Equal(t, csvHeader, records[0])

	btc := records[1]
	assert.Equal(t, "BTC", btc[0])
	assert.Equal(t, "2", btc[1])
	assert.Equal(t, "150", btc[3])
	assert.Equal(t, "300", btc[4])

	obscure := records[2]
	assert.Equal(t, "OBSCURE", obscure[0])
	assert.Equal(t, "", obscure[3], "missing price renders empty, not zero")
	assert.Equal(t, "", obscure[4])

	broken := records[3]
	assert.Equal(t, "BROKEN", broken[0])
	assert.Equal(t, "1", broken[1])
	assert.Equal(t, "", broken[2])

	totals := records[4]
	assert.Equal(t, "TOTAL", totals[0])
	assert.Equal(t, "200", totals[2])
	assert.Equal(t, "300", totals[4])
}

func TestWriteCSVEmptySummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, domain.PortfolioSummary{
		TotalCostBasis:     decimal.Zero,
		TotalMarketValue:   decimal.Zero,
		TotalUnrealizedPnL: decimal.Zero,
		TotalRealizedPnL:   decimal.Zero,
	}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TOTAL", records[1][0])
}
