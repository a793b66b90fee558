package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(side domain.Side, qty, price, fee string, seq int64) domain.Transaction {
	return domain.Transaction{
		Asset:     "BTC",
		Side:      side,
		Quantity:  d(qty),
		Price:     d(price),
		Fee:       d(fee),
		Timestamp: time.Unix(seq, 0).UTC(),
		Seq:       seq,
	}
}

func TestCostBasisWeightedAverage(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideBuy, "1", "100", "1", 1),
		tx(domain.SideBuy, "1", "200", "1", 2),
	}

	res, err := CostBasis("BTC", history, FeeFromProceeds)
	require.NoError(t, err)

	assert.True(t, res.AverageCost.Equal(d("151")), "average cost = %s", res.AverageCost)
	assert.True(t, res.RemainingQuantity.Equal(d("2")))
	assert.True(t, res.RealizedPnL.IsZero())
	assert.True(t, res.CostBasis().Equal(d("302")))
}

func TestCostBasisSellRealizesAgainstAverage(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideBuy, "1", "100", "1", 1),
		tx(domain.SideBuy, "1", "200", "1", 2),
		tx(domain.SideSell, "1", "250", "1", 3),
	}

	res, err := CostBasis("BTC", history, FeeFromProceeds)
	require.NoError(t, err)

	// 250 - 151 average cost, minus the 1 sell fee.
	assert.True(t, res.RealizedPnL.Equal(d("98")), "realized = %s", res.RealizedPnL)
	assert.True(t, res.RemainingQuantity.Equal(d("1")))
	assert.True(t, res.AverageCost.Equal(d("151")), "average cost unchanged by sell, got %s", res.AverageCost)
}

func TestCostBasisFeeToBasis(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideBuy, "2", "100", "0", 1),
		tx(domain.SideSell, "1", "150", "10", 2),
	}

	res, err := CostBasis("BTC", history, FeeToBasis)
	require.NoError(t, err)

	// Fee lands on the remaining basis, not on realized P&L.
	assert.True(t, res.RealizedPnL.Equal(d("50")), "realized = %s", res.RealizedPnL)
	assert.True(t, res.AverageCost.Equal(d("110")), "average cost = %s", res.AverageCost)
	assert.True(t, res.RemainingQuantity.Equal(d("1")))
}

func TestCostBasisFullClose(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideBuy, "3", "10", "0", 1),
		tx(domain.SideSell, "3", "12", "0", 2),
	}

	res, err := CostBasis("BTC", history, FeeFromProceeds)
	require.NoError(t, err)

	assert.True(t, res.RemainingQuantity.IsZero())
	assert.True(t, res.AverageCost.IsZero(), "average cost is undefined at zero quantity")
	assert.True(t, res.RealizedPnL.Equal(d("6")))
}

func TestCostBasisEmptyHistory(t *testing.T) {
	res, err := CostBasis("BTC", nil, FeeFromProceeds)
	require.NoError(t, err)

	assert.True(t, res.RemainingQuantity.IsZero())
	assert.True(t, res.AverageCost.IsZero())
	assert.True(t, res.RealizedPnL.IsZero())
}

func TestCostBasisOverdraft(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideBuy, "3", "10", "0", 1),
		tx(domain.SideSell, "5", "12", "0", 2),
	}

	_, err := CostBasis("BTC", history, FeeFromProceeds)
	require.Error(t, err)

	var overdraft *OverdraftError
	require.ErrorAs(t, err, &overdraft)
	assert.True(t, overdraft.SellQuantity.Equal(d("5")))
	assert.True(t, overdraft.Held.Equal(d("3")))
}

func TestCostBasisSellWithNothingHeld(t *testing.T) {
	history := []domain.Transaction{
		tx(domain.SideSell, "1", "10", "0", 1),
	}

	_, err := CostBasis("BTC", history, FeeFromProceeds)
	var overdraft *OverdraftError
	require.ErrorAs(t, err, &overdraft)
}

func TestCostBasisRejectsMalformedTransactions(t *testing.T) {
	cases := []struct {
		name string
		tx   domain.Transaction
	}{
		{"zero quantity", tx(domain.SideBuy, "0", "10", "0", 1)},
		{"negative quantity", tx(domain.SideBuy, "-1", "10", "0", 1)},
		{"negative price", tx(domain.SideBuy, "1", "-10", "0", 1)},
		{"negative fee", tx(domain.SideBuy, "1", "10", "-1", 1)},
		{"unknown side", domain.Transaction{Asset: "BTC", Side: "HOLD", Quantity: d("1"), Price: d("10"), Seq: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CostBasis("BTC", []domain.Transaction{tc.tx}, FeeFromProceeds)
			var invalid *InvalidTransactionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "BTC", invalid.Asset)
		})
	}
}

func TestCostBasisZeroPriceBuyAllowed(t *testing.T) {
	// Airdrops and rewards show up as zero-cost acquisitions.
	history := []domain.Transaction{
		tx(domain.SideBuy, "10", "0", "0", 1),
	}

	res, err := CostBasis("BTC", history, FeeFromProceeds)
	require.NoError(t, err)
	assert.True(t, res.RemainingQuantity.Equal(d("10")))
	assert.True(t, res.AverageCost.IsZero())
}
