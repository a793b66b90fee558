package binance

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

func TestMyTradeToTransactionBuy(t *testing.T) {
	trade := MyTrade{
		ID:              42,
		Symbol:          "BTCUSDT",
		Price:           "50000",
		Qty:             "0.5",
		Commission:      "25",
		CommissionAsset: "USDT",
		Time:            1700000000000,
		IsBuyer:         true,
	}

	tx, err := trade.ToTransaction("BTC", "USDT")
	require.NoError(t, err)

	assert.Equal(t, "BTC", tx.Asset)
	assert.Equal(t, domain.SideBuy, tx.Side)
	assert.True(t, tx.Quantity.Equal(d("0.5")))
	assert.True(t, tx.Price.Equal(d("50000")))
	assert.True(t, tx.Fee.Equal(d("25")), "quote-asset commission becomes the fee")
	assert.Equal(t, int64(42), tx.Seq)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), tx.Timestamp)
}

func TestMyTradeToTransactionSell(t *testing.T) {
	trade := MyTrade{
		ID:              43,
		Price:           "100",
		Qty:             "2",
		Commission:      "0.2",
		CommissionAsset: "USDT",
		IsBuyer:         false,
	}

	tx, err := trade.ToTransaction("ETH", "USDT")
	require.NoError(t, err)
	assert.Equal(t, domain.SideSell, tx.Side)
	assert.True(t, tx.Fee.Equal(d("0.2")))
}

func TestMyTradeCommissionInBaseAsset(t *testing.T) {
	// A buy commission charged in the base asset reduces the received
	// quantity rather than becoming a quote-denominated fee.
	trade := MyTrade{
		Price:           "100",
		Qty:             "1",
		Commission:      "0.001",
		CommissionAsset: "ETH",
		IsBuyer:         true,
	}

	tx, err := trade.ToTransaction("ETH", "USDT")
	require.NoError(t, err)
	assert.True(t, tx.Quantity.Equal(d("0.999")))
	assert.True(t, tx.Fee.IsZero())
}

func TestMyTradeCommissionInThirdAssetIgnored(t *testing.T) {
	// BNB-paid commission is neither quote nor base; it does not affect
	// the quote-denominated cost basis.
	trade := MyTrade{
		Price:           "100",
		Qty:             "1",
		Commission:      "0.01",
		CommissionAsset: "BNB",
		IsBuyer:         true,
	}

	tx, err := trade.ToTransaction("ETH", "USDT")
	require.NoError(t, err)
	assert.True(t, tx.Quantity.Equal(d("1")))
	assert.True(t, tx.Fee.IsZero())
}

func TestMyTradeToTransactionMalformedNumbers(t *testing.T) {
	cases := []MyTrade{
		{Qty: "abc", Price: "100"},
		{Qty: "1", Price: "abc"},
		{Qty: "1", Price: "100", Commission: "abc"},
	}
	for _, trade := range cases {
		_, err := trade.ToTransaction("BTC", "USDT")
		assert.Error(t, err)
	}
}

func TestParsePrice(t *testing.T) {
	p, err := parsePrice("50123.45")
	require.NoError(t, err)
	assert.True(t, p.Equal(d("50123.45")))

	_, err = parsePrice("")
	assert.Error(t, err)
}
