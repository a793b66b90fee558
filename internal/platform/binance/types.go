package binance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// TickerPrice is one entry from /api/v3/ticker/price. Binance serializes all
// numbers as strings; they are parsed into decimals at the boundary.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// CoinBalance is one entry from /sapi/v1/capital/config/getall.
type CoinBalance struct {
	Coin   string `json:"coin"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// StakingPosition is one entry from /sapi/v1/staking/productPosition.
type StakingPosition struct {
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
	Product string `json:"product"`
}

// AutoInvestPosition is one entry from /sapi/v1/lending/auto-invest/positions.
type AutoInvestPosition struct {
	TargetAsset string `json:"targetAsset"`
	TotalAmount string `json:"totalAmount"`
}

// DualInvestPosition is one entry from the dual-investment position list.
type DualInvestPosition struct {
	Underlying         string `json:"underlying"`
	SubscriptionAmount string `json:"subscriptionAmount"`
}

// MyTrade is one fill from /api/v3/myTrades.
type MyTrade struct {
	ID              int64  `json:"id"`
	Symbol          string `json:"symbol"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"` // epoch millis
	IsBuyer         bool   `json:"isBuyer"`
}

// ToTransaction converts a fill into the canonical transaction shape for the
// cost-basis calculator. The commission is attributed as the transaction fee
// only when it was charged in the quote asset; a commission charged in the
// base asset reduces the received quantity on a buy instead, mirroring how
// the exchange actually debits it.
func (t MyTrade) ToTransaction(baseAsset, quoteAsset string) (domain.Transaction, error) {
	qty, err := decimal.NewFromString(t.Qty)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("binance: parse trade qty %q: %w", t.Qty, err)
	}
	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("binance: parse trade price %q: %w", t.Price, err)
	}

	commission := decimal.Zero
	if t.Commission != "" {
		commission, err = decimal.NewFromString(t.Commission)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("binance: parse commission %q: %w", t.Commission, err)
		}
	}

	fee := decimal.Zero
	switch t.CommissionAsset {
	case quoteAsset:
		fee = commission
	case baseAsset:
		if t.IsBuyer {
			qty = qty.Sub(commission)
		}
	}

	side := domain.SideSell
	if t.IsBuyer {
		side = domain.SideBuy
	}

	return domain.Transaction{
		Asset:     baseAsset,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Fee:       fee,
		Timestamp: time.UnixMilli(t.Time).UTC(),
		Seq:       t.ID,
	}, nil
}

// parsePrice parses a ticker price string, rejecting malformed values.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("binance: parse price %q: %w", s, err)
	}
	return d, nil
}
