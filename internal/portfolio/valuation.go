package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Valuate combines a cost basis with a current market price.
//
// An invalid (unset) price yields an unpriced result: the asset still appears
// in the summary but carries no market value and is excluded from totals. A
// set price must be positive; zero and negative prices fail with
// InvalidPriceError so a bad quote is never mistaken for a worthless holding.
// A fully closed position (zero remaining quantity) values to zero with no
// error.
//
// A balance with no cost on record (deposits, transfers, rewards, zero-cost
// acquisitions) is carried at its current value: unrealized P&L is zero and
// ROI stays unset, so an untracked balance never shows up as pure gain.
func Valuate(cb domain.CostBasisResult, price decimal.NullDecimal) (domain.ValuationResult, error) {
	res := domain.ValuationResult{Asset: cb.Asset}

	if !price.Valid {
		return res, nil
	}
	if !price.Decimal.IsPositive() {
		return res, &InvalidPriceError{Asset: cb.Asset, Price: price.Decimal}
	}

	res.MarketPrice = price

	marketValue := cb.RemainingQuantity.Mul(price.Decimal)
	costBasis := cb.RemainingQuantity.Mul(cb.AverageCost)

	res.MarketValue = decimal.NewNullDecimal(marketValue)

	if costBasis.IsZero() {
		res.UnrealizedPnL = decimal.NewNullDecimal(decimal.Zero)
		return res, nil
	}

	unrealized := marketValue.Sub(costBasis)
	res.UnrealizedPnL = decimal.NewNullDecimal(unrealized)
	res.ROIPct = decimal.NewNullDecimal(unrealized.Div(costBasis).Mul(hundred))

	return res, nil
}
