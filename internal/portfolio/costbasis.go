package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// FeePolicy selects how the fee on a SELL is attributed. The exact convention
// differs between accounting treatments, so it is an explicit parameter
// rather than a baked-in assumption.
type FeePolicy int

const (
	// FeeFromProceeds subtracts the sell fee from the sale proceeds, reducing
	// realized P&L. This matches how the exchange reports net proceeds.
	FeeFromProceeds FeePolicy = iota
	// FeeToBasis adds the sell fee to the cost basis of the remaining
	// position instead of charging it against the realized P&L.
	FeeToBasis
)

// CostBasis computes the weighted-average cost basis and realized P&L for one
// asset from its chronologically ordered transaction history.
//
// BUYs add qty*price+fee to the running cost. A SELL realizes
// qty*(price - averageCost) against the average cost at that moment and
// removes qty*averageCost from the running cost; the fee is attributed per
// policy. A SELL exceeding the held quantity fails with OverdraftError, and a
// transaction with non-positive quantity or negative price/fee fails with
// InvalidTransactionError. An empty history is not an error: it yields a zero
// result.
func CostBasis(asset string, history []domain.Transaction, policy FeePolicy) (domain.CostBasisResult, error) {
	var (
		totalQty  decimal.Decimal
		totalCost decimal.Decimal
		realized  decimal.Decimal
	)

	for _, tx := range history {
		if !tx.Quantity.IsPositive() {
			return domain.CostBasisResult{}, &InvalidTransactionError{
				Asset: asset, Seq: tx.Seq, Reason: "quantity must be positive",
			}
		}
		if tx.Price.IsNegative() {
			return domain.CostBasisResult{}, &InvalidTransactionError{
				Asset: asset, Seq: tx.Seq, Reason: "price must not be negative",
			}
		}
		if tx.Fee.IsNegative() {
			return domain.CostBasisResult{}, &InvalidTransactionError{
				Asset: asset, Seq: tx.Seq, Reason: "fee must not be negative",
			}
		}

		switch tx.Side {
		case domain.SideBuy:
			totalCost = totalCost.Add(tx.Quantity.Mul(tx.Price)).Add(tx.Fee)
			totalQty = totalQty.Add(tx.Quantity)

		case domain.SideSell:
			if tx.Quantity.GreaterThan(totalQty) {
				return domain.CostBasisResult{}, &OverdraftError{
					Asset: asset, SellQuantity: tx.Quantity, Held: totalQty,
				}
			}
			avgCost := totalCost.Div(totalQty)
			realized = realized.Add(tx.Quantity.Mul(tx.Price.Sub(avgCost)))
			totalQty = totalQty.Sub(tx.Quantity)
			totalCost = totalCost.Sub(tx.Quantity.Mul(avgCost))

			switch policy {
			case FeeFromProceeds:
				realized = realized.Sub(tx.Fee)
			case FeeToBasis:
				totalCost = totalCost.Add(tx.Fee)
			}

		default:
			return domain.CostBasisResult{}, &InvalidTransactionError{
				Asset: asset, Seq: tx.Seq, Reason: "unknown side " + string(tx.Side),
			}
		}
	}

	avgCost := decimal.Zero
	if totalQty.IsPositive() {
		avgCost = totalCost.Div(totalQty)
	}

	return domain.CostBasisResult{
		Asset:             asset,
		AverageCost:       avgCost,
		RemainingQuantity: totalQty,
		RealizedPnL:       realized,
	}, nil
}
