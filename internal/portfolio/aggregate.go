package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// AssetResult carries one asset through the pipeline: its combined holding,
// cost basis, and valuation, or the error that stopped its calculation.
// Collecting a result per asset (instead of failing the whole refresh) keeps
// the aggregation total: every discovered asset produces a summary row.
type AssetResult struct {
	Asset     string
	Quantity  decimal.Decimal
	CostBasis domain.CostBasisResult
	Valuation domain.ValuationResult
	Err       error
}

// Summarize rolls per-asset results into the portfolio summary.
//
// Priced rows are ordered by descending market value with a stable sort;
// unpriced and errored rows follow in their discovery order, so identical
// inputs always produce identical output. Totals are plain sums over priced
// rows only — summation is associative, so permuting the input never changes
// them. Unpriced and failed assets are named separately rather than silently
// folded into the totals as zeroes.
func Summarize(results []AssetResult) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		Rows: make([]domain.Row, 0, len(results)),
	}

	var priced, rest []domain.Row

	for _, r := range results {
		if r.Err != nil {
			summary.Failed = append(summary.Failed, r.Asset)
			rest = append(rest, domain.Row{
				Asset:    r.Asset,
				Quantity: r.Quantity,
				Err:      r.Err.Error(),
			})
			continue
		}

		row := domain.Row{
			Asset:         r.Asset,
			Quantity:      r.Quantity,
			AverageCost:   r.CostBasis.AverageCost,
			MarketPrice:   r.Valuation.MarketPrice,
			MarketValue:   r.Valuation.MarketValue,
			UnrealizedPnL: r.Valuation.UnrealizedPnL,
			RealizedPnL:   r.CostBasis.RealizedPnL,
			ROIPct:        r.Valuation.ROIPct,
		}

		if !row.Priced() {
			summary.Unpriced = append(summary.Unpriced, r.Asset)
			rest = append(rest, row)
			continue
		}

		summary.TotalCostBasis = summary.TotalCostBasis.Add(r.CostBasis.CostBasis())
		summary.TotalMarketValue = summary.TotalMarketValue.Add(row.MarketValue.Decimal)
		summary.TotalUnrealizedPnL = summary.TotalUnrealizedPnL.Add(row.UnrealizedPnL.Decimal)
		summary.TotalRealizedPnL = summary.TotalRealizedPnL.Add(row.RealizedPnL)
		priced = append(priced, row)
	}

	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].MarketValue.Decimal.GreaterThan(priced[j].MarketValue.Decimal)
	})

	summary.Rows = append(summary.Rows, priced...)
	summary.Rows = append(summary.Rows, rest...)
	return summary
}
