package domain

import "github.com/shopspring/decimal"

// CostBasisResult is the output of the weighted-average cost calculation for
// one asset. AverageCost is zero (undefined) when RemainingQuantity is zero.
type CostBasisResult struct {
	Asset             string          `json:"asset"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	RealizedPnL       decimal.Decimal `json:"realized_pnl"`
}

// CostBasis returns the total cost of the remaining quantity.
func (r CostBasisResult) CostBasis() decimal.Decimal {
	return r.RemainingQuantity.Mul(r.AverageCost)
}

// ValuationResult combines a cost basis with a current market price. A missing
// or invalid price is represented by an invalid MarketPrice (NullDecimal), in
// which case MarketValue, UnrealizedPnL, and ROIPct are also invalid. ROIPct
// is separately invalid when the cost basis is zero, since the ratio is
// undefined.
type ValuationResult struct {
	Asset         string              `json:"asset"`
	MarketPrice   decimal.NullDecimal `json:"market_price"`
	MarketValue   decimal.NullDecimal `json:"market_value"`
	UnrealizedPnL decimal.NullDecimal `json:"unrealized_pnl"`
	ROIPct        decimal.NullDecimal `json:"roi_pct"`
}

// Priced reports whether a market price was available for this asset.
func (v ValuationResult) Priced() bool {
	return v.MarketPrice.Valid
}

// Row is one asset's line in the portfolio summary. Exactly one of two shapes:
// a computed row, or an error-tagged row (Err non-empty) when that asset's
// calculation failed. Error rows keep the summary total: every discovered
// asset always appears.
type Row struct {
	Asset         string              `json:"asset"`
	Quantity      decimal.Decimal     `json:"quantity"`
	AverageCost   decimal.Decimal     `json:"average_cost"`
	MarketPrice   decimal.NullDecimal `json:"market_price"`
	MarketValue   decimal.NullDecimal `json:"market_value"`
	UnrealizedPnL decimal.NullDecimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal     `json:"realized_pnl"`
	ROIPct        decimal.NullDecimal `json:"roi_pct"`
	Err           string              `json:"error,omitempty"`
}

// Priced reports whether the row carries a market price.
func (r Row) Priced() bool {
	return r.Err == "" && r.MarketPrice.Valid
}

// PortfolioSummary is the aggregated output consumed by the presentation
// layer and the alert evaluator. Rows are ordered by descending market value;
// unpriced and errored rows come last in discovery order. Totals are sums over
// priced rows only; Unpriced and Failed name the assets excluded from them.
type PortfolioSummary struct {
	Rows               []Row           `json:"rows"`
	TotalCostBasis     decimal.Decimal `json:"total_cost_basis"`
	TotalMarketValue   decimal.Decimal `json:"total_market_value"`
	TotalUnrealizedPnL decimal.Decimal `json:"total_unrealized_pnl"`
	TotalRealizedPnL   decimal.Decimal `json:"total_realized_pnl"`
	Unpriced           []string        `json:"unpriced,omitempty"`
	Failed             []string        `json:"failed,omitempty"`
}
