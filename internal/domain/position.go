package domain

import "github.com/shopspring/decimal"

// Source identifies which Binance product a holding came from.
type Source string

const (
	SourceSpot       Source = "SPOT"
	SourceEarn       Source = "EARN"
	SourceAutoInvest Source = "AUTO_INVEST"
	SourceDualInvest Source = "DUAL_INVEST"
)

// Sources lists every known holding source in display order.
var Sources = []Source{SourceSpot, SourceEarn, SourceAutoInvest, SourceDualInvest}

// RawHolding is an unvalidated holding record as reported by one account
// endpoint. Shapes differ per source (spot reports free+locked, the yield
// products report a single amount), so the fetch layer maps everything onto
// Quantity/Locked and the normalizer does the rest.
type RawHolding struct {
	Source   Source          `json:"source"`
	Asset    string          `json:"asset"`
	Quantity decimal.Decimal `json:"quantity"`
	Locked   decimal.Decimal `json:"locked"`
}

// Position is a canonical holding: one row per (asset, source) pair with a
// non-negative quantity. Quantities are aggregated across sources when
// computing the unified per-asset holding, but source detail is kept for
// display.
type Position struct {
	Asset    string          `json:"asset"`
	Quantity decimal.Decimal `json:"quantity"`
	Source   Source          `json:"source"`
}
