package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Transaction is a single immutable trade fill in an asset's history.
// Quantity and Price are always non-negative; Side determines the sign of the
// cash-flow impact. Seq is a stable sequence number (the exchange fill ID)
// used to break timestamp ties so replaying a history is deterministic.
type Transaction struct {
	Asset     string          `json:"asset"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fee       decimal.Decimal `json:"fee"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       int64           `json:"seq"`
}
