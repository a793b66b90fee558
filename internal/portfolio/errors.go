package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// InvalidRecordError reports a malformed raw holding record. The normalizer
// skips the record and keeps going; one bad record must not blank the whole
// portfolio.
type InvalidRecordError struct {
	Source domain.Source
	Asset  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s record for %q: %s", e.Source, e.Asset, e.Reason)
}

// InvalidTransactionError reports a malformed transaction in an asset's
// history. The asset's calculation is aborted; other assets are unaffected.
type InvalidTransactionError struct {
	Asset  string
	Seq    int64
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction for %s (seq %d): %s", e.Asset, e.Seq, e.Reason)
}

// OverdraftError reports a SELL that exceeds the quantity held at that point
// in the history. It signals an inconsistent or incomplete history; clamping
// instead would silently misstate realized P&L.
type OverdraftError struct {
	Asset        string
	SellQuantity decimal.Decimal
	Held         decimal.Decimal
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("sell of %s %s exceeds held quantity %s", e.SellQuantity, e.Asset, e.Held)
}

// InvalidPriceError reports a non-positive market price. A zero or negative
// price cannot represent a real market; callers treat the asset as unpriced.
type InvalidPriceError struct {
	Asset string
	Price decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid market price %s for %s", e.Price, e.Asset)
}
