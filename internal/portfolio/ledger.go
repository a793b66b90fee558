// Package portfolio implements the valuation and P&L engine: it turns raw
// holdings, per-asset trade histories, and a price snapshot into a portfolio
// summary. Everything in this package is pure computation over its inputs —
// no I/O, no shared state — so concurrent refreshes never interfere.
package portfolio

import (
	"sort"

	"github.com/davidhsu/binfolio/internal/domain"
)

// Ledger is an append-only sequence of transactions for one asset. Iteration
// order is (timestamp, seq) ascending regardless of arrival order, so a
// replayed or re-fetched history always produces the same cost basis.
type Ledger struct {
	txs []domain.Transaction
}

// NewLedger creates a Ledger pre-populated with the given transactions.
func NewLedger(txs ...[]domain.Transaction) *Ledger {
	l := &Ledger{}
	for _, batch := range txs {
		l.txs = append(l.txs, batch...)
	}
	return l
}

// Append adds transactions to the ledger.
func (l *Ledger) Append(txs ...domain.Transaction) {
	l.txs = append(l.txs, txs...)
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int {
	return len(l.txs)
}

// Sorted returns a copy of the transactions ordered by timestamp, ties broken
// by sequence number.
func (l *Ledger) Sorted() []domain.Transaction {
	out := make([]domain.Transaction, len(l.txs))
	copy(out, l.txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
