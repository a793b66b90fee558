package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

func TestLedgerSortedByTimestampThenSeq(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := tx(domain.SideBuy, "1", "10", "0", 2)
	a.Timestamp = base.Add(time.Minute)
	b := tx(domain.SideBuy, "1", "10", "0", 1)
	b.Timestamp = base.Add(time.Minute)
	c := tx(domain.SideBuy, "1", "10", "0", 3)
	c.Timestamp = base

	l := NewLedger([]domain.Transaction{a, b, c})
	require.Equal(t, 3, l.Len())

	sorted := l.Sorted()
	assert.Equal(t, int64(3), sorted[0].Seq, "earliest timestamp first")
	assert.Equal(t, int64(1), sorted[1].Seq, "timestamp tie broken by seq")
	assert.Equal(t, int64(2), sorted[2].Seq)
}

func TestLedgerSortedDoesNotMutate(t *testing.T) {
	a := tx(domain.SideBuy, "1", "10", "0", 2)
	b := tx(domain.SideBuy, "1", "10", "0", 1)

	l := NewLedger([]domain.Transaction{a, b})
	_ = l.Sorted()

	again := l.Sorted()
	assert.Equal(t, int64(1), again[0].Seq)

	l.Append(tx(domain.SideSell, "1", "12", "0", 3))
	assert.Equal(t, 3, l.Len())
}

func TestLedgerSortedThenCostBasisIsReplayStable(t *testing.T) {
	buy := tx(domain.SideBuy, "2", "100", "0", 1)
	sell := tx(domain.SideSell, "1", "150", "0", 2)
	sell.Timestamp = buy.Timestamp.Add(time.Hour)

	// Arrival order reversed; Sorted restores chronology so the sell
	// does not overdraft.
	l := NewLedger([]domain.Transaction{sell, buy})
	res, err := CostBasis("BTC", l.Sorted(), FeeFromProceeds)
	require.NoError(t, err)
	assert.True(t, res.RealizedPnL.Equal(d("50")))
}
