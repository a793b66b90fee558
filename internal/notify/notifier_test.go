package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidhsu/binfolio/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures everything it is asked to deliver.
type recordingSender struct {
	name     string
	err      error
	titles   []string
	messages []string
}

func (r *recordingSender) Send(_ context.Context, title, message string) error {
	if r.err != nil {
		return r.err
	}
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSender) Name() string { return r.name }

func TestNotifyFiltersDisallowedEvents(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, []string{EventPriceAlert}, discard())

	require.NoError(t, n.Notify(context.Background(), EventSnapshot, "t", "m"))
	assert.Empty(t, sender.titles)

	require.NoError(t, n.Notify(context.Background(), EventPriceAlert, "t", "m"))
	assert.Equal(t, []string{"t"}, sender.titles)
}

func TestNotifyEmptyEventListAllowsEverything(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, discard())

	require.NoError(t, n.Notify(context.Background(), EventError, "t", "m"))
	assert.Len(t, sender.titles, 1)
}

func TestNotifyCollectsSenderErrors(t *testing.T) {
	broken := &recordingSender{name: "broken", err: errors.New("boom")}
	healthy := &recordingSender{name: "healthy"}
	n := NewNotifier([]Sender{broken, healthy}, nil, discard())

	err := n.Notify(context.Background(), EventError, "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, healthy.titles, 1, "one sender failing does not stop the others")
}

func TestNotifyAlertsBatchesIntoOneMessage(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, discard())

	alerts := []domain.Alert{
		{Asset: "BTC", Message: "BTC hit High Sell 1"},
		{Asset: "ETH", Message: "ETH reached Low Buy 1"},
	}
	require.NoError(t, n.NotifyAlerts(context.Background(), alerts))

	require.Len(t, sender.titles, 1)
	assert.Equal(t, "Price Alerts (2)", sender.titles[0])
	assert.Contains(t, sender.messages[0], "BTC hit High Sell 1")
	assert.Contains(t, sender.messages[0], "ETH reached Low Buy 1")
}

func TestNotifyAlertsSingleAlertTitle(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, discard())

	require.NoError(t, n.NotifyAlerts(context.Background(), []domain.Alert{
		{Asset: "BTC", Message: "BTC hit High Sell 1", CreatedAt: time.Now()},
	}))

	require.Len(t, sender.titles, 1)
	assert.Equal(t, "Price Alert", sender.titles[0])
}

func TestNotifyAlertsEmptyIsNoop(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, discard())

	require.NoError(t, n.NotifyAlerts(context.Background(), nil))
	assert.Empty(t, sender.titles)
}

func TestNotifySummaryFormatsTotals(t *testing.T) {
	sender := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{sender}, nil, discard())

	summary := domain.PortfolioSummary{
		Rows:               []domain.Row{{Asset: "BTC"}},
		TotalMarketValue:   decimal.RequireFromString("1234.5"),
		TotalUnrealizedPnL: decimal.RequireFromString("34.5"),
		TotalRealizedPnL:   decimal.RequireFromString("-10"),
	}
	require.NoError(t, n.NotifySummary(context.Background(), summary))

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "1234.50")
	assert.Contains(t, sender.messages[0], "-10.00")
	assert.Contains(t, sender.messages[0], "Assets: 1")
}

func TestNotifierNoSenders(t *testing.T) {
	n := NewNotifier(nil, nil, discard())
	assert.NoError(t, n.Notify(context.Background(), EventError, "t", "m"))
}
