// Package notify delivers price alerts and snapshot summaries to operators
// over one or more channels (Telegram, Discord). Channels implement Sender;
// the Notifier fans out to all of them and filters by event type.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/davidhsu/binfolio/internal/domain"
)

// Event types the notifier can filter on.
const (
	EventPriceAlert = "price_alert"
	EventSnapshot   = "snapshot"
	EventError      = "error"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders. It maintains a set
// of allowed event types; Notify only forwards messages whose event type is in
// the allowed set.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event types
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders. Only
// events whose type appears in the events slice will be forwarded by Notify.
// If events is empty, all event types are allowed.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends a notification to all senders only if the event type is in the
// allowed list. If no events were configured (empty list), all events pass.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}

	return n.dispatch(ctx, title, message)
}

// NotifyAlerts sends a batch of triggered price alerts as a single message so
// one refresh cycle produces at most one notification per channel.
func (n *Notifier) NotifyAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, a.Message)
	}

	title := "Price Alert"
	if len(alerts) > 1 {
		title = fmt.Sprintf("Price Alerts (%d)", len(alerts))
	}
	return n.Notify(ctx, EventPriceAlert, title, strings.Join(lines, "\n"))
}

// NotifySummary sends a one-line portfolio snapshot summary.
func (n *Notifier) NotifySummary(ctx context.Context, summary domain.PortfolioSummary) error {
	msg := fmt.Sprintf("Value: %s | Unrealized P&L: %s | Realized P&L: %s | Assets: %d",
		summary.TotalMarketValue.StringFixed(2),
		summary.TotalUnrealizedPnL.StringFixed(2),
		summary.TotalRealizedPnL.StringFixed(2),
		len(summary.Rows),
	)
	return n.Notify(ctx, EventSnapshot, "Portfolio Snapshot", msg)
}

// dispatch iterates over all senders and sends the notification. Errors from
// individual senders are collected and returned as a combined error; a single
// sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
