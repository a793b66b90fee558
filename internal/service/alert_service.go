package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/davidhsu/binfolio/internal/alert"
	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/notify"
)

// AlertService checks portfolio rows against the configured strategy levels
// and pushes triggered alerts out through the notifier. Each (asset, level)
// pair fires at most once per cooldown window so a price hovering around a
// threshold does not spam every refresh.
type AlertService struct {
	store    domain.StrategyStore
	notifier *notify.Notifier
	logger   *slog.Logger
	cooldown time.Duration

	mu        sync.Mutex
	lastFired map[string]time.Time // keyed by asset+"/"+level
}

// NewAlertService creates an AlertService. cooldown <= 0 disables deduping.
func NewAlertService(store domain.StrategyStore, notifier *notify.Notifier, cooldown time.Duration, logger *slog.Logger) *AlertService {
	return &AlertService{
		store:     store,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "alert_service")),
		cooldown:  cooldown,
		lastFired: make(map[string]time.Time),
	}
}

// Check evaluates the rows against all stored strategy levels, notifies on
// newly triggered alerts, and returns them. Alerts suppressed by the cooldown
// are not returned.
func (s *AlertService) Check(ctx context.Context, rows []domain.Row) ([]domain.Alert, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}

	levels := make(map[string]domain.StrategyLevels, len(stored))
	for _, lv := range stored {
		levels[lv.Asset] = lv
	}

	now := time.Now().UTC()
	triggered := alert.Evaluate(rows, levels, now)
	fresh := s.filterCooldown(triggered, now)
	if len(fresh) == 0 {
		return nil, nil
	}

	for _, a := range fresh {
		s.logger.InfoContext(ctx, "alert triggered",
			slog.String("asset", a.Asset),
			slog.String("level", a.Level),
			slog.String("price", a.Price.String()),
		)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAlerts(ctx, fresh); err != nil {
			s.logger.WarnContext(ctx, "alert notification failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return fresh, nil
}

func (s *AlertService) filterCooldown(alerts []domain.Alert, now time.Time) []domain.Alert {
	if s.cooldown <= 0 {
		return alerts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []domain.Alert
	for _, a := range alerts {
		key := a.Asset + "/" + a.Level
		if last, ok := s.lastFired[key]; ok && now.Sub(last) < s.cooldown {
			continue
		}
		s.lastFired[key] = now
		fresh = append(fresh, a)
	}
	return fresh
}
