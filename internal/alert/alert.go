// Package alert evaluates user-defined strategy price levels against the
// latest portfolio snapshot. It knows nothing about how levels are stored or
// how alerts are delivered; it only turns (price, levels) into messages.
package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// Evaluate compares each priced row against its strategy levels and returns
// the triggered alerts. A level of zero is unset and never fires. Unpriced
// rows are skipped; an asset without configured levels is skipped.
func Evaluate(rows []domain.Row, levels map[string]domain.StrategyLevels, now time.Time) []domain.Alert {
	var alerts []domain.Alert

	for _, row := range rows {
		if !row.Priced() {
			continue
		}
		lv, ok := levels[row.Asset]
		if !ok {
			continue
		}

		price := row.MarketPrice.Decimal
		alerts = appendIf(alerts, row.Asset, "low_buy_1", price, lv.LowBuy1, false, now)
		alerts = appendIf(alerts, row.Asset, "low_buy_2", price, lv.LowBuy2, false, now)
		alerts = appendIf(alerts, row.Asset, "high_sell_1", price, lv.HighSell1, true, now)
		alerts = appendIf(alerts, row.Asset, "high_sell_2", price, lv.HighSell2, true, now)
	}

	return alerts
}

// appendIf appends an alert when the level is set and breached. above selects
// the comparison direction: sell levels trigger at-or-above, buy levels
// at-or-below.
func appendIf(alerts []domain.Alert, asset, level string, price, threshold decimal.Decimal, above bool, now time.Time) []domain.Alert {
	if !threshold.IsPositive() {
		return alerts
	}

	var (
		hit  bool
		verb string
		op   string
	)
	if above {
		hit = price.GreaterThanOrEqual(threshold)
		verb = "hit"
		op = ">="
	} else {
		hit = price.LessThanOrEqual(threshold)
		verb = "reached"
		op = "<="
	}
	if !hit {
		return alerts
	}

	return append(alerts, domain.Alert{
		ID:        uuid.NewString(),
		Asset:     asset,
		Level:     level,
		Price:     price,
		Threshold: threshold,
		Message:   fmt.Sprintf("%s %s %s at %s %s %s", asset, verb, levelName(level), price, op, threshold),
		CreatedAt: now,
	})
}

func levelName(level string) string {
	switch level {
	case "low_buy_1":
		return "Low Buy 1"
	case "low_buy_2":
		return "Low Buy 2"
	case "high_sell_1":
		return "High Sell 1"
	case "high_sell_2":
		return "High Sell 2"
	default:
		return level
	}
}
