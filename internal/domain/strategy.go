package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StrategyLevels holds a user's buy/sell price targets for one asset. A level
// of zero means the level is not set and never triggers.
type StrategyLevels struct {
	Asset     string          `json:"asset"`
	LowBuy1   decimal.Decimal `json:"low_buy_1"`
	LowBuy2   decimal.Decimal `json:"low_buy_2"`
	HighSell1 decimal.Decimal `json:"high_sell_1"`
	HighSell2 decimal.Decimal `json:"high_sell_2"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Alert is a triggered strategy level for one asset.
type Alert struct {
	ID        string          `json:"id"`
	Asset     string          `json:"asset"`
	Level     string          `json:"level"` // "low_buy_1", "high_sell_2", ...
	Price     decimal.Decimal `json:"price"`
	Threshold decimal.Decimal `json:"threshold"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}
