package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// csvHeader is the flat export layout consumed by spreadsheets and the
// dashboard's download button. Every field is plain text; unpriced values
// render as empty cells, never as zero.
var csvHeader = []string{
	"asset", "quantity", "average_cost", "market_price",
	"market_value", "unrealized_pnl", "realized_pnl", "roi_pct",
}

// WriteCSV writes the summary as delimited text: a header, one line per row,
// and a trailing totals line.
func WriteCSV(w io.Writer, summary domain.PortfolioSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("portfolio: write csv header: %w", err)
	}

	for _, row := range summary.Rows {
		record := []string{
			row.Asset,
			row.Quantity.String(),
			row.AverageCost.String(),
			nullString(row.MarketPrice),
			nullString(row.MarketValue),
			nullString(row.UnrealizedPnL),
			row.RealizedPnL.String(),
			nullString(row.ROIPct),
		}
		if row.Err != "" {
			record = []string{row.Asset, row.Quantity.String(), "", "", "", "", "", ""}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("portfolio: write csv row %s: %w", row.Asset, err)
		}
	}

	totals := []string{
		"TOTAL", "",
		summary.TotalCostBasis.String(), "",
		summary.TotalMarketValue.String(),
		summary.TotalUnrealizedPnL.String(),
		summary.TotalRealizedPnL.String(),
		"",
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("portfolio: write csv totals: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("portfolio: flush csv: %w", err)
	}
	return nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
