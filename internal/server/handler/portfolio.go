package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/portfolio"
)

// SnapshotService defines the methods the portfolio handler requires.
type SnapshotService interface {
	Snapshot(ctx context.Context) (domain.PortfolioSummary, error)
}

// PortfolioHandler serves the portfolio valuation endpoints.
type PortfolioHandler struct {
	snapshots SnapshotService
	logger    *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler with the given service and
// logger.
func NewPortfolioHandler(snapshots SnapshotService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		snapshots: snapshots,
		logger:    logger,
	}
}

// portfolioResponse is the JSON shape of a portfolio snapshot.
type portfolioResponse struct {
	AsOf               string       `json:"as_of"`
	Rows               []domain.Row `json:"rows"`
	TotalCostBasis     string       `json:"total_cost_basis"`
	TotalMarketValue   string       `json:"total_market_value"`
	TotalUnrealizedPnL string       `json:"total_unrealized_pnl"`
	TotalRealizedPnL   string       `json:"total_realized_pnl"`
	Unpriced           []string     `json:"unpriced,omitempty"`
	Failed             []string     `json:"failed,omitempty"`
}

// GetPortfolio builds a fresh snapshot and returns it as JSON.
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: portfolio snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to build portfolio snapshot")
		return
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		AsOf:               time.Now().UTC().Format(time.RFC3339),
		Rows:               summary.Rows,
		TotalCostBasis:     summary.TotalCostBasis.String(),
		TotalMarketValue:   summary.TotalMarketValue.String(),
		TotalUnrealizedPnL: summary.TotalUnrealizedPnL.String(),
		TotalRealizedPnL:   summary.TotalRealizedPnL.String(),
		Unpriced:           summary.Unpriced,
		Failed:             summary.Failed,
	})
}

// ExportPortfolio builds a fresh snapshot and streams it as a CSV download.
// GET /api/portfolio/export
func (h *PortfolioHandler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: portfolio export failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to build portfolio snapshot")
		return
	}

	filename := fmt.Sprintf("portfolio-%s.csv", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := portfolio.WriteCSV(w, summary); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: portfolio csv write failed",
			slog.String("error", err.Error()),
		)
	}
}
