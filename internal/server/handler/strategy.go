package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/domain"
)

// StrategyHandler serves the buy/sell level configuration endpoints.
type StrategyHandler struct {
	store  domain.StrategyStore
	logger *slog.Logger
}

// NewStrategyHandler creates a StrategyHandler with the given store and logger.
func NewStrategyHandler(store domain.StrategyStore, logger *slog.Logger) *StrategyHandler {
	return &StrategyHandler{
		store:  store,
		logger: logger,
	}
}

// strategyLevelsRequest is the JSON body for level updates. Levels are decimal
// strings; zero disables a level.
type strategyLevelsRequest struct {
	LowBuy1   decimal.Decimal `json:"low_buy_1"`
	LowBuy2   decimal.Decimal `json:"low_buy_2"`
	HighSell1 decimal.Decimal `json:"high_sell_1"`
	HighSell2 decimal.Decimal `json:"high_sell_2"`
}

// listStrategyLevelsResponse wraps the list of configured assets.
type listStrategyLevelsResponse struct {
	Strategies []domain.StrategyLevels `json:"strategies"`
}

// ListLevels returns the levels for every configured asset.
// GET /api/strategies
func (h *StrategyHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list strategy levels failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list strategy levels")
		return
	}

	if all == nil {
		all = []domain.StrategyLevels{}
	}
	writeJSON(w, http.StatusOK, listStrategyLevelsResponse{Strategies: all})
}

// GetLevels returns the levels for one asset.
// GET /api/strategies/{asset}
func (h *StrategyHandler) GetLevels(w http.ResponseWriter, r *http.Request) {
	asset := strings.ToUpper(pathParam(r, "asset"))

	levels, err := h.store.Get(r.Context(), asset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no strategy levels for "+asset)
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get strategy levels failed",
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get strategy levels")
		return
	}

	writeJSON(w, http.StatusOK, levels)
}

// PutLevels creates or replaces the levels for one asset.
// PUT /api/strategies/{asset}
func (h *StrategyHandler) PutLevels(w http.ResponseWriter, r *http.Request) {
	asset := strings.ToUpper(pathParam(r, "asset"))
	if asset == "" {
		writeError(w, http.StatusBadRequest, "asset is required")
		return
	}

	var req strategyLevelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	for _, level := range []decimal.Decimal{req.LowBuy1, req.LowBuy2, req.HighSell1, req.HighSell2} {
		if level.IsNegative() {
			writeError(w, http.StatusBadRequest, "levels must not be negative")
			return
		}
	}

	levels := domain.StrategyLevels{
		Asset:     asset,
		LowBuy1:   req.LowBuy1,
		LowBuy2:   req.LowBuy2,
		HighSell1: req.HighSell1,
		HighSell2: req.HighSell2,
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.store.Upsert(r.Context(), levels); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: upsert strategy levels failed",
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update strategy levels")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "updated",
		"asset":  asset,
	})
}

// DeleteLevels removes the levels for one asset.
// DELETE /api/strategies/{asset}
func (h *StrategyHandler) DeleteLevels(w http.ResponseWriter, r *http.Request) {
	asset := strings.ToUpper(pathParam(r, "asset"))

	if err := h.store.Delete(r.Context(), asset); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: delete strategy levels failed",
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete strategy levels")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"asset":  asset,
	})
}
