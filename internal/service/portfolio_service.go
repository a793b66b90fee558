// Package service wires the exchange client, cache, store, and the valuation
// pipeline into the operations the server and the batch modes run.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/platform/binance"
	"github.com/davidhsu/binfolio/internal/portfolio"
)

// Exchange is the slice of the Binance client the portfolio service needs.
type Exchange interface {
	GetSymbolPrices(ctx context.Context) (map[string]decimal.Decimal, error)
	GetSpotBalances(ctx context.Context) ([]domain.RawHolding, error)
	GetStakingPositions(ctx context.Context) ([]domain.RawHolding, error)
	GetAutoInvestPositions(ctx context.Context) ([]domain.RawHolding, error)
	GetDualInvestPositions(ctx context.Context) ([]domain.RawHolding, error)
	GetMyTrades(ctx context.Context, symbol string, limit int) ([]binance.MyTrade, error)
}

// PortfolioService builds portfolio snapshots: it discovers holdings across
// account types, prices them, reconstructs cost bases from trade history, and
// rolls everything into one summary.
type PortfolioService struct {
	exchange   Exchange
	prices     domain.PriceCache // may be nil (cache disabled)
	logger     *slog.Logger
	quote      string
	feePolicy  portfolio.FeePolicy
	tradeLimit int
	include    map[domain.Source]bool
}

// PortfolioServiceConfig carries the tunables for snapshot building.
type PortfolioServiceConfig struct {
	// Quote is the preferred quote currency for pricing and trade lookups.
	Quote string
	// FeePolicy selects how sell-side fees are attributed: deducted from
	// proceeds or added to the remaining basis. Buy fees always enter the cost.
	FeePolicy portfolio.FeePolicy
	// TradeLimit caps the number of fills fetched per symbol.
	TradeLimit int
	// Sources restricts which account types are included; empty means all.
	Sources []domain.Source
}

// NewPortfolioService creates a PortfolioService. prices may be nil to run
// without a cache.
func NewPortfolioService(exchange Exchange, prices domain.PriceCache, cfg PortfolioServiceConfig, logger *slog.Logger) *PortfolioService {
	quote := cfg.Quote
	if quote == "" {
		quote = "USDT"
	}
	var include map[domain.Source]bool
	if len(cfg.Sources) > 0 {
		include = make(map[domain.Source]bool, len(cfg.Sources))
		for _, s := range cfg.Sources {
			include[s] = true
		}
	}
	return &PortfolioService{
		exchange:   exchange,
		prices:     prices,
		logger:     logger.With(slog.String("component", "portfolio_service")),
		quote:      quote,
		feePolicy:  cfg.FeePolicy,
		tradeLimit: cfg.TradeLimit,
		include:    include,
	}
}

// Snapshot fetches holdings and prices, reconstructs every asset's cost basis
// from trade history, and returns the aggregated summary. A single asset's
// failure becomes an error row, never an aborted snapshot.
func (s *PortfolioService) Snapshot(ctx context.Context) (domain.PortfolioSummary, error) {
	holdings, tickers, err := s.fetchAccount(ctx)
	if err != nil {
		return domain.PortfolioSummary{}, err
	}

	positions, skipped := portfolio.Normalize(holdings, s.include)
	for _, skipErr := range skipped {
		s.logger.WarnContext(ctx, "skipping holding record",
			slog.String("error", skipErr.Error()),
		)
	}

	assets, byAsset := portfolio.CombineHoldings(positions)

	results := make([]portfolio.AssetResult, 0, len(assets))
	for _, asset := range assets {
		results = append(results, s.assetResult(ctx, asset, byAsset[asset].Quantity, tickers))
	}

	return portfolio.Summarize(results), nil
}

// assetResult runs one asset through pricing, cost basis, and valuation.
func (s *PortfolioService) assetResult(ctx context.Context, asset string, held decimal.Decimal, tickers map[string]decimal.Decimal) portfolio.AssetResult {
	res := portfolio.AssetResult{Asset: asset, Quantity: held}

	price, symbol := s.priceFor(asset, tickers)

	var history []domain.Transaction
	if symbol != "" {
		trades, err := s.exchange.GetMyTrades(ctx, symbol, s.tradeLimit)
		if err != nil {
			res.Err = fmt.Errorf("portfolio_service: trades for %s: %w", asset, err)
			return res
		}
		history = s.toTransactions(ctx, trades, symbol)
	}

	ledger := portfolio.NewLedger(history)
	cb, err := portfolio.CostBasis(asset, ledger.Sorted(), s.feePolicy)
	if err != nil {
		res.Err = err
		return res
	}

	// Trade history misses deposits, transfers, and earn rewards, so the
	// balance actually held is the quantity we value at the average cost the
	// fills establish.
	cb.RemainingQuantity = held

	val, err := portfolio.Valuate(cb, price)
	if err != nil {
		res.Err = err
		return res
	}

	res.CostBasis = cb
	res.Valuation = val
	return res
}

// priceFor resolves an asset's market price from the ticker snapshot. The
// quote currency itself is worth exactly one unit by definition. Returns the
// matched symbol so the caller can fetch its trade history; empty when the
// asset has no listed market.
func (s *PortfolioService) priceFor(asset string, tickers map[string]decimal.Decimal) (decimal.NullDecimal, string) {
	if asset == s.quote {
		return decimal.NewNullDecimal(decimal.NewFromInt(1)), ""
	}

	symbol, ok := portfolio.MatchSymbol(asset, tickers, s.quote)
	if !ok {
		return decimal.NullDecimal{}, ""
	}
	return decimal.NewNullDecimal(tickers[symbol]), symbol
}

// toTransactions converts exchange fills to ledger transactions, dropping the
// ones that cannot be parsed.
func (s *PortfolioService) toTransactions(ctx context.Context, trades []binance.MyTrade, symbol string) []domain.Transaction {
	base, quoteAsset, err := portfolio.SplitSymbol(symbol)
	if err != nil {
		s.logger.WarnContext(ctx, "cannot split symbol for trade history",
			slog.String("symbol", symbol),
		)
		return nil
	}

	txs := make([]domain.Transaction, 0, len(trades))
	for _, t := range trades {
		tx, err := t.ToTransaction(base, quoteAsset)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unparseable trade",
				slog.String("symbol", symbol),
				slog.Int64("trade_id", t.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		txs = append(txs, tx)
	}
	return txs
}

// fetchAccount pulls holdings from every account type and the full ticker
// snapshot concurrently. Prices fall back to the cache when the ticker fetch
// fails; a fresh snapshot refreshes the cache for the next fallback.
func (s *PortfolioService) fetchAccount(ctx context.Context) ([]domain.RawHolding, map[string]decimal.Decimal, error) {
	var (
		spot, earn, auto, dual []domain.RawHolding
		tickers                map[string]decimal.Decimal
		tickerErr              error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		spot, err = s.exchange.GetSpotBalances(gctx)
		if err != nil {
			return fmt.Errorf("portfolio_service: spot balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		earn, err = s.exchange.GetStakingPositions(gctx)
		if err != nil {
			return fmt.Errorf("portfolio_service: staking positions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		auto, err = s.exchange.GetAutoInvestPositions(gctx)
		if err != nil {
			return fmt.Errorf("portfolio_service: auto-invest positions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dual, err = s.exchange.GetDualInvestPositions(gctx)
		if err != nil {
			return fmt.Errorf("portfolio_service: dual-invest positions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		tickers, tickerErr = s.exchange.GetSymbolPrices(gctx)
		// Ticker failure is recoverable through the cache; handled below.
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	holdings := make([]domain.RawHolding, 0, len(spot)+len(earn)+len(auto)+len(dual))
	holdings = append(holdings, spot...)
	holdings = append(holdings, earn...)
	holdings = append(holdings, auto...)
	holdings = append(holdings, dual...)

	switch {
	case tickerErr == nil:
		if s.prices != nil {
			if err := s.prices.SetPrices(ctx, tickers, time.Now().UTC()); err != nil {
				s.logger.WarnContext(ctx, "price cache refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	case s.prices != nil:
		s.logger.WarnContext(ctx, "ticker fetch failed, using cached prices",
			slog.String("error", tickerErr.Error()),
		)
		cached, err := s.cachedPrices(ctx, holdings)
		if err != nil {
			return nil, nil, fmt.Errorf("portfolio_service: ticker fetch failed and cache unavailable (%v): %w", tickerErr, domain.ErrPriceUnavailable)
		}
		tickers = cached
	default:
		return nil, nil, fmt.Errorf("portfolio_service: symbol prices (%v): %w", tickerErr, domain.ErrPriceUnavailable)
	}

	return holdings, tickers, nil
}

// cachedPrices builds a best-effort ticker map from the cache, probing each
// held asset against the known quote currencies.
func (s *PortfolioService) cachedPrices(ctx context.Context, holdings []domain.RawHolding) (map[string]decimal.Decimal, error) {
	seen := make(map[string]bool, len(holdings))
	var symbols []string
	for _, h := range holdings {
		if h.Asset == "" || seen[h.Asset] {
			continue
		}
		seen[h.Asset] = true
		symbols = append(symbols, portfolio.CandidateSymbols(h.Asset, s.quote)...)
	}
	return s.prices.GetPrices(ctx, symbols)
}
