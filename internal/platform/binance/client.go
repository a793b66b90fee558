// Package binance is the REST client for the Binance exchange API, covering
// the read-only account and market-data endpoints the dashboard needs.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidhsu/binfolio/internal/crypto"
	"github.com/davidhsu/binfolio/internal/domain"
)

// DefaultBaseURL is the production Binance REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// stakingProducts are the product codes queried for Earn positions. The
// lending variants cover legacy flexible/fixed savings accounts.
var stakingProducts = []string{"STAKING", "LENDING", "LENDING_DAILY", "LENDING_FIXED"}

// Client is the REST client for the Binance API. Signed endpoints use
// HMAC-SHA256 request signing with the configured credentials.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
	logger     *slog.Logger

	// now is the timestamp source for signed requests; overridable in tests.
	now func() time.Time
}

// NewClient creates a Binance REST client. baseURL falls back to
// DefaultBaseURL when empty.
func NewClient(baseURL, apiKey, apiSecret string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		auth:    &crypto.HMACAuth{Key: apiKey, Secret: apiSecret},
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With(slog.String("component", "binance")),
		now:    time.Now,
	}
}

// GetSymbolPrices returns the current price for every listed symbol.
func (c *Client) GetSymbolPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", nil, false)
	if err != nil {
		return nil, fmt.Errorf("binance: get symbol prices: %w", err)
	}

	var tickers []TickerPrice
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("binance: decode ticker prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, t := range tickers {
		p, err := parsePrice(t.Price)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping unparseable ticker",
				slog.String("symbol", t.Symbol),
				slog.String("price", t.Price),
			)
			continue
		}
		prices[t.Symbol] = p
	}
	return prices, nil
}

// GetSpotBalances returns every spot wallet balance with a positive total
// (free + locked).
func (c *Client) GetSpotBalances(ctx context.Context) ([]domain.RawHolding, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/sapi/v1/capital/config/getall", nil, true)
	if err != nil {
		return nil, fmt.Errorf("binance: get spot balances: %w", err)
	}

	var coins []CoinBalance
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("binance: decode spot balances: %w", err)
	}

	var holdings []domain.RawHolding
	for _, coin := range coins {
		free, err1 := decimal.NewFromString(zeroIfEmpty(coin.Free))
		locked, err2 := decimal.NewFromString(zeroIfEmpty(coin.Locked))
		if err1 != nil || err2 != nil {
			c.logger.WarnContext(ctx, "skipping unparseable balance",
				slog.String("coin", coin.Coin),
			)
			continue
		}
		if !free.Add(locked).IsPositive() {
			continue
		}
		holdings = append(holdings, domain.RawHolding{
			Source:   domain.SourceSpot,
			Asset:    coin.Coin,
			Quantity: free,
			Locked:   locked,
		})
	}
	return holdings, nil
}

// GetStakingPositions returns Earn holdings across all staking and lending
// product types. A product type that cannot be fetched is skipped with a
// debug log so a single discontinued product does not hide the rest.
func (c *Client) GetStakingPositions(ctx context.Context) ([]domain.RawHolding, error) {
	var holdings []domain.RawHolding

	for _, product := range stakingProducts {
		params := url.Values{}
		params.Set("product", product)

		body, err := c.doRequest(ctx, http.MethodPost, "/sapi/v1/staking/productPosition?"+params.Encode(), nil, true)
		if err != nil {
			c.logger.DebugContext(ctx, "staking product unavailable",
				slog.String("product", product),
				slog.String("error", err.Error()),
			)
			continue
		}

		var positions []StakingPosition
		if err := json.Unmarshal(body, &positions); err != nil {
			c.logger.DebugContext(ctx, "staking product response unreadable",
				slog.String("product", product),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, pos := range positions {
			amount, err := decimal.NewFromString(zeroIfEmpty(pos.Amount))
			if err != nil || !amount.IsPositive() {
				continue
			}
			holdings = append(holdings, domain.RawHolding{
				Source:   domain.SourceEarn,
				Asset:    pos.Asset,
				Quantity: amount,
			})
		}
	}
	return holdings, nil
}

// GetAutoInvestPositions returns accumulated Auto-Invest plan holdings.
// Unavailability is not an error: accounts without plans get an empty slice.
func (c *Client) GetAutoInvestPositions(ctx context.Context) ([]domain.RawHolding, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/sapi/v1/lending/auto-invest/positions", nil, true)
	if err != nil {
		c.logger.DebugContext(ctx, "auto-invest positions unavailable",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var resp struct {
		Positions []AutoInvestPosition `json:"positions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("binance: decode auto-invest positions: %w", err)
	}

	var holdings []domain.RawHolding
	for _, pos := range resp.Positions {
		amount, err := decimal.NewFromString(zeroIfEmpty(pos.TotalAmount))
		if err != nil || !amount.IsPositive() {
			continue
		}
		holdings = append(holdings, domain.RawHolding{
			Source:   domain.SourceAutoInvest,
			Asset:    pos.TargetAsset,
			Quantity: amount,
		})
	}
	return holdings, nil
}

// GetDualInvestPositions returns active Dual Investment subscriptions.
// Unavailability is not an error, matching GetAutoInvestPositions.
func (c *Client) GetDualInvestPositions(ctx context.Context) ([]domain.RawHolding, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/sapi/v1/lending/dual/daily/product/list", nil, true)
	if err != nil {
		c.logger.DebugContext(ctx, "dual-investment positions unavailable",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	var positions []DualInvestPosition
	if err := json.Unmarshal(body, &positions); err != nil {
		return nil, fmt.Errorf("binance: decode dual-investment positions: %w", err)
	}

	var holdings []domain.RawHolding
	for _, pos := range positions {
		amount, err := decimal.NewFromString(zeroIfEmpty(pos.SubscriptionAmount))
		if err != nil || !amount.IsPositive() {
			continue
		}
		holdings = append(holdings, domain.RawHolding{
			Source:   domain.SourceDualInvest,
			Asset:    pos.Underlying,
			Quantity: amount,
		})
	}
	return holdings, nil
}

// GetMyTrades returns the account's fills for one symbol, most recent last.
func (c *Client) GetMyTrades(ctx context.Context, symbol string, limit int) ([]MyTrade, error) {
	if limit <= 0 {
		limit = 1000
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/myTrades?"+params.Encode(), nil, true)
	if err != nil {
		return nil, fmt.Errorf("binance: get trades for %s: %w", symbol, err)
	}

	var trades []MyTrade
	if err := json.Unmarshal(body, &trades); err != nil {
		return nil, fmt.Errorf("binance: decode trades for %s: %w", symbol, err)
	}
	return trades, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, optionally signs, sends, and reads an HTTP request. For
// signed requests the timestamp and HMAC signature are appended to the query
// string and the API key is sent in the X-MBX-APIKEY header.
func (c *Client) doRequest(ctx context.Context, method, pathAndQuery string, body io.Reader, signed bool) ([]byte, error) {
	fullURL := c.baseURL + pathAndQuery

	if signed {
		u, err := url.Parse(fullURL)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		query := u.Query()
		query.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		encoded := query.Encode()
		u.RawQuery = encoded + "&signature=" + c.auth.Sign(encoded)
		fullURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.auth.Key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("credentials rejected (check API key/secret and IP whitelist): %w", domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	return respBody, nil
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
