package portfolio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// quoteAssets are the quote currencies a ticker symbol can end in, checked in
// order. Longer/more common stablecoins first so BTCUSDT resolves to
// (BTC, USDT) and not (BTCUSD, T).
var quoteAssets = []string{
	"USDT", "BUSD", "FDUSD", "TUSD", "USDC",
	"BTC", "BNB", "ETH", "TRY", "EUR",
}

// SplitSymbol splits a ticker like "BTCUSDT" into its base and quote assets
// using the known quote-asset list.
func SplitSymbol(symbol string) (base, quote string, err error) {
	s := strings.ToUpper(symbol)
	for _, q := range quoteAssets {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return s[:len(s)-len(q)], q, nil
		}
	}
	return "", "", fmt.Errorf("unable to infer base asset for symbol %q", symbol)
}

// CandidateSymbols returns every ticker an asset could trade under, preferred
// quote first. Used to probe the price cache when no live ticker snapshot is
// available.
func CandidateSymbols(asset, preferredQuote string) []string {
	asset = strings.ToUpper(asset)
	preferredQuote = strings.ToUpper(preferredQuote)

	symbols := make([]string, 0, len(quoteAssets)+1)
	if preferredQuote != "" {
		symbols = append(symbols, asset+preferredQuote)
	}
	for _, q := range quoteAssets {
		if q == preferredQuote {
			continue
		}
		symbols = append(symbols, asset+q)
	}
	return symbols
}

// MatchSymbol finds the ticker to price a held asset against: the preferred
// quote first, then the remaining known quotes, then any listed symbol with
// the asset as prefix (scanned in sorted order so the choice is
// deterministic). Returns false when the asset has no listed market.
func MatchSymbol(asset string, prices map[string]decimal.Decimal, preferredQuote string) (string, bool) {
	asset = strings.ToUpper(asset)

	quotes := make([]string, 0, len(quoteAssets)+1)
	if preferredQuote != "" {
		quotes = append(quotes, strings.ToUpper(preferredQuote))
	}
	quotes = append(quotes, quoteAssets...)

	for _, q := range quotes {
		if _, ok := prices[asset+q]; ok {
			return asset + q, true
		}
	}

	symbols := make([]string, 0, len(prices))
	for s := range prices {
		if strings.HasPrefix(s, asset) && s != asset {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return "", false
	}
	sort.Strings(symbols)
	return symbols[0], true
}
