package market

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// geckoSearchResponse matches CoinGecko /search.
type geckoSearchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank *int   `json:"market_cap_rank"`
		Thumb         string `json:"thumb"`
	} `json:"coins"`
}

// SearchCoins queries CoinGecko's coin search and maps results to tradable
// pair rows. Results are ordered by market cap rank, unranked last.
func (c *Client) SearchCoins(ctx context.Context, keyword string, limit int) ([]Coin, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s", c.config.CoinGeckoURL, url.QueryEscape(keyword))

	var parsed geckoSearchResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("coin search failed: %w", err)
	}

	coins := make([]Coin, 0, len(parsed.Coins))
	for _, row := range parsed.Coins {
		symbol := strings.ToUpper(row.Symbol)
		if symbol == "" {
			continue
		}
		coins = append(coins, Coin{
			ID:            row.ID,
			Name:          row.Name,
			Symbol:        symbol,
			Pair:          symbol + "USDT",
			MarketCapRank: row.MarketCapRank,
			Thumb:         row.Thumb,
		})
	}

	sort.SliceStable(coins, func(i, j int) bool {
		ri, rj := coins[i].MarketCapRank, coins[j].MarketCapRank
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return *ri < *rj
	})

	if len(coins) > limit {
		coins = coins[:limit]
	}
	return coins, nil
}

// StaticCoinFallback builds search results from the known symbol map plus
// whatever the user typed, for when the search upstream is down.
func StaticCoinFallback(keyword string, limit int) []Coin {
	q := strings.ToLower(strings.TrimSpace(keyword))

	typed := strings.ToUpper(keyword)
	cleaned := make([]rune, 0, len(typed))
	for _, ch := range typed {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			cleaned = append(cleaned, ch)
		}
	}
	if len(cleaned) > 15 {
		cleaned = cleaned[:15]
	}
	typedSymbol := string(cleaned)

	merged := make([]Coin, 0, len(SymbolMap)+1)
	if typedSymbol != "" {
		merged = append(merged, Coin{
			Name:   typedSymbol,
			Symbol: typedSymbol,
			Pair:   typedSymbol + "USDT",
		})
	}

	pairs := make([]string, 0, len(SymbolMap))
	for pair := range SymbolMap {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	for _, pair := range pairs {
		meta := SymbolMap[pair]
		symbol := SymbolBase(pair)
		merged = append(merged, Coin{
			ID:     meta.GeckoID,
			Name:   meta.Name,
			Symbol: symbol,
			Pair:   pair,
		})
	}

	seen := make(map[string]bool, len(merged))
	results := make([]Coin, 0, limit)
	for _, coin := range merged {
		key := coin.ID + ":" + coin.Symbol
		if seen[key] {
			continue
		}
		seen[key] = true
		if q != "" &&
			!strings.Contains(strings.ToLower(coin.Name), q) &&
			!strings.Contains(strings.ToLower(coin.Symbol), q) &&
			!strings.Contains(strings.ToLower(coin.ID), q) {
			continue
		}
		results = append(results, coin)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// NormalizeTradingSymbol uppercases user input and ensures a USDT pair suffix.
func NormalizeTradingSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	cleaned := make([]rune, 0, len(symbol))
	for _, ch := range symbol {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			cleaned = append(cleaned, ch)
		}
	}
	symbol = string(cleaned)
	if symbol == "" {
		return "BTCUSDT"
	}
	if !strings.HasSuffix(symbol, "USDT") {
		symbol += "USDT"
	}
	return symbol
}
