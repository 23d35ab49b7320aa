package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ClientConfig holds market data client configuration.
type ClientConfig struct {
	BinanceFuturesURL string        `json:"binance_futures_url"`
	CoinGeckoURL      string        `json:"coingecko_url"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	DemoFallback      bool          `json:"demo_fallback"`
}

// DefaultClientConfig returns the production endpoints with a 10s timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BinanceFuturesURL: "https://fapi.binance.com",
		CoinGeckoURL:      "https://api.coingecko.com/api/v3",
		RequestTimeout:    10 * time.Second,
		DemoFallback:      true,
	}
}

// Client fetches market data with a provider fallback chain:
// Binance futures -> CoinGecko proxy -> deterministic demo data.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a market data client.
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.BinanceFuturesURL == "" {
		cfg = DefaultClientConfig()
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.With().Str("component", "MarketClient").Logger(),
	}
}

// FetchOHLCV returns up to limit candles for symbol/timeframe, walking the
// provider chain until one succeeds. The returned series is never empty when
// demo fallback is enabled.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (Series, error) {
	series, err := c.fetchBinanceKlines(ctx, symbol, timeframe, limit)
	if err == nil && len(series.Candles) > 0 {
		return series, nil
	}
	c.logger.Warn().Err(err).Str("symbol", symbol).Msg("binance klines unavailable, trying coingecko proxy")

	series, err = c.fetchCoinGeckoProxy(ctx, symbol, timeframe, limit)
	if err == nil && len(series.Candles) > 0 {
		return series, nil
	}

	if !c.config.DemoFallback {
		return Series{}, fmt.Errorf("all market data providers failed: %w", err)
	}
	c.logger.Warn().Err(err).Str("symbol", symbol).Msg("coingecko proxy unavailable, serving demo data")
	return GenerateDemoSeries(symbol, timeframe, limit), nil
}

func (c *Client) fetchBinanceKlines(ctx context.Context, symbol, timeframe string, limit int) (Series, error) {
	endpoint := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		c.config.BinanceFuturesURL, url.QueryEscape(symbol), url.QueryEscape(timeframe), limit)

	var rows [][]json.RawMessage
	if err := c.getJSON(ctx, endpoint, &rows); err != nil {
		return Series{}, err
	}

	candles := make([]Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		var ts int64
		if err := json.Unmarshal(row[0], &ts); err != nil {
			continue
		}
		open, err1 := parseQuotedFloat(row[1])
		high, err2 := parseQuotedFloat(row[2])
		low, err3 := parseQuotedFloat(row[3])
		closePrice, err4 := parseQuotedFloat(row[4])
		volume, err5 := parseQuotedFloat(row[5])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		candles = append(candles, Candle{
			Timestamp: ts, Open: open, High: high, Low: low, Close: closePrice, Volume: volume,
		})
	}
	if len(candles) == 0 {
		return Series{}, fmt.Errorf("binance returned no usable klines for %s", symbol)
	}
	return Series{Candles: candles, DataSource: "binance_futures"}, nil
}

// coinGeckoChart matches the market_chart response shape.
type coinGeckoChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// fetchCoinGeckoProxy synthesizes candles from CoinGecko's price line. High
// and low are approximated at +-0.5% since the chart endpoint has no true
// OHLC resolution.
func (c *Client) fetchCoinGeckoProxy(ctx context.Context, symbol, timeframe string, limit int) (Series, error) {
	geckoID := "bitcoin"
	if meta, ok := SymbolMap[symbol]; ok {
		geckoID = meta.GeckoID
	}

	days := map[string]int{"15m": 1, "1h": 3, "4h": 7, "1d": 90}[timeframe]
	if days == 0 {
		days = 7
	}
	interval := "hourly"
	if timeframe == "1d" {
		interval = "daily"
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=%s",
		c.config.CoinGeckoURL, url.PathEscape(geckoID), days, interval)

	var chart coinGeckoChart
	if err := c.getJSON(ctx, endpoint, &chart); err != nil {
		return Series{}, err
	}

	prices := chart.Prices
	if len(prices) > limit {
		prices = prices[len(prices)-limit:]
	}
	offset := len(chart.Prices) - len(prices)

	candles := make([]Candle, 0, len(prices))
	for i, p := range prices {
		volume := 0.0
		if vi := offset + i; vi < len(chart.TotalVolumes) {
			volume = chart.TotalVolumes[vi][1]
		}
		candles = append(candles, Candle{
			Timestamp: int64(p[0]),
			Open:      p[1],
			High:      p[1] * 1.005,
			Low:       p[1] * 0.995,
			Close:     p[1],
			Volume:    volume,
		})
	}
	if len(candles) == 0 {
		return Series{}, fmt.Errorf("coingecko returned no prices for %s", geckoID)
	}
	return Series{Candles: candles, DataSource: "coingecko_proxy"}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseQuotedFloat handles Binance's habit of sending numbers as strings.
func parseQuotedFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}
