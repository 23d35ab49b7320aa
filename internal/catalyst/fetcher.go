package catalyst

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crypto-signal-engine/internal/market"
)

// FetcherConfig holds the upstream endpoints for catalyst data.
type FetcherConfig struct {
	CryptoCompareURL string        `json:"cryptoCompareUrl"`
	CoinGeckoURL     string        `json:"coinGeckoUrl"`
	RequestTimeout   time.Duration `json:"requestTimeout"`
}

// DefaultFetcherConfig returns the public endpoint defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		CryptoCompareURL: "https://min-api.cryptocompare.com",
		CoinGeckoURL:     "https://api.coingecko.com/api/v3",
		RequestTimeout:   10 * time.Second,
	}
}

// Fetcher pulls news, trending and coin statistics from public aggregators
// and reduces them to a Watch. Every upstream is optional: a failed call
// only zeroes its own contribution.
type Fetcher struct {
	config     FetcherConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFetcher creates a catalyst fetcher with its own HTTP client.
func NewFetcher(cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	if cfg.CryptoCompareURL == "" {
		cfg.CryptoCompareURL = DefaultFetcherConfig().CryptoCompareURL
	}
	if cfg.CoinGeckoURL == "" {
		cfg.CoinGeckoURL = DefaultFetcherConfig().CoinGeckoURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultFetcherConfig().RequestTimeout
	}
	return &Fetcher{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.With().Str("component", "catalyst").Logger(),
	}
}

// Fetch builds the full catalyst Watch for a trading pair. It never returns
// an error: when everything upstream is down the result degrades to the
// neutral Watch.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) Watch {
	base := market.SymbolBase(symbol)
	keywords := []string{strings.ToLower(base)}
	geckoID := ""
	if meta, ok := market.SymbolMap[symbol]; ok {
		keywords = meta.Keywords
		geckoID = meta.GeckoID
	}

	rows, err := f.fetchNews(ctx)
	if err != nil {
		f.logger.Debug().Err(err).Msg("news feed unavailable")
	}
	trending, err := f.fetchTrending(ctx)
	if err != nil {
		f.logger.Debug().Err(err).Msg("trending feed unavailable")
	}

	fundamentalScore := 0.0
	var fundamentalSignals []string
	if geckoID != "" {
		stats, err := f.fetchFundamentals(ctx, geckoID)
		if err != nil {
			f.logger.Debug().Err(err).Str("coin", geckoID).Msg("coin stats unavailable")
		} else {
			fundamentalScore, fundamentalSignals = ScoreFundamentals(stats)
		}
	}

	newsScore, newsSignals, catalysts := ScoreNews(rows, keywords)

	var trendingRank *int
	for _, t := range trending {
		if t.Symbol == base {
			rank := t.Rank
			trendingRank = &rank
			break
		}
	}

	return Combine(newsScore, fundamentalScore, newsSignals, fundamentalSignals, catalysts, trending, trendingRank)
}

type newsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		SourceInfo  *struct {
			Name string `json:"name"`
		} `json:"source_info"`
		PublishedOn int64 `json:"published_on"`
	} `json:"Data"`
}

func (f *Fetcher) fetchNews(ctx context.Context) ([]NewsItem, error) {
	endpoint := f.config.CryptoCompareURL + "/data/v2/news/?lang=EN&categories=BTC,ETH,Market,Regulation&excludeCategories=Sponsored&limit=40"

	var parsed newsResponse
	if err := f.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(parsed.Data))
	for _, row := range parsed.Data {
		source := row.Source
		if row.SourceInfo != nil && row.SourceInfo.Name != "" {
			source = row.SourceInfo.Name
		}
		if source == "" {
			source = "Unknown"
		}
		var publishedAt *string
		if row.PublishedOn > 0 {
			ts := time.Unix(row.PublishedOn, 0).UTC().Format(time.RFC3339)
			publishedAt = &ts
		}
		items = append(items, NewsItem{
			Title:       row.Title,
			Body:        row.Body,
			Source:      source,
			URL:         row.URL,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank *int   `json:"market_cap_rank"`
			Data          *struct {
				PriceChange24h map[string]float64 `json:"price_change_percentage_24h"`
			} `json:"data"`
		} `json:"item"`
	} `json:"coins"`
}

func (f *Fetcher) fetchTrending(ctx context.Context) ([]TrendingTopic, error) {
	endpoint := f.config.CoinGeckoURL + "/search/trending"

	var parsed trendingResponse
	if err := f.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	topics := make([]TrendingTopic, 0, len(parsed.Coins))
	for i, entry := range parsed.Coins {
		var change *float64
		if entry.Item.Data != nil {
			if usd, ok := entry.Item.Data.PriceChange24h["usd"]; ok {
				change = &usd
			}
		}
		topics = append(topics, TrendingTopic{
			Rank:           i + 1,
			Name:           entry.Item.Name,
			Symbol:         strings.ToUpper(entry.Item.Symbol),
			PriceChange24h: change,
			MarketCapRank:  entry.Item.MarketCapRank,
		})
	}
	return topics, nil
}

type coinStatsResponse struct {
	MarketData *struct {
		MarketCap         map[string]float64 `json:"market_cap"`
		FullyDilutedValue map[string]float64 `json:"fully_diluted_valuation"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		CirculatingSupply *float64           `json:"circulating_supply"`
		TotalSupply       *float64           `json:"total_supply"`
	} `json:"market_data"`
	DeveloperData *struct {
		CommitCount4Weeks *int `json:"commit_count_4_weeks"`
	} `json:"developer_data"`
	CommunityData *struct {
		TwitterFollowers *int `json:"twitter_followers"`
	} `json:"community_data"`
}

func (f *Fetcher) fetchFundamentals(ctx context.Context, geckoID string) (FundamentalStats, error) {
	endpoint := fmt.Sprintf(
		"%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=true&developer_data=true&sparkline=false",
		f.config.CoinGeckoURL, geckoID)

	var parsed coinStatsResponse
	if err := f.getJSON(ctx, endpoint, &parsed); err != nil {
		return FundamentalStats{}, err
	}

	stats := FundamentalStats{}
	if md := parsed.MarketData; md != nil {
		stats.MarketCap = usdValue(md.MarketCap)
		stats.FullyDilutedValue = usdValue(md.FullyDilutedValue)
		stats.Volume24h = usdValue(md.TotalVolume)
		stats.CirculatingSupply = md.CirculatingSupply
		stats.TotalSupply = md.TotalSupply
	}
	if dd := parsed.DeveloperData; dd != nil {
		stats.CommitCount4Weeks = dd.CommitCount4Weeks
	}
	if cd := parsed.CommunityData; cd != nil {
		stats.TwitterFollowers = cd.TwitterFollowers
	}
	return stats, nil
}

func usdValue(m map[string]float64) *float64 {
	if m == nil {
		return nil
	}
	if v, ok := m["usd"]; ok {
		return &v
	}
	return nil
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
