// Package catalyst normalizes news, trending and fundamental data into the
// CatalystWatch shape consumed by the scoring engine.
package catalyst

// Catalyst is one scored news item.
type Catalyst struct {
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	URL         string  `json:"url"`
	PublishedAt *string `json:"publishedAt"`
	Sentiment   string  `json:"sentiment"` // Bullish, Bearish, Neutral
	Impact      float64 `json:"impact"`
}

// TrendingTopic is one row of the trending coins list.
type TrendingTopic struct {
	Rank           int      `json:"rank"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	PriceChange24h *float64 `json:"priceChange24h"`
	MarketCapRank  *int     `json:"marketCapRank"`
}

// Watch aggregates every catalyst signal for a symbol. Scores are bounded
// to [-100, 100]; a fully neutral Watch (zero scores, empty lists) is the
// degraded fallback when upstream data is unavailable.
type Watch struct {
	SentimentScore     float64         `json:"sentimentScore"`
	TrendBoost         float64         `json:"trendBoost"`
	NewsScore          float64         `json:"newsScore"`
	FundamentalScore   float64         `json:"fundamentalScore"`
	CombinedScore      float64         `json:"combinedScore"`
	SentimentLabel     string          `json:"sentimentLabel"`
	SymbolTrendingRank *int            `json:"symbolTrendingRank"`
	NewsSignals        []string        `json:"newsSignals"`
	FundamentalSignals []string        `json:"fundamentalSignals"`
	Catalysts          []Catalyst      `json:"catalysts"`
	TrendingTopics     []TrendingTopic `json:"trendingTopics"`
}

// Neutral returns the all-neutral fallback Watch.
func Neutral() Watch {
	return Watch{
		SentimentLabel: "Neutral",
		Catalysts:      []Catalyst{},
		TrendingTopics: []TrendingTopic{},
	}
}

// FundamentalStats carries the raw coin statistics used for the
// fundamental sub-score. Nil fields are skipped, contributing no points.
type FundamentalStats struct {
	MarketCap         *float64
	FullyDilutedValue *float64
	Volume24h         *float64
	CirculatingSupply *float64
	TotalSupply       *float64
	CommitCount4Weeks *int
	TwitterFollowers  *int
}

// NewsItem is a raw news row before relevance filtering.
type NewsItem struct {
	Title       string
	Body        string
	Source      string
	URL         string
	PublishedAt *string
}
