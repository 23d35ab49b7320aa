package market

import "time"

// Candle represents a single OHLCV candle. Timestamp is milliseconds since epoch.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Series is an ascending-by-timestamp candle sequence tagged with the
// provider that produced it ("binance_futures", "coingecko_proxy", "demo").
type Series struct {
	Candles    []Candle `json:"candles"`
	DataSource string   `json:"dataSource"`
}

// Closes extracts the close prices in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Len returns the number of candles in the series.
func (s Series) Len() int {
	return len(s.Candles)
}

// FundingRate holds the perpetual funding snapshot. Nil fields mean the
// upstream value was unavailable; downstream scoring treats nil as neutral.
type FundingRate struct {
	Current         *float64 `json:"current"`
	AnnualizedPct   *float64 `json:"annualizedPct"`
	NextFundingTime *string  `json:"nextFundingTime"`
}

// OpenInterest holds the latest open interest value and its change over the
// fetched history window.
type OpenInterest struct {
	Latest    *float64 `json:"latest"`
	ChangePct *float64 `json:"changePct"`
}

// LongShortRatio holds the latest global long/short account ratio.
type LongShortRatio struct {
	Ratio     *float64 `json:"ratio"`
	ChangePct *float64 `json:"changePct"`
}

// FuturesContext bundles derivatives-market context for a symbol. Every
// field is nullable: absence means "no signal available", never zero bias.
type FuturesContext struct {
	FundingRate    FundingRate    `json:"fundingRate"`
	OpenInterest   OpenInterest   `json:"openInterest"`
	LongShortRatio LongShortRatio `json:"longShortRatio"`
}

// EmptyFuturesContext returns a context with every field nil, used when the
// derivatives endpoints are unavailable.
func EmptyFuturesContext() FuturesContext {
	return FuturesContext{}
}

// Coin is a search result row for the coin search endpoint.
type Coin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Pair          string `json:"pair"`
	MarketCapRank *int   `json:"marketCapRank"`
	Thumb         string `json:"thumb"`
}

// CoinMeta describes a known trading pair.
type CoinMeta struct {
	Name     string
	GeckoID  string
	Keywords []string
}

// SymbolMap lists the pairs with known CoinGecko identity and news keywords.
var SymbolMap = map[string]CoinMeta{
	"BTCUSDT":  {Name: "Bitcoin", GeckoID: "bitcoin", Keywords: []string{"bitcoin", "btc"}},
	"ETHUSDT":  {Name: "Ethereum", GeckoID: "ethereum", Keywords: []string{"ethereum", "eth"}},
	"SOLUSDT":  {Name: "Solana", GeckoID: "solana", Keywords: []string{"solana", "sol"}},
	"BNBUSDT":  {Name: "BNB", GeckoID: "binancecoin", Keywords: []string{"bnb", "binance"}},
	"XRPUSDT":  {Name: "Ripple", GeckoID: "ripple", Keywords: []string{"xrp", "ripple"}},
	"ADAUSDT":  {Name: "Cardano", GeckoID: "cardano", Keywords: []string{"ada", "cardano"}},
	"AVAXUSDT": {Name: "Avalanche", GeckoID: "avalanche-2", Keywords: []string{"avax", "avalanche"}},
	"DOGEUSDT": {Name: "Dogecoin", GeckoID: "dogecoin", Keywords: []string{"doge", "dogecoin"}},
}

// SymbolBase strips the quote currency from a pair ("BTCUSDT" -> "BTC").
func SymbolBase(symbol string) string {
	if len(symbol) > 4 && symbol[len(symbol)-4:] == "USDT" {
		return symbol[:len(symbol)-4]
	}
	return symbol
}

// IntervalDuration maps a timeframe string to its candle duration.
// Unknown timeframes default to 4h, matching the API normalization.
func IntervalDuration(timeframe string) time.Duration {
	switch timeframe {
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 4 * time.Hour
	}
}
