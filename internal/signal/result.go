// Package signal implements the confluence scoring engine. It reduces an
// indicator snapshot, liquidity heatmap, futures positioning and catalyst
// context into a single BUY/SELL/HOLD call with graded quality, confidence
// and price levels. The engine is pure: no I/O, no clock, no shared state.
package signal

import (
	"math"

	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/detector"
	"crypto-signal-engine/internal/indicator"
	"crypto-signal-engine/internal/liquidity"
	"crypto-signal-engine/internal/market"
)

// Signal directions.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Market regimes.
const (
	RegimeUptrend   = "uptrend"
	RegimeDowntrend = "downtrend"
	RegimeRange     = "range"
)

// Evidence categories for the score breakdown.
const (
	CategoryTechnical   = "technical"
	CategoryTrend       = "trend"
	CategoryLiquidity   = "liquidity"
	CategoryDerivatives = "derivatives"
	CategoryNews        = "news"
	CategoryFundamental = "fundamental"
	CategoryCatalyst    = "catalyst"
)

// CategoryScore is the per-category buy/sell point split.
type CategoryScore struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// EntryRange is the suggested entry band around the current price.
type EntryRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// IndicatorView is the rounded indicator readout included in a result.
// Momentum, slope and volatility values are expressed in percent.
type IndicatorView struct {
	RSI            *float64                   `json:"rsi"`
	MACD           indicator.MACDResult       `json:"macd"`
	BollingerBands indicator.BollingerResult  `json:"bollingerBands"`
	EMA20          *float64                   `json:"ema20"`
	EMA50          *float64                   `json:"ema50"`
	SMA200         *float64                   `json:"sma200"`
	ATR14          *float64                   `json:"atr14"`
	ADX14          *float64                   `json:"adx14"`
	Stochastic     indicator.StochasticResult `json:"stochastic"`
	EMA20Slope     *float64                   `json:"ema20Slope"`
	EMA50Slope     *float64                   `json:"ema50Slope"`
	Momentum3      *float64                   `json:"momentum3"`
	Momentum10     *float64                   `json:"momentum10"`
	Volatility20   *float64                   `json:"volatility20"`
	VolumeRatio    *float64                   `json:"volumeRatio"`
}

// Result is the full signal payload returned to callers. Timestamp is left
// empty by the engine and stamped by the serving layer, which keeps the
// scoring math fully deterministic.
type Result struct {
	Signal           string                     `json:"signal"`
	Confidence       float64                    `json:"confidence"`
	QualityScore     float64                    `json:"qualityScore"`
	QualityGrade     string                     `json:"qualityGrade"`
	MarketType       string                     `json:"marketType"`
	CurrentPrice     float64                    `json:"currentPrice"`
	EntryRange       EntryRange                 `json:"entryRange"`
	TakeProfit1      float64                    `json:"takeProfit1"`
	TakeProfit1Pct   float64                    `json:"takeProfit1Pct"`
	TakeProfit2      float64                    `json:"takeProfit2"`
	TakeProfit2Pct   float64                    `json:"takeProfit2Pct"`
	StopLoss         float64                    `json:"stopLoss"`
	StopLossPct      float64                    `json:"stopLossPct"`
	RiskReward       float64                    `json:"riskReward"`
	Regime           string                     `json:"regime"`
	TrendStrength    float64                    `json:"trendStrength"`
	Threshold        float64                    `json:"threshold"`
	BuyScore         float64                    `json:"buyScore"`
	SellScore        float64                    `json:"sellScore"`
	Breakdown        map[string]CategoryScore   `json:"breakdown"`
	Reasons          []string                   `json:"reasons"`
	Indicators       IndicatorView              `json:"indicators"`
	FuturesContext   market.FuturesContext      `json:"futuresContext"`
	CatalystWatch    catalyst.Watch             `json:"catalystWatch"`
	LiquidityHeatmap *liquidity.Heatmap         `json:"liquidityHeatmap"`
	Breakout         detector.Breakout          `json:"breakout"`
	LiquidationRisk  detector.LiquidationMeter  `json:"liquidationRisk"`
	Timestamp        string                     `json:"timestamp"`
	DataSource       string                     `json:"dataSource"`
}

func buildIndicatorView(snap indicator.Snapshot) IndicatorView {
	return IndicatorView{
		RSI: roundPtr(snap.RSI, 2),
		MACD: indicator.MACDResult{
			Line:      roundPtr(snap.MACD.Line, 4),
			Signal:    roundPtr(snap.MACD.Signal, 4),
			Histogram: roundPtr(snap.MACD.Histogram, 4),
		},
		BollingerBands: indicator.BollingerResult{
			Upper:  roundPtr(snap.BollingerBands.Upper, 2),
			Middle: roundPtr(snap.BollingerBands.Middle, 2),
			Lower:  roundPtr(snap.BollingerBands.Lower, 2),
		},
		EMA20:  roundPtr(snap.EMA20, 2),
		EMA50:  roundPtr(snap.EMA50, 2),
		SMA200: roundPtr(snap.SMA200, 2),
		ATR14:  roundPtr(snap.ATR14, 4),
		ADX14:  roundPtr(snap.ADX14, 2),
		Stochastic: indicator.StochasticResult{
			K:     roundPtr(snap.Stochastic.K, 2),
			D:     roundPtr(snap.Stochastic.D, 2),
			PrevK: roundPtr(snap.Stochastic.PrevK, 2),
			PrevD: roundPtr(snap.Stochastic.PrevD, 2),
		},
		EMA20Slope:   roundPctPtr(snap.EMA20Slope),
		EMA50Slope:   roundPctPtr(snap.EMA50Slope),
		Momentum3:    roundPctPtr(snap.Momentum3),
		Momentum10:   roundPctPtr(snap.Momentum10),
		Volatility20: roundPctPtr(snap.Volatility20),
		VolumeRatio:  roundPtr(snap.VolumeRatio, 2),
	}
}

// roundFuturesContext rounds the derivatives readings for display without
// touching nil sentinels. Funding keeps 6 decimals, everything else 2.
func roundFuturesContext(fc market.FuturesContext) market.FuturesContext {
	return market.FuturesContext{
		FundingRate: market.FundingRate{
			Current:         roundPtr(fc.FundingRate.Current, 6),
			AnnualizedPct:   roundPtr(fc.FundingRate.AnnualizedPct, 2),
			NextFundingTime: fc.FundingRate.NextFundingTime,
		},
		OpenInterest: market.OpenInterest{
			Latest:    roundPtr(fc.OpenInterest.Latest, 2),
			ChangePct: roundPtr(fc.OpenInterest.ChangePct, 2),
		},
		LongShortRatio: market.LongShortRatio{
			Ratio:     roundPtr(fc.LongShortRatio.Ratio, 2),
			ChangePct: roundPtr(fc.LongShortRatio.ChangePct, 2),
		},
	}
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	r := roundTo(*v, decimals)
	return &r
}

func roundPctPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := roundTo(*v*100, 2)
	return &r
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
