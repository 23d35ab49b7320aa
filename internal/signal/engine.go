package signal

import (
	"fmt"
	"math"

	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/detector"
	"crypto-signal-engine/internal/indicator"
	"crypto-signal-engine/internal/liquidity"
	"crypto-signal-engine/internal/market"
)

// Input carries everything the engine scores. Futures and Catalyst may be
// fully degraded (all-nil / neutral) shapes; the engine treats absent
// evidence as zero contribution, never as an error.
type Input struct {
	Series        market.Series
	SignalType    string // scalp, intraday, swing
	RiskTolerance string // conservative, moderate, aggressive
	Futures       market.FuturesContext
	Catalyst      catalyst.Watch
}

var riskThresholds = map[string]float64{
	"conservative": 5.1,
	"moderate":     3.8,
	"aggressive":   2.8,
}

// accumulator collects weighted evidence for both sides during the single
// rule pass. Reasons keep insertion order for display.
type accumulator struct {
	buyScore      float64
	sellScore     float64
	buyEvidence   int
	sellEvidence  int
	softPenalties int
	reasons       []string
	breakdown     map[string]CategoryScore
}

func newAccumulator() *accumulator {
	breakdown := make(map[string]CategoryScore, 7)
	for _, c := range []string{
		CategoryTechnical, CategoryTrend, CategoryLiquidity, CategoryDerivatives,
		CategoryNews, CategoryFundamental, CategoryCatalyst,
	} {
		breakdown[c] = CategoryScore{}
	}
	return &accumulator{breakdown: breakdown}
}

func (a *accumulator) addBuy(points float64, category, reason string) {
	a.buyScore += points
	a.buyEvidence++
	cs := a.breakdown[category]
	cs.Buy += points
	a.breakdown[category] = cs
	a.reasons = append(a.reasons, reason)
}

func (a *accumulator) addSell(points float64, category, reason string) {
	a.sellScore += points
	a.sellEvidence++
	cs := a.breakdown[category]
	cs.Sell += points
	a.breakdown[category] = cs
	a.reasons = append(a.reasons, reason)
}

func (a *accumulator) note(reason string) {
	a.reasons = append(a.reasons, reason)
}

// soften scales both sides down. Used for the documented soft penalties
// (weak ADX, Bollinger squeeze, thin volume, deleveraging).
func (a *accumulator) soften(factor float64, reason string) {
	a.buyScore *= factor
	a.sellScore *= factor
	a.softPenalties++
	a.reasons = append(a.reasons, reason)
}

// bump adds points to one side's score and breakdown without counting as a
// fresh piece of evidence.
func (a *accumulator) bump(buySide bool, points float64, category string) {
	cs := a.breakdown[category]
	if buySide {
		a.buyScore += points
		cs.Buy += points
	} else {
		a.sellScore += points
		cs.Sell += points
	}
	a.breakdown[category] = cs
}

// classifyRegime derives the market regime from EMA separation and trend
// strength. Trend strength is ADX when available, otherwise a coarse proxy
// from the EMA bias itself.
func classifyRegime(snap indicator.Snapshot) (regime string, trendBias, trendStrength float64, strongTrend, weakTrend bool) {
	if snap.EMA20 != nil && snap.EMA50 != nil && snap.CurrentPrice != 0 {
		trendBias = (*snap.EMA20 - *snap.EMA50) / snap.CurrentPrice
	}

	if snap.ADX14 != nil {
		trendStrength = *snap.ADX14
	} else if math.Abs(trendBias) >= 0.012 {
		trendStrength = 23
	} else {
		trendStrength = 16
	}

	strongTrend = math.Abs(trendBias) >= 0.009 && trendStrength >= 22
	weakTrend = trendStrength < 18

	switch {
	case strongTrend && trendBias > 0:
		regime = RegimeUptrend
	case strongTrend:
		regime = RegimeDowntrend
	case weakTrend:
		regime = RegimeRange
	case math.Abs(trendBias) >= 0.009 && trendBias > 0:
		regime = RegimeUptrend
	case math.Abs(trendBias) >= 0.009:
		regime = RegimeDowntrend
	default:
		regime = RegimeRange
	}
	return regime, trendBias, trendStrength, strongTrend, weakTrend
}

// Generate runs the full confluence pass and returns the scored signal.
// Deterministic for identical inputs; the Timestamp field is left for the
// caller to stamp.
func Generate(input Input) Result {
	snap := indicator.Compute(input.Series)
	price := snap.CurrentPrice
	closes := input.Series.Closes()

	heatmap := liquidity.Build(input.Series.Candles, price, liquidity.DefaultBucketCount)
	breakout := detector.DetectBreakoutFakeout(
		input.Series.Candles, heatmap, snap.VolumeRatio, input.Futures.OpenInterest.ChangePct)
	meter := detector.BuildLiquidationRiskMeter(
		input.Futures, snap.Volatility20, input.Catalyst.CombinedScore)

	var prevMACD indicator.MACDResult
	if len(closes) > 30 {
		prevMACD = indicator.MACD(closes[:len(closes)-1])
	}

	regime, trendBias, trendStrength, _, weakTrend := classifyRegime(snap)

	acc := newAccumulator()
	if regime == RegimeRange {
		acc.note("Market regime: ranging - mean reversion signals weighted higher")
	} else {
		acc.note(fmt.Sprintf("Market regime: %s - trend-following signals weighted higher", regime))
	}

	// ADX trend confirmation
	if snap.ADX14 != nil {
		if *snap.ADX14 >= 28 {
			if trendBias > 0 {
				acc.addBuy(1.0, CategoryTrend, fmt.Sprintf("ADX(%.1f) confirms strong uptrend", *snap.ADX14))
			} else if trendBias < 0 {
				acc.addSell(1.0, CategoryTrend, fmt.Sprintf("ADX(%.1f) confirms strong downtrend", *snap.ADX14))
			}
		} else if *snap.ADX14 <= 17 {
			acc.soften(0.95, fmt.Sprintf("ADX(%.1f) shows weak trend - signals discounted", *snap.ADX14))
		}
	}

	// RSI with regime-dependent thresholds
	if snap.RSI != nil {
		rsi := *snap.RSI
		switch regime {
		case RegimeUptrend:
			if rsi < 38 {
				acc.addBuy(1.6, CategoryTechnical, fmt.Sprintf("RSI(%.1f) pullback in uptrend - dip-buy setup", rsi))
			} else if rsi > 78 {
				acc.addSell(1.2, CategoryTechnical, fmt.Sprintf("RSI(%.1f) extended in uptrend - exhaustion risk", rsi))
			} else {
				acc.note(fmt.Sprintf("RSI(%.1f) healthy for uptrend continuation", rsi))
			}
		case RegimeDowntrend:
			if rsi > 62 {
				acc.addSell(1.6, CategoryTechnical, fmt.Sprintf("RSI(%.1f) bounce in downtrend - sell-the-rally setup", rsi))
			} else if rsi < 22 {
				acc.addBuy(1.1, CategoryTechnical, fmt.Sprintf("RSI(%.1f) deeply oversold - relief bounce possible", rsi))
			} else {
				acc.note(fmt.Sprintf("RSI(%.1f) neutral within downtrend", rsi))
			}
		default:
			if rsi < 30 {
				acc.addBuy(1.8, CategoryTechnical, fmt.Sprintf("RSI(%.1f) oversold in range - bullish mean reversion", rsi))
			} else if rsi > 70 {
				acc.addSell(1.8, CategoryTechnical, fmt.Sprintf("RSI(%.1f) overbought in range - bearish mean reversion", rsi))
			} else {
				acc.note(fmt.Sprintf("RSI(%.1f) neutral in ranging market", rsi))
			}
		}
	}

	// MACD crossover state
	if snap.MACD.Histogram != nil && snap.MACD.Line != nil && snap.MACD.Signal != nil {
		histNow := *snap.MACD.Histogram
		histPrev := prevMACD.Histogram
		if histNow > 0 && *snap.MACD.Line > *snap.MACD.Signal {
			if histPrev != nil && *histPrev <= 0 {
				acc.addBuy(1.9, CategoryTechnical, "MACD fresh bullish crossover - momentum shift upward")
			} else if histPrev != nil && histNow > *histPrev {
				acc.addBuy(1.4, CategoryTechnical, "MACD bullish momentum is strengthening")
			} else {
				acc.addBuy(1.1, CategoryTechnical, "MACD remains bullish")
			}
		} else if histNow < 0 && *snap.MACD.Line < *snap.MACD.Signal {
			if histPrev != nil && *histPrev >= 0 {
				acc.addSell(1.9, CategoryTechnical, "MACD fresh bearish crossover - momentum shift downward")
			} else if histPrev != nil && histNow < *histPrev {
				acc.addSell(1.4, CategoryTechnical, "MACD bearish momentum is strengthening")
			} else {
				acc.addSell(1.1, CategoryTechnical, "MACD remains bearish")
			}
		}
	}

	// Bollinger band touches and squeeze
	if bb := snap.BollingerBands; bb.Lower != nil && bb.Middle != nil && bb.Upper != nil {
		if price <= *bb.Lower {
			points := 1.4
			if regime == RegimeDowntrend {
				points = 0.8
			}
			acc.addBuy(points, CategoryTechnical, fmt.Sprintf("Price touched lower Bollinger Band ($%.2f)", *bb.Lower))
		} else if price >= *bb.Upper {
			points := 1.4
			if regime == RegimeUptrend {
				points = 0.8
			}
			acc.addSell(points, CategoryTechnical, fmt.Sprintf("Price touched upper Bollinger Band ($%.2f)", *bb.Upper))
		}
		if *bb.Middle != 0 && (*bb.Upper-*bb.Lower)/(*bb.Middle) < 0.04 {
			acc.soften(0.95, "Bollinger bandwidth compressed - breakout risk rising")
		}
	}

	// EMA structure
	if snap.EMA20 != nil && snap.EMA50 != nil {
		if price > *snap.EMA20 && *snap.EMA20 > *snap.EMA50 {
			acc.addBuy(1.5, CategoryTrend, "Price above EMA20 > EMA50 - bullish structure intact")
		} else if price < *snap.EMA20 && *snap.EMA20 < *snap.EMA50 {
			acc.addSell(1.5, CategoryTrend, "Price below EMA20 < EMA50 - bearish structure intact")
		} else {
			acc.note("EMA structure mixed - trend conviction reduced")
		}
	}

	// Long-term SMA200 filter
	if snap.SMA200 != nil {
		if price > *snap.SMA200 {
			acc.addBuy(0.7, CategoryTrend, "Price above SMA200 - long-term support")
		} else {
			acc.addSell(0.7, CategoryTrend, "Price below SMA200 - long-term pressure")
		}
	}

	// EMA slope alignment
	if snap.EMA20Slope != nil && snap.EMA50Slope != nil {
		if *snap.EMA20Slope > 0 && *snap.EMA50Slope > 0 {
			acc.addBuy(0.8, CategoryTrend, "EMA20 and EMA50 both sloping upward")
		} else if *snap.EMA20Slope < 0 && *snap.EMA50Slope < 0 {
			acc.addSell(0.8, CategoryTrend, "EMA20 and EMA50 both sloping downward")
		}
	}

	// Momentum alignment
	if snap.Momentum3 != nil && snap.Momentum10 != nil {
		if *snap.Momentum3 > 0 && *snap.Momentum10 > 0 {
			acc.addBuy(1.1, CategoryTechnical, "Short and medium momentum aligned upward")
		} else if *snap.Momentum3 < 0 && *snap.Momentum10 < 0 {
			acc.addSell(1.1, CategoryTechnical, "Short and medium momentum aligned downward")
		} else {
			acc.note("Momentum mixed across windows - transition risk")
		}
	}

	// Stochastic crossovers and extremes
	if st := snap.Stochastic; st.K != nil && st.D != nil && st.PrevK != nil && st.PrevD != nil {
		k, d, pk, pd := *st.K, *st.D, *st.PrevK, *st.PrevD
		if pk <= pd && k > d && k < 25 {
			acc.addBuy(1.1, CategoryTechnical, fmt.Sprintf("Stochastic bullish cross from oversold (%.1f)", k))
		} else if pk >= pd && k < d && k > 75 {
			acc.addSell(1.1, CategoryTechnical, fmt.Sprintf("Stochastic bearish cross from overbought (%.1f)", k))
		} else if k < 15 {
			acc.addBuy(0.5, CategoryTechnical, fmt.Sprintf("Stochastic deeply oversold (%.1f)", k))
		} else if k > 85 {
			acc.addSell(0.5, CategoryTechnical, fmt.Sprintf("Stochastic deeply overbought (%.1f)", k))
		}
	}

	// Volume confirmation
	if snap.VolumeRatio != nil {
		ratio := *snap.VolumeRatio
		if ratio > 1.6 {
			acc.note(fmt.Sprintf("Volume spike (%.2fx avg) - stronger move conviction", ratio))
			if acc.buyScore > acc.sellScore {
				acc.bump(true, 0.6, CategoryTechnical)
			} else if acc.sellScore > acc.buyScore {
				acc.bump(false, 0.6, CategoryTechnical)
			}
		} else if ratio < 0.75 {
			acc.soften(0.93, fmt.Sprintf("Volume below average (%.2fx) - weaker breakout quality", ratio))
		}
		if ratio >= 1.2 && snap.ADX14 != nil && *snap.ADX14 >= 25 {
			if trendBias > 0 {
				acc.addBuy(0.4, CategoryTrend, "Volume and ADX both confirm the uptrend")
			} else if trendBias < 0 {
				acc.addSell(0.4, CategoryTrend, "Volume and ADX both confirm the downtrend")
			}
		}
	}

	// Liquidity zone proximity
	if heatmap != nil && price > 0 {
		atrPct := 0.006
		if snap.ATR14 != nil {
			atrPct = *snap.ATR14 / price
		}
		proximityLimit := math.Max(0.008, atrPct*1.4)
		if len(heatmap.SupportZones) > 0 {
			support := heatmap.SupportZones[0]
			if dist := (price - support.Center) / price; dist >= 0 && dist <= proximityLimit {
				acc.addBuy(0.9, CategoryLiquidity, fmt.Sprintf("Near high-liquidity support zone ($%.2f)", support.Center))
			}
		}
		if len(heatmap.ResistanceZones) > 0 {
			resistance := heatmap.ResistanceZones[0]
			if dist := (resistance.Center - price) / price; dist >= 0 && dist <= proximityLimit {
				acc.addSell(0.9, CategoryLiquidity, fmt.Sprintf("Near high-liquidity resistance zone ($%.2f)", resistance.Center))
			}
		}
	}

	// Futures positioning
	funding := input.Futures.FundingRate.Current
	lsRatio := input.Futures.LongShortRatio.Ratio
	oiChange := input.Futures.OpenInterest.ChangePct

	if funding != nil && lsRatio != nil {
		if *funding > 0.0008 && *lsRatio > 1.1 {
			acc.addSell(1.2, CategoryDerivatives, fmt.Sprintf("Funding positive %.3f%% with crowded longs", *funding*100))
		} else if *funding < -0.0008 && *lsRatio < 0.9 {
			acc.addBuy(1.2, CategoryDerivatives, fmt.Sprintf("Funding negative %.3f%% with crowded shorts", *funding*100))
		} else {
			acc.note(fmt.Sprintf("Funding neutral at %.3f%%", *funding*100))
		}
	}

	if lsRatio != nil {
		if *lsRatio > 1.35 {
			acc.addSell(0.7, CategoryDerivatives, fmt.Sprintf("Long/Short ratio %.2f indicates long crowding", *lsRatio))
		} else if *lsRatio < 0.75 {
			acc.addBuy(0.7, CategoryDerivatives, fmt.Sprintf("Long/Short ratio %.2f indicates short crowding", *lsRatio))
		}
	}

	if oiChange != nil {
		if *oiChange > 5 && snap.Momentum10 != nil && *snap.Momentum10 > 0 {
			acc.addBuy(0.8, CategoryDerivatives, fmt.Sprintf("Open interest rising %.1f%% with bullish momentum", *oiChange))
		} else if *oiChange > 5 && snap.Momentum10 != nil && *snap.Momentum10 < 0 {
			acc.addSell(0.8, CategoryDerivatives, fmt.Sprintf("Open interest rising %.1f%% with bearish momentum", *oiChange))
		} else if *oiChange < -8 {
			acc.soften(0.96, fmt.Sprintf("Open interest dropped %.1f%% - deleveraging phase", *oiChange))
		}
	}

	// Catalyst watch
	news := input.Catalyst.NewsScore
	fundamental := input.Catalyst.FundamentalScore
	combined := input.Catalyst.CombinedScore

	if news >= 22 {
		acc.addBuy(1.0, CategoryNews, fmt.Sprintf("News flow bullish (%.1f)", news))
	} else if news <= -22 {
		acc.addSell(1.0, CategoryNews, fmt.Sprintf("News flow bearish (%.1f)", news))
	}

	if fundamental >= 16 {
		acc.addBuy(1.0, CategoryFundamental, fmt.Sprintf("Fundamentals supportive (%.1f)", fundamental))
	} else if fundamental <= -16 {
		acc.addSell(1.0, CategoryFundamental, fmt.Sprintf("Fundamentals weak (%.1f)", fundamental))
	}

	if combined >= 25 {
		acc.addBuy(1.2, CategoryCatalyst, fmt.Sprintf("Catalyst watch bullish (%.1f)", combined))
	} else if combined <= -25 {
		acc.addSell(1.2, CategoryCatalyst, fmt.Sprintf("Catalyst watch bearish (%.1f)", combined))
	} else {
		acc.note(fmt.Sprintf("Catalyst watch neutral (%.1f)", combined))
	}

	if news >= 22 && fundamental >= 16 {
		acc.addBuy(0.6, CategoryCatalyst, "News and fundamentals aligned bullish")
	} else if news <= -22 && fundamental <= -16 {
		acc.addSell(0.6, CategoryCatalyst, "News and fundamentals aligned bearish")
	}

	if rank := input.Catalyst.SymbolTrendingRank; rank != nil && *rank <= 5 {
		if snap.Momentum10 != nil && *snap.Momentum10 >= 0 {
			acc.addBuy(0.5, CategoryCatalyst, fmt.Sprintf("Asset ranks #%d on trending topics", *rank))
		} else {
			acc.addBuy(0.2, CategoryCatalyst, fmt.Sprintf("Asset trending #%d but momentum still mixed", *rank))
		}
	}

	// Breakout detector contribution
	switch breakout.Pattern {
	case detector.PatternBreakoutUp:
		acc.addBuy(1.1, CategoryLiquidity, "Confirmed breakout above resistance")
	case detector.PatternBreakoutDown:
		acc.addSell(1.1, CategoryLiquidity, "Confirmed breakdown below support")
	case detector.PatternFakeoutUp:
		acc.addSell(0.9, CategoryLiquidity, "Failed break above resistance - trap risk for longs")
	case detector.PatternFakeoutDown:
		acc.addBuy(0.9, CategoryLiquidity, "Failed break below support - trap risk for shorts")
	}

	// Liquidation meter contribution
	if meter.Score >= 45 && meter.Bias != detector.RiskBalanced {
		points := 0.7
		if meter.Score >= 80 {
			points = 1.2
		} else if meter.Score >= 65 {
			points = 1.0
		}
		if meter.Bias == detector.RiskLongsAtRisk {
			acc.addSell(points, CategoryDerivatives, fmt.Sprintf("Liquidation risk %.0f: longs exposed to a squeeze", meter.Score))
		} else {
			acc.addBuy(points, CategoryDerivatives, fmt.Sprintf("Liquidation risk %.0f: shorts exposed to a squeeze", meter.Score))
		}
	}

	// Contradiction penalty, applied once after all contributions
	contradictionPenalty := 0.0
	if acc.buyScore > 0 && acc.sellScore > 0 {
		contradictionPenalty = math.Min(acc.buyScore, acc.sellScore) * 0.35
		acc.buyScore -= contradictionPenalty
		acc.sellScore -= contradictionPenalty
		acc.note("Bullish and bearish evidence both present - applied contradiction penalty")
	}

	threshold, ok := riskThresholds[input.RiskTolerance]
	if !ok {
		threshold = riskThresholds["moderate"]
	}
	if regime == RegimeRange {
		threshold += 0.25
	}
	if weakTrend {
		threshold += 0.15
	}
	if snap.Volatility20 != nil {
		if *snap.Volatility20 > 0.025 {
			threshold += 0.2
		}
		if *snap.Volatility20 > 0.04 {
			threshold += 0.15
		}
	}
	if snap.ADX14 != nil && *snap.ADX14 >= 30 {
		threshold -= 0.15
	}

	edge := math.Abs(acc.buyScore - acc.sellScore)
	direction := SignalHold
	if acc.buyScore >= threshold && acc.buyScore > acc.sellScore && edge >= 0.9 {
		direction = SignalBuy
	} else if acc.sellScore >= threshold && acc.sellScore > acc.buyScore && edge >= 0.9 {
		direction = SignalSell
	} else {
		acc.note("Insufficient directional edge after confluence check - wait for confirmation")
	}

	quality := qualityScore(direction, acc, edge, contradictionPenalty, breakout, meter)
	grade := qualityGrade(quality)

	confidence := 0.0
	if direction == SignalHold {
		confidence = clamp(35+edge*7+quality*0.2, 40, 68)
	} else {
		confidence = clamp(quality*0.72+edge*8.5, 55, 97)
	}

	lv := computeLevels(price, direction, input.SignalType, regime, trendStrength, snap.Volatility20, snap.ATR14)

	breakdown := make(map[string]CategoryScore, len(acc.breakdown))
	for category, cs := range acc.breakdown {
		breakdown[category] = CategoryScore{Buy: roundTo(cs.Buy, 2), Sell: roundTo(cs.Sell, 2)}
	}

	return Result{
		Signal:           direction,
		Confidence:       roundTo(confidence, 1),
		QualityScore:     roundTo(quality, 1),
		QualityGrade:     grade,
		MarketType:       "futures_perpetual",
		CurrentPrice:     roundTo(price, 2),
		EntryRange:       lv.entry,
		TakeProfit1:      lv.tp1,
		TakeProfit1Pct:   lv.tp1Pct,
		TakeProfit2:      lv.tp2,
		TakeProfit2Pct:   lv.tp2Pct,
		StopLoss:         lv.stop,
		StopLossPct:      lv.stopPct,
		RiskReward:       lv.riskReward,
		Regime:           regime,
		TrendStrength:    roundTo(trendStrength, 1),
		Threshold:        roundTo(threshold, 2),
		BuyScore:         roundTo(acc.buyScore, 2),
		SellScore:        roundTo(acc.sellScore, 2),
		Breakdown:        breakdown,
		Reasons:          acc.reasons,
		Indicators:       buildIndicatorView(snap),
		FuturesContext:   roundFuturesContext(input.Futures),
		CatalystWatch:    input.Catalyst,
		LiquidityHeatmap: heatmap,
		Breakout:         breakout,
		LiquidationRisk:  meter,
		DataSource:       input.Series.DataSource,
	}
}

// qualityScore grades how trustworthy the final call is, rewarding agreement
// between the confluence result and the structural detectors.
func qualityScore(direction string, acc *accumulator, edge, contradictionPenalty float64, breakout detector.Breakout, meter detector.LiquidationMeter) float64 {
	dominantScore := math.Max(acc.buyScore, acc.sellScore)
	dominantEvidence := acc.buyEvidence
	if acc.sellScore > acc.buyScore {
		dominantEvidence = acc.sellEvidence
	}

	alignmentBonus := 0.0
	conflictPenalty := 0.0
	switch direction {
	case SignalBuy:
		if breakout.Bias == detector.BiasBullish {
			alignmentBonus += 6
		} else if breakout.Bias == detector.BiasBearish {
			conflictPenalty += 8
		}
		if meter.Bias == detector.RiskShortsAtRisk {
			alignmentBonus += 4
		} else if meter.Bias == detector.RiskLongsAtRisk && meter.Score >= 45 {
			conflictPenalty += 6
		}
	case SignalSell:
		if breakout.Bias == detector.BiasBearish {
			alignmentBonus += 6
		} else if breakout.Bias == detector.BiasBullish {
			conflictPenalty += 8
		}
		if meter.Bias == detector.RiskLongsAtRisk {
			alignmentBonus += 4
		} else if meter.Bias == detector.RiskShortsAtRisk && meter.Score >= 45 {
			conflictPenalty += 6
		}
	}

	quality := clamp(
		28+dominantScore*8+edge*10+float64(dominantEvidence)*1.9+alignmentBonus-
			contradictionPenalty*10-float64(acc.softPenalties)*18-conflictPenalty,
		10, 99)
	if direction == SignalHold {
		quality = clamp(quality-12, 15, 62)
	}
	return quality
}

func qualityGrade(quality float64) string {
	switch {
	case quality >= 90:
		return "A+"
	case quality >= 80:
		return "A"
	case quality >= 70:
		return "B"
	case quality >= 60:
		return "C"
	default:
		return "D"
	}
}
