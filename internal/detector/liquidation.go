package detector

import (
	"fmt"
	"math"

	"crypto-signal-engine/internal/market"
)

// Liquidation risk bias values.
const (
	RiskLongsAtRisk  = "LONGS_AT_RISK"
	RiskShortsAtRisk = "SHORTS_AT_RISK"
	RiskBalanced     = "BALANCED"
)

// Liquidation risk levels.
const (
	LevelExtreme = "EXTREME"
	LevelHigh    = "HIGH"
	LevelMedium  = "MEDIUM"
	LevelLow     = "LOW"
)

// biasMargin is the point gap one side must hold over the other before the
// meter declares a directional bias.
const biasMargin = 6

// LiquidationMeter summarizes how exposed leveraged positioning is to a
// cascade. Score is the dominant side's risk on a 0-100 scale.
type LiquidationMeter struct {
	Score     float64  `json:"score"`
	Bias      string   `json:"bias"`
	Level     string   `json:"level"`
	LongRisk  float64  `json:"longRisk"`
	ShortRisk float64  `json:"shortRisk"`
	Factors   []string `json:"factors"`
}

// BuildLiquidationRiskMeter combines positioning crowding, funding bias,
// open interest build-up and realized volatility into per-side risk scores.
// A strong catalyst score on either side amplifies both. Nil inputs
// contribute zero stress.
func BuildLiquidationRiskMeter(futures market.FuturesContext, volatility20 *float64, catalystScore float64) LiquidationMeter {
	crowdLong := 0.0
	crowdShort := 0.0
	if r := futures.LongShortRatio.Ratio; r != nil {
		crowdLong = clamp((*r-1)/0.6, 0, 1)
		crowdShort = clamp((1-*r)/0.45, 0, 1)
	}

	fundingLong := 0.0
	fundingShort := 0.0
	if f := futures.FundingRate.Current; f != nil {
		fundingLong = clamp(*f/0.003, 0, 1)
		fundingShort = clamp(-*f/0.003, 0, 1)
	}

	leverage := 0.0
	if oi := futures.OpenInterest.ChangePct; oi != nil {
		leverage = clamp(*oi/20, 0, 1)
	}

	volStress := 0.0
	if volatility20 != nil {
		volStress = clamp(*volatility20/0.05, 0, 1)
	}

	catalystStress := clamp(math.Abs(catalystScore)/100, 0, 1) * 0.35

	longRisk := (crowdLong*30 + fundingLong*30 + leverage*20 + volStress*20) * (1 + catalystStress)
	shortRisk := (crowdShort*30 + fundingShort*30 + leverage*20 + volStress*20) * (1 + catalystStress)
	longRisk = clamp(longRisk, 0, 100)
	shortRisk = clamp(shortRisk, 0, 100)

	score := math.Max(longRisk, shortRisk)
	bias := RiskBalanced
	if longRisk-shortRisk > biasMargin {
		bias = RiskLongsAtRisk
	} else if shortRisk-longRisk > biasMargin {
		bias = RiskShortsAtRisk
	}

	level := LevelLow
	switch {
	case score >= 80:
		level = LevelExtreme
	case score >= 65:
		level = LevelHigh
	case score >= 45:
		level = LevelMedium
	}

	var factors []string
	if oi := futures.OpenInterest.ChangePct; oi != nil && *oi > 8 {
		factors = append(factors, fmt.Sprintf("Open interest growing fast (%+.1f%%)", *oi))
	}
	if volatility20 != nil && *volatility20 > 0.028 {
		factors = append(factors, fmt.Sprintf("Elevated realized volatility (%.1f%%)", *volatility20*100))
	}
	if f := futures.FundingRate.Current; f != nil {
		if *f > 0.001 {
			factors = append(factors, "Longs paying rich funding")
		} else if *f < -0.001 {
			factors = append(factors, "Shorts paying rich funding")
		}
	}
	if r := futures.LongShortRatio.Ratio; r != nil {
		if *r > 1.35 {
			factors = append(factors, fmt.Sprintf("Accounts crowded long (%.2f)", *r))
		} else if *r < 0.72 {
			factors = append(factors, fmt.Sprintf("Accounts crowded short (%.2f)", *r))
		}
	}
	if len(factors) == 0 {
		factors = []string{"Positioning currently balanced"}
	}

	return LiquidationMeter{
		Score:     round1(score),
		Bias:      bias,
		Level:     level,
		LongRisk:  round1(longRisk),
		ShortRisk: round1(shortRisk),
		Factors:   factors,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
