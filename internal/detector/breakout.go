// Package detector holds the pattern detectors layered on top of the
// indicator snapshot: breakout/fakeout classification against liquidity
// zones and the liquidation risk meter.
package detector

import (
	"fmt"
	"math"

	"crypto-signal-engine/internal/liquidity"
	"crypto-signal-engine/internal/market"
)

// Breakout patterns.
const (
	PatternBreakoutUp     = "BREAKOUT_UP"
	PatternBreakoutDown   = "BREAKOUT_DOWN"
	PatternFakeoutUp      = "FAKEOUT_UP"
	PatternFakeoutDown    = "FAKEOUT_DOWN"
	PatternNoClearPattern = "NO_CLEAR_PATTERN"
)

// Directional bias of a detected pattern.
const (
	BiasBullish = "bullish"
	BiasBearish = "bearish"
	BiasNeutral = "neutral"
)

// BreakoutMetrics exposes the raw inputs behind a classification so the UI
// can show why a break was trusted or flagged.
type BreakoutMetrics struct {
	BodyRatio    float64 `json:"bodyRatio"`
	OpposingWick float64 `json:"opposingWick"`
	VolumeBoost  float64 `json:"volumeBoost"`
	OIBoost      float64 `json:"oiBoost"`
	Quality      int     `json:"quality"`
	FakeoutFlags int     `json:"fakeoutFlags"`
}

// Breakout is the result of classifying the latest candle against the
// nearest liquidity zones.
type Breakout struct {
	Pattern    string          `json:"pattern"`
	Bias       string          `json:"bias"`
	Confidence float64         `json:"confidence"`
	BreakLevel *float64        `json:"breakLevel"`
	Summary    string          `json:"summary"`
	Metrics    BreakoutMetrics `json:"metrics"`
}

// DetectBreakoutFakeout inspects the last two candles against the nearest
// support and resistance zones. A level break scored on candle structure,
// volume and open interest is classified as a genuine breakout when quality
// dominates, a fakeout when the warning flags do.
func DetectBreakoutFakeout(candles []market.Candle, heatmap *liquidity.Heatmap, volumeRatio, oiChangePct *float64) Breakout {
	volBoost := 0.0
	if volumeRatio != nil {
		volBoost = clamp((*volumeRatio-1)/1.2, -1, 1)
	}
	oiBoost := 0.0
	if oiChangePct != nil {
		oiBoost = clamp(*oiChangePct/12, -1, 1)
	}

	none := Breakout{
		Pattern:    PatternNoClearPattern,
		Bias:       BiasNeutral,
		Confidence: clamp(32+boolBonus(volBoost > 0, 8), 30, 55),
		Summary:    "No decisive break of nearby liquidity levels",
		Metrics:    BreakoutMetrics{VolumeBoost: round2(volBoost), OIBoost: round2(oiBoost)},
	}
	if len(candles) < 2 || heatmap == nil {
		return none
	}

	prev := candles[len(candles)-2]
	cur := candles[len(candles)-1]

	up := false
	down := false
	var level float64
	if len(heatmap.ResistanceZones) > 0 {
		level = heatmap.ResistanceZones[0].Center
		up = prev.Close <= level && cur.Close > level
	}
	if !up && len(heatmap.SupportZones) > 0 {
		level = heatmap.SupportZones[0].Center
		down = prev.Close >= level && cur.Close < level
	}
	if !up && !down {
		return none
	}

	candleRange := cur.High - cur.Low
	bodyRatio := 0.0
	opposingWick := 0.0
	if candleRange > 0 {
		bodyRatio = math.Abs(cur.Close-cur.Open) / candleRange
		if up {
			opposingWick = (cur.High - math.Max(cur.Open, cur.Close)) / candleRange
		} else {
			opposingWick = (math.Min(cur.Open, cur.Close) - cur.Low) / candleRange
		}
	}

	quality := 0
	if bodyRatio > 0.55 {
		quality++
	}
	if opposingWick < 0.22 {
		quality++
	}
	if volBoost > 0.15 {
		quality++
	}
	if oiBoost > 0.1 {
		quality++
	}

	flags := 0
	if opposingWick > 0.38 {
		flags++
	}
	if volBoost < -0.1 {
		flags++
	}
	if oiBoost < -0.15 {
		flags++
	}

	metrics := BreakoutMetrics{
		BodyRatio:    round2(bodyRatio),
		OpposingWick: round2(opposingWick),
		VolumeBoost:  round2(volBoost),
		OIBoost:      round2(oiBoost),
		Quality:      quality,
		FakeoutFlags: flags,
	}

	direction := "resistance"
	if down {
		direction = "support"
	}

	if quality >= 3 && flags <= 1 {
		pattern := PatternBreakoutUp
		bias := BiasBullish
		if down {
			pattern = PatternBreakoutDown
			bias = BiasBearish
		}
		return Breakout{
			Pattern:    pattern,
			Bias:       bias,
			Confidence: clamp(56+float64(quality)*10+(volBoost+oiBoost)*8, 55, 95),
			BreakLevel: &level,
			Summary:    fmt.Sprintf("Clean break of %s at %.2f with confirming flow", direction, level),
			Metrics:    metrics,
		}
	}

	pattern := PatternFakeoutUp
	bias := BiasBearish
	if down {
		pattern = PatternFakeoutDown
		bias = BiasBullish
	}
	return Breakout{
		Pattern:    pattern,
		Bias:       bias,
		Confidence: clamp(50+float64(flags)*12-float64(quality)*3, 45, 90),
		BreakLevel: &level,
		Summary:    fmt.Sprintf("Suspect break of %s at %.2f, flow not confirming", direction, level),
		Metrics:    metrics,
	}
}

func boolBonus(cond bool, bonus float64) float64 {
	if cond {
		return bonus
	}
	return 0
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
