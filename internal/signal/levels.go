package signal

import "math"

// Trade style base targets, expressed as fractions of price: tp1, tp2, stop.
var baseTargets = map[string][3]float64{
	"scalp":    {0.01, 0.02, 0.005},
	"intraday": {0.018, 0.04, 0.01},
	"swing":    {0.03, 0.08, 0.015},
}

type levels struct {
	entry       EntryRange
	tp1         float64
	tp1Pct      float64
	tp2         float64
	tp2Pct      float64
	stop        float64
	stopPct     float64
	riskReward  float64
}

// computeLevels derives entry band, take-profit and stop levels from the
// trade style, then stretches or narrows them by regime, trend strength and
// realized volatility. The stop is ATR-adaptive within a bounded band around
// the style's base stop.
func computeLevels(price float64, direction, signalType, regime string, trendStrength float64, volatility20, atr14 *float64) levels {
	targets, ok := baseTargets[signalType]
	if !ok {
		targets = baseTargets["swing"]
	}
	tp1Pct, tp2Pct, slPct := targets[0], targets[1], targets[2]

	if trendStrength >= 30 {
		tp1Pct *= 1.1
		tp2Pct *= 1.18
		slPct *= 1.05
	} else if regime == RegimeRange {
		tp1Pct *= 0.9
		tp2Pct *= 0.82
		slPct *= 0.92
	}
	if volatility20 != nil && *volatility20 > 0.04 {
		slPct *= 1.12
	}

	dir := 1.0
	if direction == SignalSell {
		dir = -1
	}

	entryPadPct := 0.002
	dynamicSlPct := slPct
	if atr14 != nil && price > 0 {
		atrPct := *atr14 / price
		entryPadPct = atrPct * 0.3
		dynamicSlPct = math.Max(slPct, atrPct*1.1)
	}
	entryPadPct = clamp(entryPadPct, 0.0015, 0.008)
	dynamicSlPct = clamp(dynamicSlPct, slPct*0.85, slPct*1.9)

	entryLow := roundTo(price*(1-entryPadPct), 2)
	entryHigh := roundTo(price*(1+entryPadPct), 2)
	tp1 := roundTo(price*(1+dir*tp1Pct), 2)
	tp2 := roundTo(price*(1+dir*tp2Pct), 2)
	stop := roundTo(price*(1-dir*dynamicSlPct), 2)

	riskReward := 0.0
	if direction != SignalHold && price != stop {
		riskReward = roundTo(math.Abs(tp2-price)/math.Abs(price-stop), 2)
	}

	return levels{
		entry:      EntryRange{Low: entryLow, High: entryHigh},
		tp1:        tp1,
		tp1Pct:     roundTo(dir*tp1Pct*100, 2),
		tp2:        tp2,
		tp2Pct:     roundTo(dir*tp2Pct*100, 2),
		stop:       stop,
		stopPct:    roundTo(-dir*dynamicSlPct*100, 2),
		riskReward: riskReward,
	}
}
