package detector

import (
	"testing"

	"crypto-signal-engine/internal/liquidity"
	"crypto-signal-engine/internal/market"
)

func fptr(v float64) *float64 { return &v }

func heatmapWith(support, resistance float64) *liquidity.Heatmap {
	return &liquidity.Heatmap{
		SupportZones:    []liquidity.Node{{Center: support}},
		ResistanceZones: []liquidity.Node{{Center: resistance}},
	}
}

func TestDetectBreakoutUp(t *testing.T) {
	// Strong full-bodied candle closing through resistance with volume and
	// open interest confirming
	candles := []market.Candle{
		{Open: 99, High: 100, Low: 98, Close: 99.5},
		{Open: 99.5, High: 103.2, Low: 99.4, Close: 103},
	}
	result := DetectBreakoutFakeout(candles, heatmapWith(95, 100), fptr(1.8), fptr(6))

	if result.Pattern != PatternBreakoutUp {
		t.Fatalf("pattern = %s, want %s", result.Pattern, PatternBreakoutUp)
	}
	if result.Bias != BiasBullish {
		t.Errorf("bias = %s, want bullish", result.Bias)
	}
	if result.BreakLevel == nil || *result.BreakLevel != 100 {
		t.Errorf("break level = %v, want 100", result.BreakLevel)
	}
	if result.Confidence < 55 || result.Confidence > 95 {
		t.Errorf("confidence %v outside [55,95]", result.Confidence)
	}
	if result.Metrics.Quality < 3 {
		t.Errorf("quality = %d, want >= 3", result.Metrics.Quality)
	}
}

func TestDetectFakeoutUp(t *testing.T) {
	// Close sneaks over resistance but the candle is mostly upper wick and
	// volume dried up
	candles := []market.Candle{
		{Open: 99, High: 100, Low: 98, Close: 99.8},
		{Open: 99.8, High: 104, Low: 99.6, Close: 100.2},
	}
	result := DetectBreakoutFakeout(candles, heatmapWith(95, 100), fptr(0.6), fptr(-4))

	if result.Pattern != PatternFakeoutUp {
		t.Fatalf("pattern = %s, want %s", result.Pattern, PatternFakeoutUp)
	}
	// A failed upside break is a bearish signal
	if result.Bias != BiasBearish {
		t.Errorf("bias = %s, want bearish", result.Bias)
	}
	if result.Confidence < 45 || result.Confidence > 90 {
		t.Errorf("confidence %v outside [45,90]", result.Confidence)
	}
}

func TestDetectBreakoutDown(t *testing.T) {
	candles := []market.Candle{
		{Open: 96, High: 96.5, Low: 95, Close: 95.2},
		{Open: 95.2, High: 95.3, Low: 92, Close: 92.2},
	}
	result := DetectBreakoutFakeout(candles, heatmapWith(95, 100), fptr(1.9), fptr(8))

	if result.Pattern != PatternBreakoutDown {
		t.Fatalf("pattern = %s, want %s", result.Pattern, PatternBreakoutDown)
	}
	if result.Bias != BiasBearish {
		t.Errorf("bias = %s, want bearish", result.Bias)
	}
}

func TestDetectNoClearPattern(t *testing.T) {
	// Price drifting between the zones, no level broken
	candles := []market.Candle{
		{Open: 97, High: 98, Low: 96, Close: 97.5},
		{Open: 97.5, High: 98.5, Low: 97, Close: 98},
	}
	result := DetectBreakoutFakeout(candles, heatmapWith(95, 100), fptr(1.0), nil)

	if result.Pattern != PatternNoClearPattern {
		t.Fatalf("pattern = %s, want %s", result.Pattern, PatternNoClearPattern)
	}
	if result.Bias != BiasNeutral {
		t.Errorf("bias = %s, want neutral", result.Bias)
	}
	if result.BreakLevel != nil {
		t.Error("no-pattern result must not carry a break level")
	}
	if result.Confidence < 30 || result.Confidence > 55 {
		t.Errorf("confidence %v outside [30,55]", result.Confidence)
	}
}

func TestDetectDegradedInputs(t *testing.T) {
	// Missing heatmap or too little history must degrade, not panic
	result := DetectBreakoutFakeout(nil, nil, nil, nil)
	if result.Pattern != PatternNoClearPattern {
		t.Errorf("pattern = %s, want %s", result.Pattern, PatternNoClearPattern)
	}
}

func TestLiquidationMeterCrowdedLongs(t *testing.T) {
	// Crowded longs, rich funding, fast OI growth and hot volatility
	futures := market.FuturesContext{
		FundingRate:    market.FundingRate{Current: fptr(0.002)},
		OpenInterest:   market.OpenInterest{ChangePct: fptr(15)},
		LongShortRatio: market.LongShortRatio{Ratio: fptr(1.6)},
	}
	meter := BuildLiquidationRiskMeter(futures, fptr(0.05), 0)

	// crowdLong=1, fundingLong=0.667, leverage=0.75, volStress=1
	// => 30 + 20 + 15 + 20 = 85
	if meter.Score != 85 {
		t.Errorf("score = %v, want 85", meter.Score)
	}
	if meter.Level != LevelExtreme {
		t.Errorf("level = %s, want EXTREME", meter.Level)
	}
	if meter.Bias != RiskLongsAtRisk {
		t.Errorf("bias = %s, want LONGS_AT_RISK", meter.Bias)
	}
	if len(meter.Factors) != 4 {
		t.Errorf("expected 4 triggered factors, got %d: %v", len(meter.Factors), meter.Factors)
	}
}

func TestLiquidationMeterCatalystAmplifies(t *testing.T) {
	futures := market.FuturesContext{
		LongShortRatio: market.LongShortRatio{Ratio: fptr(1.3)},
	}
	calm := BuildLiquidationRiskMeter(futures, fptr(0.02), 0)
	hot := BuildLiquidationRiskMeter(futures, fptr(0.02), 80)

	if hot.Score <= calm.Score {
		t.Errorf("catalyst stress must amplify risk: calm=%v hot=%v", calm.Score, hot.Score)
	}
	if hot.Score > 100 {
		t.Errorf("score exceeded 100: %v", hot.Score)
	}
}

func TestLiquidationMeterBalancedDefaults(t *testing.T) {
	meter := BuildLiquidationRiskMeter(market.EmptyFuturesContext(), nil, 0)

	if meter.Score != 0 {
		t.Errorf("score = %v, want 0 for all-nil inputs", meter.Score)
	}
	if meter.Bias != RiskBalanced {
		t.Errorf("bias = %s, want BALANCED", meter.Bias)
	}
	if meter.Level != LevelLow {
		t.Errorf("level = %s, want LOW", meter.Level)
	}
	if len(meter.Factors) != 1 || meter.Factors[0] != "Positioning currently balanced" {
		t.Errorf("expected balanced default factor, got %v", meter.Factors)
	}
}

func TestLiquidationMeterShortsAtRisk(t *testing.T) {
	futures := market.FuturesContext{
		FundingRate:    market.FundingRate{Current: fptr(-0.002)},
		LongShortRatio: market.LongShortRatio{Ratio: fptr(0.6)},
	}
	meter := BuildLiquidationRiskMeter(futures, nil, 0)

	if meter.Bias != RiskShortsAtRisk {
		t.Errorf("bias = %s, want SHORTS_AT_RISK", meter.Bias)
	}
}
