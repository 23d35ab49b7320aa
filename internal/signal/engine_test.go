package signal

import (
	"reflect"
	"testing"

	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/market"
)

func fptr(v float64) *float64 { return &v }

// trendSeries builds a smooth synthetic trend: each close moves by drift
// percent from the previous close.
func trendSeries(bars int, start, drift float64) market.Series {
	candles := make([]market.Candle, 0, bars)
	price := start
	for i := 0; i < bars; i++ {
		open := price
		close := open * (1 + drift)
		high := open * (1 + 0.001)
		low := close * (1 - 0.001)
		if drift > 0 {
			high = close * (1 + 0.001)
			low = open * (1 - 0.001)
		}
		candles = append(candles, market.Candle{
			Timestamp: int64(i) * 3600000,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000,
		})
		price = close
	}
	return market.Series{Candles: candles, DataSource: "synthetic"}
}

func flatSeries(bars int, price float64) market.Series {
	candles := make([]market.Candle, 0, bars)
	for i := 0; i < bars; i++ {
		candles = append(candles, market.Candle{
			Timestamp: int64(i) * 3600000,
			Open:      price, High: price, Low: price, Close: price,
			Volume: 500,
		})
	}
	return market.Series{Candles: candles, DataSource: "synthetic"}
}

func neutralInput(series market.Series) Input {
	return Input{
		Series:        series,
		SignalType:    "swing",
		RiskTolerance: "moderate",
		Futures:       market.EmptyFuturesContext(),
		Catalyst:      catalyst.Neutral(),
	}
}

func TestGenerateDeterministic(t *testing.T) {
	series := market.GenerateDemoSeries("BTCUSDT", "4h", 120)
	a := Generate(neutralInput(series))
	b := Generate(neutralInput(series))
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical results")
	}
}

func TestGenerateStrongUptrendNeverSells(t *testing.T) {
	// 120 monotonically rising candles with neutral context
	result := Generate(neutralInput(trendSeries(120, 100, 0.005)))

	if result.Regime != RegimeUptrend {
		t.Errorf("regime = %s, want uptrend", result.Regime)
	}
	if result.Signal == SignalSell {
		t.Error("a strong uptrend with neutral context must never produce SELL")
	}
	if result.BuyScore <= result.SellScore {
		t.Errorf("buy score %v must exceed sell score %v in a strong uptrend", result.BuyScore, result.SellScore)
	}
}

func TestGenerateFlatSeriesHolds(t *testing.T) {
	result := Generate(neutralInput(flatSeries(120, 100)))

	if result.Signal != SignalHold {
		t.Errorf("signal = %s, want HOLD for flat price action", result.Signal)
	}
	if result.Confidence < 40 || result.Confidence > 68 {
		t.Errorf("HOLD confidence %v outside [40,68]", result.Confidence)
	}
	// Zero price range: bands collapse to the price, heatmap degenerates
	bb := result.Indicators.BollingerBands
	if bb.Upper == nil || bb.Lower == nil || *bb.Upper != *bb.Lower {
		t.Errorf("expected zero-width Bollinger bands, got %v / %v", bb.Upper, bb.Lower)
	}
	if result.LiquidityHeatmap != nil {
		t.Error("expected nil heatmap for zero price range")
	}
	if result.RiskReward != 0 {
		t.Errorf("HOLD must report zero risk/reward, got %v", result.RiskReward)
	}
}

func TestGenerateDerivativesPushSell(t *testing.T) {
	series := trendSeries(120, 100, -0.005)

	bare := Generate(neutralInput(series))

	crowded := neutralInput(series)
	crowded.Futures = market.FuturesContext{
		FundingRate:    market.FundingRate{Current: fptr(0.001)},
		LongShortRatio: market.LongShortRatio{Ratio: fptr(1.5)},
	}
	withDerivs := Generate(crowded)

	if bare.Signal != SignalSell || withDerivs.Signal != SignalSell {
		t.Fatalf("bearish technicals must sell: bare=%s withDerivs=%s", bare.Signal, withDerivs.Signal)
	}
	if withDerivs.Breakdown[CategoryDerivatives].Sell <= 0 {
		t.Error("crowded-long derivatives context must contribute sell points")
	}
	if withDerivs.Confidence < bare.Confidence {
		t.Errorf("derivatives confirmation must not lower confidence: %v < %v",
			withDerivs.Confidence, bare.Confidence)
	}
	if withDerivs.Confidence < 55 || withDerivs.Confidence > 97 {
		t.Errorf("directional confidence %v outside [55,97]", withDerivs.Confidence)
	}
}

func TestGenerateScoresNeverNegative(t *testing.T) {
	// Mixed context designed to trigger the contradiction penalty
	input := neutralInput(market.GenerateDemoSeries("ETHUSDT", "1h", 120))
	input.Futures = market.FuturesContext{
		FundingRate:    market.FundingRate{Current: fptr(0.002)},
		OpenInterest:   market.OpenInterest{ChangePct: fptr(10)},
		LongShortRatio: market.LongShortRatio{Ratio: fptr(1.6)},
	}
	watch := catalyst.Neutral()
	watch.NewsScore = 40
	watch.FundamentalScore = 30
	watch.CombinedScore = 40
	input.Catalyst = watch

	result := Generate(input)
	if result.BuyScore < 0 || result.SellScore < 0 {
		t.Errorf("scores must stay non-negative after penalties: buy=%v sell=%v",
			result.BuyScore, result.SellScore)
	}
}

func TestGenerateDegradedContext(t *testing.T) {
	// All-nil futures and neutral catalyst must not panic and must produce
	// a complete result shape
	result := Generate(neutralInput(trendSeries(40, 100, 0.002)))

	if result.Signal == "" || result.QualityGrade == "" || result.Regime == "" {
		t.Error("result must be fully populated even with degraded context")
	}
	if len(result.Reasons) == 0 {
		t.Error("reasons log must never be empty")
	}
	if len(result.Breakdown) != 7 {
		t.Errorf("breakdown must cover all 7 categories, got %d", len(result.Breakdown))
	}
}

func TestQualityGradeMapping(t *testing.T) {
	cases := []struct {
		quality float64
		want    string
	}{
		{95, "A+"}, {85, "A"}, {75, "B"}, {65, "C"}, {50, "D"},
		{90, "A+"}, {60, "C"}, {59.9, "D"},
	}
	for _, c := range cases {
		if got := qualityGrade(c.quality); got != c.want {
			t.Errorf("qualityGrade(%v) = %s, want %s", c.quality, got, c.want)
		}
	}
}

func TestComputeLevelsSellDirection(t *testing.T) {
	lv := computeLevels(100, SignalSell, "swing", RegimeDowntrend, 35, nil, nil)

	if lv.tp1 >= 100 || lv.tp2 >= 100 {
		t.Errorf("SELL targets must sit below price: tp1=%v tp2=%v", lv.tp1, lv.tp2)
	}
	if lv.stop <= 100 {
		t.Errorf("SELL stop must sit above price, got %v", lv.stop)
	}
	if lv.riskReward <= 0 {
		t.Errorf("directional trade must report positive risk/reward, got %v", lv.riskReward)
	}
}

func TestComputeLevelsUnknownStyleDefaultsToSwing(t *testing.T) {
	a := computeLevels(100, SignalBuy, "swing", RegimeUptrend, 25, nil, nil)
	b := computeLevels(100, SignalBuy, "position", RegimeUptrend, 25, nil, nil)
	if a != b {
		t.Error("unknown signal type must fall back to swing targets")
	}
}
