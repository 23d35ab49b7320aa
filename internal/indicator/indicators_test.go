package indicator

import (
	"math"
	"testing"

	"crypto-signal-engine/internal/market"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func risingPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return prices
}

func flatCandles(price float64, count int) []market.Candle {
	candles := make([]market.Candle, count)
	for i := range candles {
		candles[i] = market.Candle{Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return candles
}

func TestSMA(t *testing.T) {
	if got := SMA([]float64{1, 2, 3, 4, 5}, 3); got == nil || !almostEqual(*got, 4) {
		t.Errorf("SMA = %v, want 4", got)
	}
	if got := SMA([]float64{1, 2}, 3); got != nil {
		t.Errorf("SMA on short series = %v, want nil", got)
	}
	if got := SMA([]float64{1, 2, 3}, 0); got != nil {
		t.Errorf("SMA with zero period = %v, want nil", got)
	}
}

func TestEMASeedEqualsSMA(t *testing.T) {
	// With exactly period prices the EMA is just its SMA seed
	if got := EMA([]float64{2, 4, 6}, 3); got == nil || !almostEqual(*got, 4) {
		t.Errorf("EMA = %v, want 4", got)
	}
	if got := EMA([]float64{1}, 3); got != nil {
		t.Errorf("EMA on short series = %v, want nil", got)
	}
}

func TestRSIBounds(t *testing.T) {
	rising := risingPrices(20)
	if got := RSI(rising, 14); got == nil || *got != 100 {
		t.Errorf("RSI on all-gains series = %v, want 100", got)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	if got := RSI(falling, 14); got == nil || !almostEqual(*got, 0) {
		t.Errorf("RSI on all-losses series = %v, want 0", got)
	}

	if got := RSI(rising[:10], 14); got != nil {
		t.Errorf("RSI on short series = %v, want nil", got)
	}
}

func TestMACDFlatSeries(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}
	macd := MACD(prices)
	if macd.Line == nil || macd.Signal == nil || macd.Histogram == nil {
		t.Fatalf("MACD on 60 bars must populate all fields: %+v", macd)
	}
	if !almostEqual(*macd.Line, 0) || !almostEqual(*macd.Signal, 0) || !almostEqual(*macd.Histogram, 0) {
		t.Errorf("MACD on flat series = %v/%v/%v, want zeros", *macd.Line, *macd.Signal, *macd.Histogram)
	}

	if short := MACD(prices[:20]); short.Line != nil {
		t.Errorf("MACD on short series = %+v, want empty", short)
	}
}

func TestBollingerBands(t *testing.T) {
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 50
	}
	bb := BollingerBands(flat, 20, 2)
	if bb.Middle == nil || bb.Upper == nil || bb.Lower == nil {
		t.Fatal("bands must be populated for 20 bars")
	}
	if !almostEqual(*bb.Upper, 50) || !almostEqual(*bb.Lower, 50) {
		t.Errorf("flat series bands = %v/%v, want collapsed at 50", *bb.Upper, *bb.Lower)
	}

	bb = BollingerBands(risingPrices(20), 20, 2)
	if !(*bb.Lower < *bb.Middle && *bb.Middle < *bb.Upper) {
		t.Errorf("band ordering violated: %v %v %v", *bb.Lower, *bb.Middle, *bb.Upper)
	}
}

func TestMomentum(t *testing.T) {
	if got := Momentum([]float64{100, 105, 110}, 2); got == nil || !almostEqual(*got, 0.1) {
		t.Errorf("Momentum = %v, want 0.1", got)
	}
	if got := Momentum([]float64{100, 110}, 2); got != nil {
		t.Errorf("Momentum out of range = %v, want nil", got)
	}
	if got := Momentum([]float64{0, 110}, 1); got != nil {
		t.Errorf("Momentum with zero base = %v, want nil", got)
	}
}

func TestATR(t *testing.T) {
	candles := make([]market.Candle, 15)
	for i := range candles {
		candles[i] = market.Candle{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	if got := ATR(candles, 14); got == nil || !almostEqual(*got, 2) {
		t.Errorf("ATR = %v, want 2", got)
	}
	if got := ATR(candles[:14], 14); got != nil {
		t.Errorf("ATR on short series = %v, want nil", got)
	}
}

func TestADXMonotonicTrend(t *testing.T) {
	// Every bar moves up, so -DM is always zero and DX pins at 100
	candles := make([]market.Candle, 40)
	for i := range candles {
		base := float64(i)
		candles[i] = market.Candle{Open: base, High: base + 1, Low: base, Close: base + 0.5, Volume: 1}
	}
	if got := ADX(candles, 14); got == nil || !almostEqual(*got, 100) {
		t.Errorf("ADX on monotonic trend = %v, want 100", got)
	}
	if got := ADX(candles[:20], 14); got != nil {
		t.Errorf("ADX on short series = %v, want nil", got)
	}
}

func TestStochastic(t *testing.T) {
	flat := flatCandles(100, 30)
	st := Stochastic(flat, 14, 3)
	if st.K == nil || !almostEqual(*st.K, 50) {
		t.Errorf("flat window K = %v, want 50", st.K)
	}

	rising := make([]market.Candle, 30)
	for i := range rising {
		base := 100 + float64(i)
		rising[i] = market.Candle{Open: base, High: base + 1, Low: base - 1, Close: base + 1, Volume: 1}
	}
	st = Stochastic(rising, 14, 3)
	if st.K == nil || *st.K < 90 {
		t.Errorf("rising close-at-high K = %v, want near 100", st.K)
	}
	if st.PrevK == nil || st.D == nil || st.PrevD == nil {
		t.Error("previous K/D pair must be populated for crossover checks")
	}

	if empty := Stochastic(rising[:10], 14, 3); empty.K != nil {
		t.Errorf("short series stochastic = %+v, want empty", empty)
	}
}

func TestEMASlope(t *testing.T) {
	slope := EMASlope(risingPrices(60), 20, 5)
	if slope == nil || *slope <= 0 {
		t.Errorf("slope on rising series = %v, want positive", slope)
	}
	if got := EMASlope(risingPrices(5), 20, 5); got != nil {
		t.Errorf("slope on short series = %v, want nil", got)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); got == nil || !almostEqual(*got, 2) {
		t.Errorf("StdDev = %v, want 2", got)
	}
	if got := StdDev(nil); got != nil {
		t.Errorf("StdDev on empty input = %v, want nil", got)
	}
}
