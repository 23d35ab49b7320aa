// Package indicator implements the technical indicator library. Every
// function is pure and returns nil instead of failing when the input series
// is too short for the requested period, so callers branch on nil rather
// than handling errors or NaN values.
package indicator

import (
	"math"

	"crypto-signal-engine/internal/market"
)

// SMA returns the arithmetic mean of the last period prices.
func SMA(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	v := sum / float64(period)
	return &v
}

// EMA returns the exponential moving average seeded with the SMA of the
// first period prices and rolled forward over the remainder.
func EMA(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	ema := 0.0
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)
	for _, p := range prices[period:] {
		ema = p*k + ema*(1-k)
	}
	return &ema
}

// RSI computes a windowed average gain/loss RSI over exactly period deltas.
// This is deliberately not Wilder's recursive smoothing: the scoring
// thresholds downstream were tuned against this windowed formula.
func RSI(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	avgGain := 0.0
	avgLoss := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	v := 100 - 100/(1+avgGain/avgLoss)
	return &v
}

// MACDResult holds the MACD line, signal line and histogram. Signal and
// histogram are nil when fewer than 9 line-history points exist.
type MACDResult struct {
	Line      *float64 `json:"line"`
	Signal    *float64 `json:"signal"`
	Histogram *float64 `json:"histogram"`
}

// MACD computes the 12/26 line and its 9-period signal. The signal line is
// built by replaying EMA12 and EMA26 forward from their seed indices and
// smoothing the resulting line history, which differs from smoothing two
// independently computed point EMAs.
func MACD(prices []float64) MACDResult {
	if len(prices) < 26 {
		return MACDResult{}
	}

	ema12 := EMA(prices, 12)
	ema26 := EMA(prices, 26)
	if ema12 == nil || ema26 == nil {
		return MACDResult{}
	}
	line := *ema12 - *ema26

	k12 := 2.0 / 13.0
	k26 := 2.0 / 27.0
	e12 := 0.0
	for _, p := range prices[:12] {
		e12 += p
	}
	e12 /= 12
	e26 := 0.0
	for _, p := range prices[:26] {
		e26 += p
	}
	e26 /= 26
	for i := 12; i < 26; i++ {
		e12 = prices[i]*k12 + e12*(1-k12)
	}

	history := make([]float64, 0, len(prices)-26)
	for i := 26; i < len(prices); i++ {
		e12 = prices[i]*k12 + e12*(1-k12)
		e26 = prices[i]*k26 + e26*(1-k26)
		history = append(history, e12-e26)
	}

	result := MACDResult{Line: &line}
	if len(history) >= 9 {
		k9 := 2.0 / 10.0
		signal := 0.0
		for _, h := range history[:9] {
			signal += h
		}
		signal /= 9
		for _, h := range history[9:] {
			signal = h*k9 + signal*(1-k9)
		}
		histogram := line - signal
		result.Signal = &signal
		result.Histogram = &histogram
	}
	return result
}

// BollingerResult holds the three Bollinger band values.
type BollingerResult struct {
	Upper  *float64 `json:"upper"`
	Middle *float64 `json:"middle"`
	Lower  *float64 `json:"lower"`
}

// BollingerBands computes SMA(period) +- mult population standard deviations.
func BollingerBands(prices []float64, period int, mult float64) BollingerResult {
	middle := SMA(prices, period)
	if middle == nil {
		return BollingerResult{}
	}
	variance := 0.0
	for _, p := range prices[len(prices)-period:] {
		d := p - *middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))
	upper := *middle + mult*sd
	lower := *middle - mult*sd
	return BollingerResult{Upper: &upper, Middle: middle, Lower: &lower}
}

// Momentum returns the relative price change over the last period bars.
// Nil when the base price is zero or out of range.
func Momentum(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) <= period {
		return nil
	}
	base := prices[len(prices)-1-period]
	if base == 0 {
		return nil
	}
	v := (prices[len(prices)-1] - base) / base
	return &v
}

// ATR returns the mean true range over the last period candles.
func ATR(candles []market.Candle, period int) *float64 {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1].Close)
	}
	v := sum / float64(period)
	return &v
}

func trueRange(c market.Candle, prevClose float64) float64 {
	tr := c.High - c.Low
	if d := math.Abs(c.High - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(c.Low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// ADX computes the Average Directional Index with Wilder smoothing of
// +DM/-DM/TR, a DX series, and Wilder smoothing of DX into ADX. Requires at
// least 2*period+1 candles.
func ADX(candles []market.Candle, period int) *float64 {
	if period <= 0 || len(candles) < 2*period+1 {
		return nil
	}

	smTR := 0.0
	smPlus := 0.0
	smMinus := 0.0
	var dxs []float64

	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low
		plusDM := 0.0
		minusDM := 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		tr := trueRange(candles[i], candles[i-1].Close)

		if i <= period {
			smTR += tr
			smPlus += plusDM
			smMinus += minusDM
			if i < period {
				continue
			}
		} else {
			smTR = smTR - smTR/float64(period) + tr
			smPlus = smPlus - smPlus/float64(period) + plusDM
			smMinus = smMinus - smMinus/float64(period) + minusDM
		}

		if smTR == 0 {
			dxs = append(dxs, 0)
			continue
		}
		plusDI := 100 * smPlus / smTR
		minusDI := 100 * smMinus / smTR
		if plusDI+minusDI == 0 {
			dxs = append(dxs, 0)
			continue
		}
		dxs = append(dxs, 100*math.Abs(plusDI-minusDI)/(plusDI+minusDI))
	}

	if len(dxs) < period {
		return nil
	}
	adx := 0.0
	for _, dx := range dxs[:period] {
		adx += dx
	}
	adx /= float64(period)
	for _, dx := range dxs[period:] {
		adx = (adx*float64(period-1) + dx) / float64(period)
	}
	return &adx
}

// StochasticResult holds the current and previous %K/%D pairs so callers
// can detect crossovers.
type StochasticResult struct {
	K     *float64 `json:"k"`
	D     *float64 `json:"d"`
	PrevK *float64 `json:"prevK"`
	PrevD *float64 `json:"prevD"`
}

// Stochastic computes %K from a rolling high/low window and %D as the
// SMA(dPeriod) of the %K series. A flat window yields %K = 50.
func Stochastic(candles []market.Candle, kPeriod, dPeriod int) StochasticResult {
	if kPeriod <= 0 || dPeriod <= 0 || len(candles) < kPeriod+dPeriod {
		return StochasticResult{}
	}

	ks := make([]float64, 0, len(candles)-kPeriod+1)
	for end := kPeriod; end <= len(candles); end++ {
		window := candles[end-kPeriod : end]
		high := window[0].High
		low := window[0].Low
		for _, c := range window[1:] {
			if c.High > high {
				high = c.High
			}
			if c.Low < low {
				low = c.Low
			}
		}
		k := 50.0
		if high != low {
			k = (window[len(window)-1].Close - low) / (high - low) * 100
		}
		ks = append(ks, k)
	}

	if len(ks) < dPeriod+1 {
		return StochasticResult{}
	}
	smaOf := func(end int) float64 {
		sum := 0.0
		for _, k := range ks[end-dPeriod : end] {
			sum += k
		}
		return sum / float64(dPeriod)
	}

	k := ks[len(ks)-1]
	prevK := ks[len(ks)-2]
	d := smaOf(len(ks))
	prevD := smaOf(len(ks) - 1)
	return StochasticResult{K: &k, D: &d, PrevK: &prevK, PrevD: &prevD}
}

// EMASlope returns the relative change of EMA(period) between now and
// lookback bars ago. Nil when history is short or the past EMA is zero.
func EMASlope(prices []float64, period, lookback int) *float64 {
	if lookback <= 0 || len(prices) <= lookback {
		return nil
	}
	now := EMA(prices, period)
	past := EMA(prices[:len(prices)-lookback], period)
	if now == nil || past == nil || *past == 0 {
		return nil
	}
	v := (*now - *past) / *past
	return &v
}

// StdDev returns the population standard deviation, nil on empty input.
func StdDev(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(values)))
	return &sd
}
