package indicator

import "crypto-signal-engine/internal/market"

// Snapshot is the full indicator readout for one candle series. Nil fields
// mean insufficient history; the scoring engine treats nil as "no evidence".
type Snapshot struct {
	CurrentPrice   float64          `json:"currentPrice"`
	RSI            *float64         `json:"rsi"`
	MACD           MACDResult       `json:"macd"`
	BollingerBands BollingerResult  `json:"bollingerBands"`
	EMA20          *float64         `json:"ema20"`
	EMA50          *float64         `json:"ema50"`
	SMA200         *float64         `json:"sma200"`
	ATR14          *float64         `json:"atr14"`
	ADX14          *float64         `json:"adx14"`
	Stochastic     StochasticResult `json:"stochastic"`
	EMA20Slope     *float64         `json:"ema20Slope"`
	EMA50Slope     *float64         `json:"ema50Slope"`
	Momentum3      *float64         `json:"momentum3"`
	Momentum10     *float64         `json:"momentum10"`
	Volatility20   *float64         `json:"volatility20"`
	LatestVolume   float64          `json:"latestVolume"`
	AvgVolume      float64          `json:"avgVolume"`
	VolumeRatio    *float64         `json:"volumeRatio"`
}

// slopeLookback is the bar distance used for the EMA slope readings.
const slopeLookback = 5

// Compute derives the full snapshot from a candle series. It never fails:
// whatever cannot be computed from the available history stays nil.
func Compute(series market.Series) Snapshot {
	candles := series.Candles
	closes := series.Closes()

	snap := Snapshot{}
	if len(closes) == 0 {
		return snap
	}
	snap.CurrentPrice = closes[len(closes)-1]

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
		} else {
			returns = append(returns, 0)
		}
	}
	if len(returns) > 20 {
		returns = returns[len(returns)-20:]
	}

	volWindow := candles
	if len(volWindow) > 20 {
		volWindow = volWindow[len(volWindow)-20:]
	}
	volSum := 0.0
	for _, c := range volWindow {
		volSum += c.Volume
	}
	snap.LatestVolume = candles[len(candles)-1].Volume
	if len(volWindow) > 0 {
		snap.AvgVolume = volSum / float64(len(volWindow))
	}
	if snap.AvgVolume > 0 {
		ratio := snap.LatestVolume / snap.AvgVolume
		snap.VolumeRatio = &ratio
	}

	snap.RSI = RSI(closes, 14)
	snap.MACD = MACD(closes)
	snap.BollingerBands = BollingerBands(closes, 20, 2)
	snap.EMA20 = EMA(closes, 20)
	snap.EMA50 = EMA(closes, 50)
	snap.SMA200 = SMA(closes, 200)
	snap.ATR14 = ATR(candles, 14)
	snap.ADX14 = ADX(candles, 14)
	snap.Stochastic = Stochastic(candles, 14, 3)
	snap.EMA20Slope = EMASlope(closes, 20, slopeLookback)
	snap.EMA50Slope = EMASlope(closes, 50, slopeLookback)
	snap.Momentum3 = Momentum(closes, 3)
	snap.Momentum10 = Momentum(closes, 10)
	snap.Volatility20 = StdDev(returns)
	return snap
}
