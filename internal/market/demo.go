package market

import "time"

var demoBasePrices = map[string]float64{
	"BTCUSDT": 96500, "ETHUSDT": 2700, "SOLUSDT": 195, "BNBUSDT": 640,
	"XRPUSDT": 2.65, "ADAUSDT": 0.78, "AVAXUSDT": 36, "DOGEUSDT": 0.26,
}

// demoRand is a Park-Miller generator seeded from a string hash, so demo
// candles for a given symbol+timeframe are reproducible across requests.
type demoRand struct {
	seed int64
}

func newDemoRand(key string) *demoRand {
	var seed int32
	for _, ch := range key {
		seed = (seed << 5) - seed + int32(ch)
	}
	return &demoRand{seed: int64(seed)}
}

func (r *demoRand) next() float64 {
	r.seed = (r.seed * 16807) % 2147483647
	return float64(r.seed&0x7fffffff) / 2147483647
}

// GenerateDemoSeries produces a synthetic candle series used as the last
// fallback when every live provider is unavailable. Same inputs always
// produce the same candles.
func GenerateDemoSeries(symbol, timeframe string, limit int) Series {
	price, ok := demoBasePrices[symbol]
	if !ok {
		price = 50000
	}

	rand := newDemoRand(symbol + timeframe)
	trend := -1.0
	if rand.next() > 0.5 {
		trend = 1.0
	}
	volatility := 0.01 + rand.next()*0.02
	intervalMs := IntervalDuration(timeframe).Milliseconds()
	ts := time.Now().UnixMilli() - int64(limit)*intervalMs

	candles := make([]Candle, 0, limit)
	for i := 0; i < limit; i++ {
		change := (rand.next() - 0.5 + trend*0.002) * volatility
		price *= 1 + change
		high := price * (1 + rand.next()*volatility*0.5)
		low := price * (1 - rand.next()*volatility*0.5)
		closePrice := low + rand.next()*(high-low)
		candles = append(candles, Candle{
			Timestamp: ts,
			Open:      price,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    100000 + rand.next()*400000,
		})
		ts += intervalMs
		price = closePrice
	}

	return Series{Candles: candles, DataSource: "demo"}
}
