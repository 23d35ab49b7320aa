// Command analyze-signal runs the confluence engine offline against the
// deterministic demo series. Useful for inspecting scoring behavior without
// any network access.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/market"
	"crypto-signal-engine/internal/signal"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "trading pair, USDT suffix added if missing")
	timeframe := flag.String("timeframe", "4h", "candle timeframe: 15m, 1h, 4h, 1d")
	signalType := flag.String("type", "swing", "trading style: scalp, intraday, swing")
	risk := flag.String("risk", "moderate", "risk tolerance: conservative, moderate, aggressive")
	bars := flag.Int("bars", 300, "number of demo candles to synthesize")
	flag.Parse()

	pair := market.NormalizeTradingSymbol(*symbol)
	series := market.GenerateDemoSeries(pair, *timeframe, *bars)

	result := signal.Generate(signal.Input{
		Series:        series,
		SignalType:    *signalType,
		RiskTolerance: *risk,
		Futures:       market.EmptyFuturesContext(),
		Catalyst:      catalyst.Neutral(),
	})
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)

	out, err := json.MarshalIndent(struct {
		Symbol    string `json:"symbol"`
		Timeframe string `json:"timeframe"`
		signal.Result
	}{Symbol: pair, Timeframe: *timeframe, Result: result}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
