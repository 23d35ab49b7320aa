package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// premiumIndexResponse matches /fapi/v1/premiumIndex.
type premiumIndexResponse struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
	NextFundingTime int64  `json:"nextFundingTime"`
}

// openInterestRow matches /futures/data/openInterestHist.
type openInterestRow struct {
	SumOpenInterest      string `json:"sumOpenInterest"`
	SumOpenInterestValue string `json:"sumOpenInterestValue"`
	Timestamp            int64  `json:"timestamp"`
}

// longShortRow matches /futures/data/globalLongShortAccountRatio.
type longShortRow struct {
	LongShortRatio string `json:"longShortRatio"`
	Timestamp      int64  `json:"timestamp"`
}

// mapFuturesPeriod normalizes a chart timeframe to a stats period Binance accepts.
func mapFuturesPeriod(timeframe string) string {
	switch timeframe {
	case "15m", "1h", "4h", "1d":
		return timeframe
	default:
		return "4h"
	}
}

// FetchFuturesContext collects funding, open interest and long/short data
// for a symbol. Each upstream call fails independently: a missing endpoint
// leaves the corresponding fields nil rather than failing the whole fetch.
func (c *Client) FetchFuturesContext(ctx context.Context, symbol, timeframe string) FuturesContext {
	period := mapFuturesPeriod(timeframe)
	result := FuturesContext{}

	var premium premiumIndexResponse
	endpoint := fmt.Sprintf("%s/fapi/v1/premiumIndex?symbol=%s", c.config.BinanceFuturesURL, url.QueryEscape(symbol))
	if err := c.getJSON(ctx, endpoint, &premium); err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("premium index unavailable")
	} else if rate, err := strconv.ParseFloat(premium.LastFundingRate, 64); err == nil {
		annualized := rate * 3 * 365 * 100
		result.FundingRate.Current = &rate
		result.FundingRate.AnnualizedPct = &annualized
		if premium.NextFundingTime > 0 {
			next := time.UnixMilli(premium.NextFundingTime).UTC().Format(time.RFC3339)
			result.FundingRate.NextFundingTime = &next
		}
	}

	var oiRows []openInterestRow
	endpoint = fmt.Sprintf("%s/futures/data/openInterestHist?symbol=%s&period=%s&limit=12",
		c.config.BinanceFuturesURL, url.QueryEscape(symbol), period)
	if err := c.getJSON(ctx, endpoint, &oiRows); err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("open interest history unavailable")
	} else {
		series := make([]float64, 0, len(oiRows))
		for _, row := range oiRows {
			v, err := strconv.ParseFloat(row.SumOpenInterestValue, 64)
			if err != nil {
				v, err = strconv.ParseFloat(row.SumOpenInterest, 64)
			}
			if err == nil {
				series = append(series, v)
			}
		}
		if len(series) > 0 {
			latest := series[len(series)-1]
			result.OpenInterest.Latest = &latest
			if len(series) >= 2 && series[0] != 0 {
				change := (series[len(series)-1] - series[0]) / series[0] * 100
				result.OpenInterest.ChangePct = &change
			}
		}
	}

	var lsRows []longShortRow
	endpoint = fmt.Sprintf("%s/futures/data/globalLongShortAccountRatio?symbol=%s&period=%s&limit=12",
		c.config.BinanceFuturesURL, url.QueryEscape(symbol), period)
	if err := c.getJSON(ctx, endpoint, &lsRows); err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("long/short ratio unavailable")
	} else {
		series := make([]float64, 0, len(lsRows))
		for _, row := range lsRows {
			if v, err := strconv.ParseFloat(row.LongShortRatio, 64); err == nil {
				series = append(series, v)
			}
		}
		if len(series) > 0 {
			latest := series[len(series)-1]
			result.LongShortRatio.Ratio = &latest
			if len(series) >= 2 && series[0] != 0 {
				change := (series[len(series)-1] - series[0]) / series[0] * 100
				result.LongShortRatio.ChangePct = &change
			}
		}
	}

	return result
}
