package catalyst

import (
	"fmt"
	"sort"
	"strings"
)

var bullishTerms = []string{"bullish", "breakout", "surge", "rally", "adoption", "inflow", "approval", "buy"}

var bearishTerms = []string{"bearish", "selloff", "dump", "hack", "exploit", "ban", "outflow", "sell"}

var macroTerms = []string{"bitcoin", "crypto", "market", "futures", "etf", "regulation", "fed"}

// ScoreSentiment counts bullish keyword hits minus bearish keyword hits in
// the given text.
func ScoreSentiment(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, term := range bullishTerms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	for _, term := range bearishTerms {
		if strings.Contains(lower, term) {
			score--
		}
	}
	return score
}

type scoredItem struct {
	item      NewsItem
	relevance float64
	sentiment float64
}

// ScoreNews filters news rows by keyword relevance and produces the news
// score plus the top catalysts. Items matching a coin keyword carry full
// weight, macro market items 0.45, everything else is dropped.
func ScoreNews(rows []NewsItem, coinKeywords []string) (newsScore float64, signals []string, catalysts []Catalyst) {
	parsed := make([]scoredItem, 0, len(rows))
	for _, row := range rows {
		text := row.Title + " " + row.Body
		lower := strings.ToLower(text)
		relevance := 0.0
		for _, k := range coinKeywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				relevance = 1.0
				break
			}
		}
		if relevance == 0 {
			for _, k := range macroTerms {
				if strings.Contains(lower, k) {
					relevance = 0.45
					break
				}
			}
		}
		if relevance == 0 {
			continue
		}
		parsed = append(parsed, scoredItem{item: row, relevance: relevance, sentiment: ScoreSentiment(text)})
	}

	weightedSum := 0.0
	weightTotal := 0.0
	for _, x := range parsed {
		weightedSum += x.sentiment * x.relevance
		weightTotal += x.relevance
	}
	if weightTotal > 0 {
		newsScore = clamp(weightedSum/weightTotal*16, -100, 100)
	}

	if len(parsed) > 0 {
		signals = append(signals, fmt.Sprintf("%d relevant headlines scanned", len(parsed)))
	}
	switch {
	case newsScore >= 22:
		signals = append(signals, "News flow leaning clearly bullish")
	case newsScore <= -22:
		signals = append(signals, "News flow leaning clearly bearish")
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return abs(parsed[i].sentiment*parsed[i].relevance) > abs(parsed[j].sentiment*parsed[j].relevance)
	})
	if len(parsed) > 6 {
		parsed = parsed[:6]
	}
	catalysts = make([]Catalyst, 0, len(parsed))
	for _, x := range parsed {
		sentiment := "Neutral"
		if x.sentiment > 0 {
			sentiment = "Bullish"
		} else if x.sentiment < 0 {
			sentiment = "Bearish"
		}
		catalysts = append(catalysts, Catalyst{
			Title:       x.item.Title,
			Source:      x.item.Source,
			URL:         x.item.URL,
			PublishedAt: x.item.PublishedAt,
			Sentiment:   sentiment,
			Impact:      round2(abs(x.sentiment * x.relevance)),
		})
	}
	return newsScore, signals, catalysts
}

// ScoreFundamentals converts coin statistics into a bounded fundamental
// score. Each ratio contributes an independent bounded point value; nil
// inputs simply contribute nothing.
func ScoreFundamentals(stats FundamentalStats) (score float64, signals []string) {
	if stats.MarketCap != nil && *stats.MarketCap > 0 {
		mcap := *stats.MarketCap
		if stats.FullyDilutedValue != nil && *stats.FullyDilutedValue > 0 {
			ratio := *stats.FullyDilutedValue / mcap
			switch {
			case ratio <= 1.05:
				score += 12
				signals = append(signals, "Nearly fully diluted supply, low unlock overhang")
			case ratio > 3:
				score -= 14
				signals = append(signals, "Heavy future dilution (FDV > 3x market cap)")
			case ratio > 1.8:
				score -= 8
				signals = append(signals, "Meaningful future dilution ahead")
			}
		}
		if stats.Volume24h != nil {
			ratio := *stats.Volume24h / mcap
			switch {
			case ratio > 0.15:
				score += 14
				signals = append(signals, "Very high turnover vs market cap")
			case ratio > 0.08:
				score += 8
				signals = append(signals, "Healthy trading turnover")
			case ratio < 0.02:
				score -= 8
				signals = append(signals, "Thin trading turnover vs market cap")
			}
		}
	}

	if stats.CirculatingSupply != nil && stats.TotalSupply != nil && *stats.TotalSupply > 0 {
		ratio := *stats.CirculatingSupply / *stats.TotalSupply
		switch {
		case ratio > 0.9:
			score += 10
			signals = append(signals, "Most supply already circulating")
		case ratio < 0.4:
			score -= 10
			signals = append(signals, "Majority of supply still locked")
		}
	}

	if stats.CommitCount4Weeks != nil {
		switch {
		case *stats.CommitCount4Weeks > 40:
			score += 10
			signals = append(signals, "Strong recent developer activity")
		case *stats.CommitCount4Weeks > 10:
			score += 4
			signals = append(signals, "Steady developer activity")
		case *stats.CommitCount4Weeks == 0:
			score -= 6
			signals = append(signals, "No recent developer commits")
		}
	}

	if stats.TwitterFollowers != nil {
		switch {
		case *stats.TwitterFollowers > 500000:
			score += 8
			signals = append(signals, "Large community following")
		case *stats.TwitterFollowers > 100000:
			score += 4
			signals = append(signals, "Sizable community following")
		}
	}

	return clamp(score, -100, 100), signals
}

// TrendBoost maps a trending-list rank to a bounded positive boost. Rank 1
// yields 12, deeper ranks taper down to the floor of 2.
func TrendBoost(rank int) float64 {
	return clamp(14-float64(rank)*2, 2, 12)
}

// SentimentLabel buckets a combined score into the display label.
func SentimentLabel(score float64) string {
	switch {
	case score >= 35:
		return "Strong Bullish"
	case score >= 15:
		return "Bullish"
	case score <= -35:
		return "Strong Bearish"
	case score <= -15:
		return "Bearish"
	default:
		return "Neutral"
	}
}

// Combine assembles the final Watch from the independent sub-scores. The
// combined score blends news and fundamentals 60/40 with the trending boost
// added on top, clamped like every other score.
func Combine(newsScore, fundamentalScore float64, newsSignals, fundamentalSignals []string, catalysts []Catalyst, trending []TrendingTopic, trendingRank *int) Watch {
	trendBoost := 0.0
	if trendingRank != nil {
		trendBoost = TrendBoost(*trendingRank)
	}
	combined := clamp(newsScore*0.6+fundamentalScore*0.4+trendBoost, -100, 100)

	if catalysts == nil {
		catalysts = []Catalyst{}
	}
	if trending == nil {
		trending = []TrendingTopic{}
	}
	if len(trending) > 6 {
		trending = trending[:6]
	}

	return Watch{
		SentimentScore:     round1(newsScore),
		TrendBoost:         round1(trendBoost),
		NewsScore:          round1(newsScore),
		FundamentalScore:   round1(fundamentalScore),
		CombinedScore:      round1(combined),
		SentimentLabel:     SentimentLabel(combined),
		SymbolTrendingRank: trendingRank,
		NewsSignals:        newsSignals,
		FundamentalSignals: fundamentalSignals,
		Catalysts:          catalysts,
		TrendingTopics:     trending,
	}
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

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func round1(v float64) float64 {
	return roundTo(v, 10)
}

func round2(v float64) float64 {
	return roundTo(v, 100)
}

func roundTo(v, factor float64) float64 {
	if v >= 0 {
		return float64(int64(v*factor+0.5)) / factor
	}
	return float64(int64(v*factor-0.5)) / factor
}
