package catalyst

import (
	"strings"
	"testing"
)

func TestScoreSentiment(t *testing.T) {
	// One bullish and one bearish hit cancel out
	if got := ScoreSentiment("Breakout rally fades into a selloff and dump"); got != 0 {
		t.Errorf("expected mixed text to score 0, got %v", got)
	}
	if got := ScoreSentiment("ETF approval drives inflow surge"); got != 3 {
		t.Errorf("expected 3 bullish hits, got %v", got)
	}
	if got := ScoreSentiment("Exchange hack triggers ban fears"); got != -2 {
		t.Errorf("expected -2 for two bearish hits, got %v", got)
	}
}

func TestScoreNewsRelevanceFilter(t *testing.T) {
	rows := []NewsItem{
		{Title: "Bitcoin breakout confirmed", Body: "inflow surge continues"},
		{Title: "Stock indexes flat", Body: "bond yields steady into the close"},
		{Title: "Crypto market regulation update", Body: "fed stays neutral"},
	}
	score, _, catalysts := ScoreNews(rows, []string{"bitcoin", "btc"})

	// The equities row matches neither coin keywords nor macro terms
	if len(catalysts) != 2 {
		t.Fatalf("expected 2 relevant catalysts, got %d", len(catalysts))
	}
	if score <= 0 {
		t.Errorf("expected positive news score for bullish headlines, got %v", score)
	}
	if score < -100 || score > 100 {
		t.Errorf("news score out of bounds: %v", score)
	}
	// The direct bullish item should outrank the neutral macro item
	if catalysts[0].Sentiment != "Bullish" {
		t.Errorf("expected highest-impact catalyst to be Bullish, got %s", catalysts[0].Sentiment)
	}
}

func TestScoreNewsEmpty(t *testing.T) {
	score, signals, catalysts := ScoreNews(nil, []string{"btc"})
	if score != 0 {
		t.Errorf("expected zero score with no news, got %v", score)
	}
	if len(signals) != 0 || len(catalysts) != 0 {
		t.Error("expected no signals or catalysts with no news")
	}
}

func TestScoreFundamentals(t *testing.T) {
	mcap := 1000000.0
	fdv := 1000000.0
	vol := 200000.0
	circ := 95.0
	total := 100.0
	commits := 60
	followers := 600000

	score, signals := ScoreFundamentals(FundamentalStats{
		MarketCap:         &mcap,
		FullyDilutedValue: &fdv,
		Volume24h:         &vol,
		CirculatingSupply: &circ,
		TotalSupply:       &total,
		CommitCount4Weeks: &commits,
		TwitterFollowers:  &followers,
	})

	// 12 (no dilution) + 14 (high turnover) + 10 (supply) + 10 (commits) + 8 (community)
	if score != 54 {
		t.Errorf("expected fundamental score 54, got %v", score)
	}
	if len(signals) != 5 {
		t.Errorf("expected 5 fundamental signals, got %d", len(signals))
	}
}

func TestScoreFundamentalsNilInputs(t *testing.T) {
	score, signals := ScoreFundamentals(FundamentalStats{})
	if score != 0 {
		t.Errorf("expected zero score for all-nil stats, got %v", score)
	}
	if len(signals) != 0 {
		t.Errorf("expected no signals for all-nil stats, got %d", len(signals))
	}
}

func TestScoreFundamentalsDilutionPenalty(t *testing.T) {
	mcap := 1000000.0
	fdv := 4000000.0
	score, signals := ScoreFundamentals(FundamentalStats{MarketCap: &mcap, FullyDilutedValue: &fdv})
	if score != -14 {
		t.Errorf("expected -14 for heavy dilution, got %v", score)
	}
	if len(signals) != 1 || !strings.Contains(signals[0], "dilution") {
		t.Errorf("expected a dilution signal, got %v", signals)
	}
}

func TestTrendBoost(t *testing.T) {
	if got := TrendBoost(1); got != 12 {
		t.Errorf("rank 1 boost = %v, want 12", got)
	}
	if got := TrendBoost(5); got != 4 {
		t.Errorf("rank 5 boost = %v, want 4", got)
	}
	// Deep ranks hit the floor, never go negative
	if got := TrendBoost(15); got != 2 {
		t.Errorf("rank 15 boost = %v, want 2", got)
	}
}

func TestSentimentLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{40, "Strong Bullish"},
		{20, "Bullish"},
		{0, "Neutral"},
		{-20, "Bearish"},
		{-40, "Strong Bearish"},
		{14.9, "Neutral"},
		{15, "Bullish"},
	}
	for _, c := range cases {
		if got := SentimentLabel(c.score); got != c.want {
			t.Errorf("SentimentLabel(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestCombineBlendsAndClamps(t *testing.T) {
	rank := 1
	w := Combine(100, 100, nil, nil, nil, nil, &rank)

	// 100*0.6 + 100*0.4 + 12 clamps back to 100
	if w.CombinedScore != 100 {
		t.Errorf("combined score = %v, want 100", w.CombinedScore)
	}
	if w.SentimentLabel != "Strong Bullish" {
		t.Errorf("label = %s, want Strong Bullish", w.SentimentLabel)
	}
	if w.TrendBoost != 12 {
		t.Errorf("trend boost = %v, want 12", w.TrendBoost)
	}
	if w.Catalysts == nil || w.TrendingTopics == nil {
		t.Error("catalysts and trending topics must be non-nil slices")
	}
}

func TestNeutralWatch(t *testing.T) {
	w := Neutral()
	if w.SentimentLabel != "Neutral" || w.CombinedScore != 0 {
		t.Error("neutral watch must carry zero scores and a Neutral label")
	}
	if w.SymbolTrendingRank != nil {
		t.Error("neutral watch must not carry a trending rank")
	}
}
