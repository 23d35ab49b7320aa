package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/market"
	"crypto-signal-engine/internal/signal"
)

// AIReasoning is the enrichment block attached when the LLM pass applied.
type AIReasoning struct {
	Summary      string   `json:"summary"`
	RiskWarnings []string `json:"riskWarnings,omitempty"`
	Playbook     []string `json:"playbook,omitempty"`
	Model        string   `json:"model"`
}

// SignalResponse wraps the engine result with the request echo and any
// degradation warnings collected along the way.
type SignalResponse struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	signal.Result
	Warnings    []string     `json:"warnings,omitempty"`
	AIReasoning *AIReasoning `json:"aiReasoning,omitempty"`
}

// handleSignal serves GET and POST /api/signal. Every degraded input path
// falls back to a neutral shape so the endpoint never returns a 5xx for
// upstream provider failures.
func (s *Server) handleSignal(c *gin.Context) {
	var params signalParams
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"message": err.Error(),
			})
			return
		}
	} else {
		params.Symbol = c.Query("symbol")
		params.Timeframe = c.Query("timeframe")
		params.SignalType = c.Query("signalType")
		params.RiskTolerance = c.Query("riskTolerance")
	}

	warnings := params.normalize()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 25*time.Second)
	defer cancel()

	resp := s.generateSignal(ctx, params, warnings)
	c.JSON(http.StatusOK, resp)
}

// generateSignal gathers market, derivatives and catalyst context in
// parallel, runs the engine, and applies the optional reasoning pass.
func (s *Server) generateSignal(ctx context.Context, params signalParams, warnings []string) SignalResponse {
	var (
		wg      sync.WaitGroup
		series  market.Series
		futures = market.EmptyFuturesContext()
		watch   = catalyst.Neutral()
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		fetched, err := s.deps.Market.FetchOHLCV(ctx, params.Symbol, params.Timeframe, 300)
		if err != nil || len(fetched.Candles) == 0 {
			series = market.GenerateDemoSeries(params.Symbol, params.Timeframe, 300)
			return
		}
		series = fetched
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		futures = s.deps.Market.FetchFuturesContext(ctx, params.Symbol, params.Timeframe)
	}()

	if s.deps.Catalyst != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watch = s.deps.Catalyst.Fetch(ctx, params.Symbol)
		}()
	}

	wg.Wait()

	if series.DataSource == "demo" {
		warnings = append(warnings, "live market data unavailable, signal generated from demo data")
	}

	result := signal.Generate(signal.Input{
		Series:        series,
		SignalType:    params.SignalType,
		RiskTolerance: params.RiskTolerance,
		Futures:       futures,
		Catalyst:      watch,
	})
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)

	resp := SignalResponse{
		Symbol:    params.Symbol,
		Timeframe: params.Timeframe,
		Result:    result,
	}

	if s.deps.Enhancer != nil && s.deps.Enhancer.IsConfigured() {
		enhancement := s.deps.Enhancer.Enhance(ctx, result)
		if enhancement.Applied {
			resp.Reasons = enhancement.Reasons
			resp.AIReasoning = &AIReasoning{
				Summary:      enhancement.Summary,
				RiskWarnings: enhancement.RiskWarnings,
				Playbook:     enhancement.Playbook,
				Model:        enhancement.Model,
			}
		} else if enhancement.Warning != "" {
			warnings = append(warnings, enhancement.Warning)
		}
	}

	resp.Warnings = warnings
	return resp
}

// handleCoinSearch serves GET /api/coins/search through the tiered cache.
// The X-Cache header reports which tier answered.
func (s *Server) handleCoinSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 25 {
		limit = 25
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	search := func(ctx context.Context, query string, limit int) ([]market.Coin, error) {
		return s.deps.Market.SearchCoins(ctx, query, limit)
	}

	var (
		coins []market.Coin
		state = "disabled"
		err   error
	)
	if s.deps.SearchCache != nil {
		var cacheState string
		coins, cacheState, err = s.lookupSearch(ctx, query, limit, search)
		state = cacheState
	} else {
		coins, err = search(ctx, query, limit)
	}

	if err != nil {
		// Static shortlist keeps the picker usable when every provider is down
		coins = market.StaticCoinFallback(query, limit)
		state = "fallback"
	}

	c.Header("X-Cache", state)
	c.JSON(http.StatusOK, gin.H{
		"coins": coins,
		"cache": state,
	})
}

func (s *Server) lookupSearch(ctx context.Context, query string, limit int, search func(context.Context, string, int) ([]market.Coin, error)) ([]market.Coin, string, error) {
	coins, state, err := s.deps.SearchCache.Lookup(ctx, query, limit, search)
	return coins, string(state), err
}
