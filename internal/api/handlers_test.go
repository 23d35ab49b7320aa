package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crypto-signal-engine/config"
	"crypto-signal-engine/internal/market"
)

// newTestServer wires a server whose market providers point at a dead
// upstream, so every fetch falls through to the demo series.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(upstream.Close)

	marketClient := market.NewClient(market.ClientConfig{
		BinanceFuturesURL: upstream.URL,
		CoinGeckoURL:      upstream.URL,
		RequestTimeout:    2 * time.Second,
		DemoFallback:      true,
	}, zerolog.Nop())

	cfg := &config.Config{
		ServerConfig: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			AllowedOrigins:  "*",
			RateLimitPerMin: 1000,
		},
	}

	return NewServer(cfg, Dependencies{Market: marketClient}, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestSignalEndpointReturnsFullPayload(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/signal?symbol=btc&timeframe=1h&signalType=swing&riskTolerance=moderate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SignalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q, want BTCUSDT", resp.Symbol)
	}
	if resp.Timeframe != "1h" {
		t.Errorf("timeframe = %q, want 1h", resp.Timeframe)
	}
	if resp.Signal != "BUY" && resp.Signal != "SELL" && resp.Signal != "HOLD" {
		t.Errorf("signal = %q, want BUY/SELL/HOLD", resp.Signal)
	}
	if resp.Timestamp == "" {
		t.Error("timestamp must be stamped by the handler")
	}
	if resp.DataSource != "demo" {
		t.Errorf("dataSource = %q, want demo with dead upstream", resp.DataSource)
	}
	if len(resp.Reasons) == 0 {
		t.Error("reasons must not be empty")
	}
}

func TestSignalEndpointUnknownParamsFallBack(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/signal?symbol=eth&timeframe=3h&signalType=yolo&riskTolerance=extreme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SignalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Timeframe != "4h" {
		t.Errorf("timeframe = %q, want fallback 4h", resp.Timeframe)
	}
	// Three invalid params plus the demo data notice
	if len(resp.Warnings) < 3 {
		t.Errorf("warnings = %v, want at least the three substitution warnings", resp.Warnings)
	}
}

func TestSignalEndpointPostBody(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/signal",
		`{"symbol":"sol","timeframe":"15m","signalType":"scalp","riskTolerance":"aggressive"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SignalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Symbol != "SOLUSDT" || resp.Timeframe != "15m" {
		t.Errorf("echo mismatch: %s %s", resp.Symbol, resp.Timeframe)
	}
	if resp.Signal == "" {
		t.Error("signal must be populated")
	}
}

func TestSignalEndpointRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/signal", `{"symbol":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", rec.Code)
	}
}

func TestCoinSearchFallsBackToStaticList(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/coins/search?query=btc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Cache"); got != "fallback" {
		t.Errorf("X-Cache = %q, want fallback with dead upstream", got)
	}

	var resp struct {
		Coins []market.Coin `json:"coins"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Coins) == 0 {
		t.Error("static fallback must return coins for btc")
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestPickAllowed(t *testing.T) {
	cases := []struct {
		value, want, wantWarn string
	}{
		{"1h", "1h", ""},
		{"1H", "1h", ""},
		{"", "4h", ""},
		{"3h", "4h", "unsupported"},
	}
	for _, tc := range cases {
		got, warn := pickAllowed(tc.value, supportedTimeframes, "4h", "timeframe")
		if got != tc.want {
			t.Errorf("pickAllowed(%q) = %q, want %q", tc.value, got, tc.want)
		}
		if tc.wantWarn == "" && warn != "" {
			t.Errorf("pickAllowed(%q) warning = %q, want none", tc.value, warn)
		}
		if tc.wantWarn != "" && !strings.Contains(warn, tc.wantWarn) {
			t.Errorf("pickAllowed(%q) warning = %q, want %q", tc.value, warn, tc.wantWarn)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests must be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request within the window must be rejected")
	}
	if !rl.Allow("b") {
		t.Error("independent keys must not share a bucket")
	}
}
