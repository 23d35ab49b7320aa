package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crypto-signal-engine/internal/market"
)

func testCoins(symbol string) []market.Coin {
	return []market.Coin{{Symbol: symbol, Pair: symbol + "USDT", Name: symbol}}
}

func TestSearchCacheFreshHit(t *testing.T) {
	sc := NewSearchCache(time.Minute, time.Hour, 10, nil, zerolog.Nop())
	calls := 0
	search := func(ctx context.Context, query string, limit int) ([]market.Coin, error) {
		calls++
		return testCoins("BTC"), nil
	}

	coins, state, err := sc.Lookup(context.Background(), "btc", 10, search)
	if err != nil || state != StateMiss || len(coins) != 1 {
		t.Fatalf("first lookup: coins=%v state=%s err=%v", coins, state, err)
	}

	// Second lookup must serve from the local tier without calling upstream
	_, state, err = sc.Lookup(context.Background(), "BTC ", 10, search)
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if state != StateFresh {
		t.Errorf("state = %s, want fresh", state)
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
}

func TestSearchCacheStaleFallback(t *testing.T) {
	// Fresh TTL of zero forces every local entry to immediately go stale
	sc := NewSearchCache(0, time.Hour, 10, nil, zerolog.Nop())
	healthy := true
	search := func(ctx context.Context, query string, limit int) ([]market.Coin, error) {
		if !healthy {
			return nil, errors.New("upstream down")
		}
		return testCoins("ETH"), nil
	}

	if _, _, err := sc.Lookup(context.Background(), "eth", 10, search); err != nil {
		t.Fatalf("seed lookup failed: %v", err)
	}

	healthy = false
	coins, state, err := sc.Lookup(context.Background(), "eth", 10, search)
	if err != nil {
		t.Fatalf("stale lookup must not error: %v", err)
	}
	if state != StateStale {
		t.Errorf("state = %s, want stale", state)
	}
	if len(coins) != 1 || coins[0].Symbol != "ETH" {
		t.Errorf("unexpected stale coins: %v", coins)
	}
}

func TestSearchCacheMissPropagatesError(t *testing.T) {
	sc := NewSearchCache(time.Minute, time.Hour, 10, nil, zerolog.Nop())
	search := func(ctx context.Context, query string, limit int) ([]market.Coin, error) {
		return nil, errors.New("upstream down")
	}

	_, state, err := sc.Lookup(context.Background(), "sol", 10, search)
	if err == nil {
		t.Error("cold miss with failed upstream must return the error")
	}
	if state != StateMiss {
		t.Errorf("state = %s, want miss", state)
	}
}

func TestSearchCacheEviction(t *testing.T) {
	sc := NewSearchCache(time.Minute, time.Hour, 2, nil, zerolog.Nop())
	search := func(ctx context.Context, query string, limit int) ([]market.Coin, error) {
		return testCoins(query), nil
	}

	for _, q := range []string{"a", "b", "c"} {
		if _, _, err := sc.Lookup(context.Background(), q, 10, search); err != nil {
			t.Fatalf("lookup %s failed: %v", q, err)
		}
	}

	sc.mu.Lock()
	size := len(sc.local)
	sc.mu.Unlock()
	if size > 2 {
		t.Errorf("local tier holds %d entries, max is 2", size)
	}
}
