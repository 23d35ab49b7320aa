package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crypto-signal-engine/internal/market"
)

// CacheState labels where a search response came from.
type CacheState string

const (
	StateFresh CacheState = "fresh"
	StateStale CacheState = "stale"
	StateMiss  CacheState = "miss"
)

// SearchFunc performs the upstream coin search on cache miss.
type SearchFunc func(ctx context.Context, query string, limit int) ([]market.Coin, error)

type searchEntry struct {
	Coins    []market.Coin `json:"coins"`
	StoredAt time.Time     `json:"storedAt"`
}

// SearchCache layers a bounded local map over an optional Redis tier.
// Entries younger than the fresh TTL serve directly; entries younger than
// the stale TTL only serve when the upstream search fails. Concurrent
// lookups for the same query share one upstream call.
type SearchCache struct {
	freshTTL   time.Duration
	staleTTL   time.Duration
	maxEntries int
	redis      *RedisService
	logger     zerolog.Logger

	mu       sync.Mutex
	local    map[string]searchEntry
	inflight map[string]chan struct{}
}

// NewSearchCache builds the cache. redis may be nil to run local-only.
func NewSearchCache(freshTTL, staleTTL time.Duration, maxEntries int, redis *RedisService, logger zerolog.Logger) *SearchCache {
	if maxEntries <= 0 {
		maxEntries = 400
	}
	return &SearchCache{
		freshTTL:   freshTTL,
		staleTTL:   staleTTL,
		maxEntries: maxEntries,
		redis:      redis,
		logger:     logger.With().Str("component", "search-cache").Logger(),
		local:      make(map[string]searchEntry),
		inflight:   make(map[string]chan struct{}),
	}
}

// Lookup returns coins for the query plus the cache state of the response.
// On upstream failure a stale entry still serves; only a true miss with a
// failed upstream propagates the error.
func (sc *SearchCache) Lookup(ctx context.Context, query string, limit int, search SearchFunc) ([]market.Coin, CacheState, error) {
	key := normalizeQuery(query)

	if coins, ok := sc.getLocal(key, sc.freshTTL); ok {
		return coins, StateFresh, nil
	}

	if sc.redis != nil {
		var entry searchEntry
		if err := sc.redis.GetJSON(ctx, SearchKey(key), &entry); err == nil {
			if age := time.Since(entry.StoredAt); age <= sc.freshTTL {
				sc.putLocal(key, entry)
				return entry.Coins, StateFresh, nil
			}
		}
	}

	// Collapse concurrent upstream calls for the same query
	if done := sc.claimInflight(key); done != nil {
		select {
		case <-done:
			if coins, ok := sc.getLocal(key, sc.freshTTL); ok {
				return coins, StateFresh, nil
			}
		case <-ctx.Done():
			return nil, StateMiss, ctx.Err()
		}
	} else {
		defer sc.releaseInflight(key)
	}

	coins, err := search(ctx, query, limit)
	if err != nil {
		if stale, ok := sc.getLocal(key, sc.staleTTL); ok {
			sc.logger.Debug().Str("query", key).Msg("upstream search failed, serving stale entry")
			return stale, StateStale, nil
		}
		return nil, StateMiss, err
	}

	entry := searchEntry{Coins: coins, StoredAt: time.Now()}
	sc.putLocal(key, entry)
	if sc.redis != nil {
		if err := sc.redis.SetJSON(ctx, SearchKey(key), entry, sc.staleTTL); err != nil {
			sc.logger.Debug().Err(err).Msg("redis tier write skipped")
		}
	}
	return coins, StateMiss, nil
}

func (sc *SearchCache) claimInflight(key string) chan struct{} {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if done, ok := sc.inflight[key]; ok {
		return done
	}
	sc.inflight[key] = make(chan struct{})
	return nil
}

func (sc *SearchCache) releaseInflight(key string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if done, ok := sc.inflight[key]; ok {
		close(done)
		delete(sc.inflight, key)
	}
}

func (sc *SearchCache) getLocal(key string, maxAge time.Duration) ([]market.Coin, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	entry, ok := sc.local[key]
	if !ok || time.Since(entry.StoredAt) > maxAge {
		return nil, false
	}
	return entry.Coins, true
}

// putLocal stores an entry, evicting the oldest when the map is full.
func (sc *SearchCache) putLocal(key string, entry searchEntry) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if len(sc.local) >= sc.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for k, e := range sc.local {
			if oldestKey == "" || e.StoredAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.StoredAt
			}
		}
		if oldestKey != "" {
			delete(sc.local, oldestKey)
		}
	}
	sc.local[key] = entry
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
