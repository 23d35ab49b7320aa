// Package api serves the signal engine over HTTP and WebSocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-signal-engine/config"
	"crypto-signal-engine/internal/ai/reasoning"
	"crypto-signal-engine/internal/cache"
	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/market"
)

// RateLimiter provides simple in-memory rate limiting per client.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Dependencies bundles the services the server routes requests to. Redis,
// search cache and enhancer may be nil; the handlers degrade without them.
type Dependencies struct {
	Market      *market.Client
	Catalyst    *catalyst.Fetcher
	SearchCache *cache.SearchCache
	Redis       *cache.RedisService
	Enhancer    *reasoning.Enhancer
}

// Server represents the HTTP API server.
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.ServerConfig
	stream      config.StreamConfig
	deps        Dependencies
	rateLimiter *RateLimiter
	logger      zerolog.Logger
	startedAt   time.Time
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, deps Dependencies, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := strings.Split(cfg.ServerConfig.AllowedOrigins, ",")
	if len(origins) == 1 && strings.TrimSpace(origins[0]) == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "X-Cache", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	limit := cfg.ServerConfig.RateLimitPerMin
	if limit <= 0 {
		limit = 60
	}

	server := &Server{
		router:      router,
		config:      cfg.ServerConfig,
		stream:      cfg.StreamConfig,
		deps:        deps,
		rateLimiter: NewRateLimiter(limit, time.Minute),
		logger:      logger.With().Str("component", "api").Logger(),
		startedAt:   time.Now(),
	}

	router.Use(server.requestIDMiddleware())
	server.setupRoutes()
	return server
}

// requestIDMiddleware tags every request with a UUID and logs completion.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}

// rateLimitMiddleware limits requests per client IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please slow down.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())
	{
		api.GET("/signal", s.handleSignal)
		api.POST("/signal", s.handleSignal)
		api.GET("/coins/search", s.handleCoinSearch)
	}

	if s.stream.Enabled {
		s.router.GET("/ws", s.handleWebSocket)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("address", addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleHealth returns server health status.
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if s.deps.Redis != nil {
		resp["redis"] = s.deps.Redis.GetStats()
	}
	if s.deps.Enhancer != nil {
		resp["ai_reasoning"] = s.deps.Enhancer.IsConfigured()
	}

	c.JSON(http.StatusOK, resp)
}
