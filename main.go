package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-signal-engine/config"
	"crypto-signal-engine/internal/ai/reasoning"
	"crypto-signal-engine/internal/api"
	"crypto-signal-engine/internal/cache"
	"crypto-signal-engine/internal/catalyst"
	"crypto-signal-engine/internal/logging"
	"crypto-signal-engine/internal/market"
)

func main() {
	sampleConfig := flag.String("generate-config", "", "write a sample config file to the given path and exit")
	flag.Parse()

	if *sampleConfig != "" {
		if err := config.GenerateSampleConfig(*sampleConfig); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate sample config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sample configuration written to %s\n", *sampleConfig)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
		Output: cfg.LoggingConfig.Output,
	})
	logger.Info().Msg("starting crypto signal engine")

	marketClient := market.NewClient(market.ClientConfig{
		BinanceFuturesURL: cfg.MarketConfig.BinanceFuturesURL,
		CoinGeckoURL:      cfg.MarketConfig.CoinGeckoURL,
		RequestTimeout:    cfg.MarketConfig.RequestTimeoutDuration(),
		DemoFallback:      cfg.MarketConfig.DemoFallback,
	}, logger)

	deps := api.Dependencies{Market: marketClient}

	if cfg.CatalystConfig.Enabled {
		deps.Catalyst = catalyst.NewFetcher(catalyst.FetcherConfig{
			CryptoCompareURL: cfg.CatalystConfig.CryptoCompareURL,
			CoinGeckoURL:     cfg.MarketConfig.CoinGeckoURL,
			RequestTimeout:   cfg.CatalystConfig.RequestTimeoutDuration(),
		}, logger)
	} else {
		logger.Info().Msg("catalyst layer disabled, signals run on market data only")
	}

	if cfg.RedisConfig.Enabled {
		redisService, err := cache.NewRedisService(cfg.RedisConfig, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, search cache runs local-only")
		} else {
			deps.Redis = redisService
			defer redisService.Close()
		}
	}
	deps.SearchCache = cache.NewSearchCache(
		time.Duration(cfg.CacheConfig.SearchFreshTTL)*time.Second,
		time.Duration(cfg.CacheConfig.SearchStaleTTL)*time.Second,
		cfg.CacheConfig.MaxEntries,
		deps.Redis,
		logger,
	)

	if cfg.AIConfig.Enabled {
		client := reasoning.NewClient(reasoning.ClientConfig{
			BaseURL: cfg.AIConfig.BaseURL,
			APIKey:  cfg.AIConfig.APIKey,
			Model:   cfg.AIConfig.Model,
			Timeout: time.Duration(cfg.AIConfig.RequestTimeout) * time.Second,
		})
		if !client.IsConfigured() {
			logger.Warn().Msg("AI reasoning enabled but no API key set, enhancement will be skipped")
		}
		deps.Enhancer = reasoning.NewEnhancer(client, logger)
	}

	server := api.NewServer(cfg, deps, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
